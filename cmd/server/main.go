package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"carshare/internal/app"
	"carshare/internal/client"
	"carshare/internal/config"
	"carshare/internal/handler"
	"carshare/internal/jobs"
	"carshare/internal/repository/postgres"
	"carshare/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// New Relic first, so the database driver can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	server, expiryJob := wireServer(db, redisClient, nrApp, cfg)

	if err := expiryJob.Start(); err != nil {
		log.Fatalf("failed to start reservation expiry job: %v", err)
	}
	defer expiryJob.Stop()

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus the
// background job, both ready to start.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *jobs.ReservationExpiryJob) {
	tripRepo := postgres.NewTripRepository(db)
	tripService := service.NewTripService(tripRepo)

	vehicleClient := client.NewVehicleClient(cfg.Services.VehiclesURL, cfg.Services.RequestTimeout)
	billingClient := client.NewBillingClient(cfg.Services.BillingURL, cfg.Services.RequestTimeout)
	telematicsClient := client.NewTelematicsClient(cfg.Services.TelematicsURL, cfg.Services.RequestTimeout)

	dispatcher := service.NewDispatcherService(tripService, vehicleClient, billingClient, telematicsClient)

	router := app.NewRouter(app.RouterDeps{
		TripHandler:    handler.NewTripHandler(dispatcher),
		VehicleHandler: handler.NewVehicleHandler(dispatcher),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	expiryJob := jobs.NewReservationExpiryJob(tripService, cfg.Jobs.ReservationTTL)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, expiryJob
}
