package domain

// Settlement is the result of settling a completed trip: the payment created
// by the billing service plus the token the rider pays with. It is returned to
// the caller and never persisted here.
type Settlement struct {
	TripID       string
	PaymentID    string
	PaymentToken string
}
