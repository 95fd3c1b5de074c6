package entity

import "time"

// Payment is an append-only record of a settled booking, one per
// booking paid through processPayment.
type Payment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	BookingID int64     `json:"booking_id" db:"booking_id"`
	Amount    float64   `json:"amount" db:"amount"`
	PaidAt    time.Time `json:"paid_at" db:"paid_at"`
}
