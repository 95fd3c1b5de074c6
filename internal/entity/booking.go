package entity

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// IsTerminal reports whether the status is final. A booking leaves
// "active" exactly once and never returns to it.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusExpired
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodPoints PaymentMethod = "points"
	PaymentMethodUnset  PaymentMethod = ""
)

type Booking struct {
	ID               int64         `json:"id" db:"id"`
	UserID           int64         `json:"user_id" db:"user_id"`
	LocationID       int64         `json:"location_id" db:"location_id"`
	BookingTime      time.Time     `json:"booking_time" db:"booking_time"`
	Status           BookingStatus `json:"status" db:"status"`
	SettlementAmount float64       `json:"settlement_amount" db:"settlement_amount"`
	Paid             bool          `json:"paid" db:"paid"`
	PaymentMethod    PaymentMethod `json:"payment_method" db:"payment_method"`
	Rating           *int          `json:"rating,omitempty" db:"rating"`
	Comment          string        `json:"comment,omitempty" db:"comment"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`

	// Location is a read-time snapshot joined onto booking lists.
	Location *Location `json:"location,omitempty" db:"-"`
}
