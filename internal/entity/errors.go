package entity

import "errors"

var (
	// Location errors
	ErrLocationNotFound = errors.New("parking location not found")
	ErrNoFreeSpots      = errors.New("no available parking spots")
	ErrLocationInUse    = errors.New("location has active bookings")
	ErrInvalidTotalSpot = errors.New("total spots must be positive")

	// Booking errors
	ErrBookingNotFound     = errors.New("booking not found")
	ErrActiveBookingExists = errors.New("user already has an active booking")
	ErrBookingNotActive    = errors.New("booking is not active")
	ErrNotBookingOwner     = errors.New("booking belongs to another user")

	// Payment errors
	ErrNoPaymentDue         = errors.New("no unpaid bookings to pay for")
	ErrInsufficientPoints   = errors.New("not enough points")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// Feedback errors
	ErrBookingNotCompleted = errors.New("feedback allowed only for completed bookings")
	ErrAlreadyRated        = errors.New("feedback already submitted for this booking")
	ErrInvalidRating       = errors.New("rating must be between 1 and 5")

	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)
