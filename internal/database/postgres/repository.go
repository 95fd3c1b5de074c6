package repository

import (
	"context"
	"time"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
)

type LocationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	GetAll(ctx context.Context) ([]*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	Delete(ctx context.Context, id int64) error

	// Spot counter operations, each a single atomic statement
	Reserve(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
	Resize(ctx context.Context, id int64, newTotal int) (*entity.Location, error)
}

type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, booking *entity.Booking) error
	GetByID(ctx context.Context, id int64) (*entity.Booking, error)
	GetByUserID(ctx context.Context, userID int64) ([]*entity.Booking, error)
	GetAll(ctx context.Context) ([]*entity.Booking, error)

	// State machine operations
	GetActiveByUserID(ctx context.Context, userID int64) (*entity.Booking, error)
	FinalizeAndSettle(ctx context.Context, id int64, status entity.BookingStatus, settlementAmount float64) (bool, error)
	GetOverdueActive(ctx context.Context, before time.Time) ([]*entity.Booking, error)
	CountActiveByLocation(ctx context.Context, locationID int64) (int, error)

	// Settlement operations
	GetUnpaidFinalized(ctx context.Context, userID int64) ([]*entity.Booking, error)

	// Feedback operations
	SetFeedbackIfUnrated(ctx context.Context, id int64, rating int, comment string) (bool, error)
	GetRated(ctx context.Context) ([]*entity.Booking, error)
	GetRatingStats(ctx context.Context) (*RatingStats, error)

	// Statistical operations
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error)
	GetRecent(ctx context.Context, limit int) ([]*entity.Booking, error)
}

// RatingStats aggregates submitted feedback across all bookings.
type RatingStats struct {
	TotalFeedback int64         `json:"total_feedback"`
	AverageRating float64       `json:"average_rating"`
	Distribution  map[int]int64 `json:"rating_distribution"`
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)

	// Balance operations, atomic counter updates (no fetch-then-save)
	AddPoints(ctx context.Context, userID int64, delta int) error
}

type PaymentRepository interface {
	// Settle clears the user's debt, marks the bookings paid and records
	// the payment journal in a single transaction.
	Settle(ctx context.Context, userID int64, bookings []*entity.Booking, method entity.PaymentMethod, pointsCost int) error
	GetByUserID(ctx context.Context, userID int64) ([]*entity.Payment, error)
}
