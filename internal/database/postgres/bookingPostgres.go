package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"

	"github.com/lib/pq"
)

const bookingColumns = `
	id, user_id, location_id, booking_time, status, settlement_amount,
	paid, payment_method, rating, comment, created_at, updated_at
`

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (*entity.Booking, error) {
	var booking entity.Booking
	var rating sql.NullInt64
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.LocationID,
		&booking.BookingTime,
		&booking.Status,
		&booking.SettlementAmount,
		&booking.Paid,
		&booking.PaymentMethod,
		&rating,
		&booking.Comment,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		v := int(rating.Int64)
		booking.Rating = &v
	}
	return &booking, nil
}

// Create inserts a new active booking. The partial unique index on
// (user_id) WHERE status='active' rejects a second active booking for
// the same user even if two inserts race past the service-level check.
func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (
			user_id, location_id, booking_time, status, settlement_amount,
			paid, payment_method, comment, created_at, updated_at
		) VALUES ($1, $2, $3, $4, 0, FALSE, '', '', $5, $5)
		RETURNING id
	`

	now := time.Now()
	if booking.BookingTime.IsZero() {
		booking.BookingTime = now
	}
	booking.Status = entity.BookingStatusActive

	err := r.db.QueryRowContext(ctx, query,
		booking.UserID,
		booking.LocationID,
		booking.BookingTime,
		booking.Status,
		now,
	).Scan(&booking.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return entity.ErrActiveBookingExists
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, entity.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// GetByUserID returns the user's bookings, newest first, each carrying
// a snapshot of its location at read time.
func (r *bookingRepository) GetByUserID(ctx context.Context, userID int64) ([]*entity.Booking, error) {
	query := `
		SELECT
			b.id, b.user_id, b.location_id, b.booking_time, b.status, b.settlement_amount,
			b.paid, b.payment_method, b.rating, b.comment, b.created_at, b.updated_at,
			l.id, l.mall_name, l.address, l.total_spot, l.free_spot, l.created_at, l.updated_at
		FROM bookings b
		JOIN parking_locations l ON b.location_id = l.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by user: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		var location entity.Location
		var rating sql.NullInt64
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.LocationID,
			&booking.BookingTime,
			&booking.Status,
			&booking.SettlementAmount,
			&booking.Paid,
			&booking.PaymentMethod,
			&rating,
			&booking.Comment,
			&booking.CreatedAt,
			&booking.UpdatedAt,
			&location.ID,
			&location.MallName,
			&location.Address,
			&location.TotalSpot,
			&location.FreeSpot,
			&location.CreatedAt,
			&location.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			booking.Rating = &v
		}
		booking.Location = &location
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

func (r *bookingRepository) GetAll(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	return r.queryBookings(ctx, query)
}

func (r *bookingRepository) GetActiveByUserID(ctx context.Context, userID int64) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 AND status = 'active' LIMIT 1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active booking: %w", err)
	}

	return booking, nil
}

// FinalizeAndSettle moves a booking out of the active state and, in
// the same transaction, adds the settlement amount to the owner's
// pending balance and returns the spot to the location. Either all
// three commit or none do. It reports false when the booking was
// already finalized, so a racing sweep and user action cannot settle
// the same booking twice.
func (r *bookingRepository) FinalizeAndSettle(ctx context.Context, id int64, status entity.BookingStatus, settlementAmount float64) (bool, error) {
	if !status.IsTerminal() {
		return false, fmt.Errorf("status %q is not terminal", status)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE bookings
		SET status = $2, settlement_amount = $3, updated_at = $4
		WHERE id = $1 AND status = 'active'
		RETURNING user_id, location_id
	`

	var userID, locationID int64
	err = tx.QueryRowContext(ctx, query, id, status, settlementAmount, time.Now()).Scan(&userID, &locationID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to finalize booking: %w", err)
	}

	if settlementAmount > 0 {
		query = `UPDATE users SET pending_balance = pending_balance + $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, query, userID, settlementAmount); err != nil {
			return false, fmt.Errorf("failed to charge settlement: %w", err)
		}
	}

	query = `
		UPDATE parking_locations
		SET free_spot = LEAST(total_spot, free_spot + 1), updated_at = $2
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, query, locationID, time.Now()); err != nil {
		return false, fmt.Errorf("failed to release spot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit finalization: %w", err)
	}

	return true, nil
}

func (r *bookingRepository) GetOverdueActive(ctx context.Context, before time.Time) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = 'active' AND booking_time <= $1 ORDER BY booking_time ASC`
	return r.queryBookings(ctx, query, before)
}

func (r *bookingRepository) CountActiveByLocation(ctx context.Context, locationID int64) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE location_id = $1 AND status = 'active'`
	var count int
	err := r.db.QueryRowContext(ctx, query, locationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) GetUnpaidFinalized(ctx context.Context, userID int64) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		  AND status IN ('completed', 'cancelled', 'expired')
		  AND paid = FALSE
		ORDER BY created_at ASC
	`
	return r.queryBookings(ctx, query, userID)
}

// SetFeedbackIfUnrated stores the rating and comment only when no
// rating exists yet; reports false when the booking was already rated.
func (r *bookingRepository) SetFeedbackIfUnrated(ctx context.Context, id int64, rating int, comment string) (bool, error) {
	query := `
		UPDATE bookings
		SET rating = $2, comment = $3, updated_at = $4
		WHERE id = $1 AND rating IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, id, rating, comment, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to set feedback: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

func (r *bookingRepository) GetRated(ctx context.Context) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE rating IS NOT NULL ORDER BY updated_at DESC`
	return r.queryBookings(ctx, query)
}

func (r *bookingRepository) GetRatingStats(ctx context.Context) (*RatingStats, error) {
	stats := &RatingStats{Distribution: make(map[int]int64)}

	query := `SELECT COUNT(*), COALESCE(AVG(rating), 0) FROM bookings WHERE rating IS NOT NULL`
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.TotalFeedback, &stats.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating stats: %w", err)
	}

	query = `SELECT rating, COUNT(*) FROM bookings WHERE rating IS NOT NULL GROUP BY rating ORDER BY rating`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, fmt.Errorf("failed to scan rating distribution: %w", err)
		}
		stats.Distribution[rating] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating distribution: %w", err)
	}

	return stats, nil
}

func (r *bookingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) CountByStatus(ctx context.Context, status entity.BookingStatus) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings by status: %w", err)
	}
	return count, nil
}

func (r *bookingRepository) GetRecent(ctx context.Context, limit int) ([]*entity.Booking, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC LIMIT $1`
	return r.queryBookings(ctx, query, limit)
}

func (r *bookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*entity.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}
