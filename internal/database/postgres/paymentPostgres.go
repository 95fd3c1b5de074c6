package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"

	"github.com/lib/pq"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Settle closes the user's whole debt in one transaction: deducts points
// (for the points method) or just zeroes the pending balance (cash),
// marks every unpaid booking paid and writes one journal row per booking.
// Any failure rolls the whole settlement back, so points are never
// charged without the bookings being marked paid.
func (r *paymentRepository) Settle(ctx context.Context, userID int64, bookings []*entity.Booking, method entity.PaymentMethod, pointsCost int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var result sql.Result
	if method == entity.PaymentMethodPoints {
		query := `UPDATE users SET points = points - $2, pending_balance = 0 WHERE id = $1 AND points >= $2`
		result, err = tx.ExecContext(ctx, query, userID, pointsCost)
	} else {
		query := `UPDATE users SET pending_balance = 0 WHERE id = $1`
		result, err = tx.ExecContext(ctx, query, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to settle user balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if method == entity.PaymentMethodPoints {
			return entity.ErrInsufficientPoints
		}
		return entity.ErrUserNotFound
	}

	ids := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		ids = append(ids, b.ID)
	}

	query := `UPDATE bookings SET paid = TRUE, payment_method = $1, updated_at = $2 WHERE id = ANY($3) AND paid = FALSE`
	result, err = tx.ExecContext(ctx, query, method, time.Now(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark bookings paid: %w", err)
	}
	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected != int64(len(ids)) {
		return fmt.Errorf("expected to mark %d bookings paid, marked %d", len(ids), rowsAffected)
	}

	insert := `INSERT INTO payments (user_id, booking_id, amount, paid_at) VALUES ($1, $2, $3, $4)`
	paidAt := time.Now()
	for _, b := range bookings {
		if _, err := tx.ExecContext(ctx, insert, userID, b.ID, b.SettlementAmount, paidAt); err != nil {
			return fmt.Errorf("failed to record payment for booking %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}

	return nil
}

func (r *paymentRepository) GetByUserID(ctx context.Context, userID int64) ([]*entity.Payment, error) {
	query := `
		SELECT id, user_id, booking_id, amount, paid_at
		FROM payments
		WHERE user_id = $1
		ORDER BY paid_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []*entity.Payment
	for rows.Next() {
		var payment entity.Payment
		err := rows.Scan(
			&payment.ID,
			&payment.UserID,
			&payment.BookingID,
			&payment.Amount,
			&payment.PaidAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &payment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}

	return payments, nil
}
