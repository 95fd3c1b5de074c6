package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/internal/entity"
)

type locationRepository struct {
	db *sql.DB
}

func NewLocationRepository(db *sql.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *entity.Location) error {
	if location.TotalSpot <= 0 {
		return entity.ErrInvalidTotalSpot
	}

	// A new location starts with every spot free
	query := `
		INSERT INTO parking_locations (mall_name, address, total_spot, free_spot, created_at, updated_at)
		VALUES ($1, $2, $3, $3, $4, $4)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		location.MallName,
		location.Address,
		location.TotalSpot,
		now,
	).Scan(&location.ID)

	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}

	location.FreeSpot = location.TotalSpot
	location.CreatedAt = now
	location.UpdatedAt = now
	return nil
}

func (r *locationRepository) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	query := `
		SELECT id, mall_name, address, total_spot, free_spot, created_at, updated_at
		FROM parking_locations
		WHERE id = $1
	`

	var location entity.Location
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&location.ID,
		&location.MallName,
		&location.Address,
		&location.TotalSpot,
		&location.FreeSpot,
		&location.CreatedAt,
		&location.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return &location, nil
}

func (r *locationRepository) GetAll(ctx context.Context) ([]*entity.Location, error) {
	query := `
		SELECT id, mall_name, address, total_spot, free_spot, created_at, updated_at
		FROM parking_locations
		ORDER BY mall_name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []*entity.Location
	for rows.Next() {
		var location entity.Location
		err := rows.Scan(
			&location.ID,
			&location.MallName,
			&location.Address,
			&location.TotalSpot,
			&location.FreeSpot,
			&location.CreatedAt,
			&location.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, &location)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

func (r *locationRepository) Update(ctx context.Context, location *entity.Location) error {
	query := `
		UPDATE parking_locations
		SET mall_name = $1, address = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.db.ExecContext(ctx, query,
		location.MallName,
		location.Address,
		time.Now(),
		location.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrLocationNotFound
	}

	return nil
}

func (r *locationRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM parking_locations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrLocationNotFound
	}

	return nil
}

// Reserve takes one free spot. The decrement and the free_spot > 0
// check run as a single statement, so concurrent callers can never
// drive the counter below zero.
func (r *locationRepository) Reserve(ctx context.Context, id int64) error {
	query := `
		UPDATE parking_locations
		SET free_spot = free_spot - 1, updated_at = $2
		WHERE id = $1 AND free_spot > 0
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to reserve spot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// Either the location does not exist or it is full
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return entity.ErrNoFreeSpots
	}

	return nil
}

// Release returns one spot, clamped at total_spot. A release without a
// matching reserve is a programmer error but must not push the counter
// past the ceiling.
func (r *locationRepository) Release(ctx context.Context, id int64) error {
	query := `
		UPDATE parking_locations
		SET free_spot = LEAST(total_spot, free_spot + 1), updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to release spot: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return entity.ErrLocationNotFound
	}

	return nil
}

// Resize changes total_spot preserving the currently occupied count:
// free_spot becomes max(0, newTotal - used).
func (r *locationRepository) Resize(ctx context.Context, id int64, newTotal int) (*entity.Location, error) {
	if newTotal <= 0 {
		return nil, entity.ErrInvalidTotalSpot
	}

	query := `
		UPDATE parking_locations
		SET total_spot = $2,
		    free_spot = GREATEST(0, $2 - (total_spot - free_spot)),
		    updated_at = $3
		WHERE id = $1
		RETURNING id, mall_name, address, total_spot, free_spot, created_at, updated_at
	`

	var location entity.Location
	err := r.db.QueryRowContext(ctx, query, id, newTotal, time.Now()).Scan(
		&location.ID,
		&location.MallName,
		&location.Address,
		&location.TotalSpot,
		&location.FreeSpot,
		&location.CreatedAt,
		&location.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrLocationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resize location: %w", err)
	}

	return &location, nil
}
