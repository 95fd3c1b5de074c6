package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/aryanrafsanjany/Dhaka-Mall-Parking-System/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
			pending_balance NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (pending_balance >= 0),
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS parking_locations (
			id SERIAL PRIMARY KEY,
			mall_name VARCHAR(255) NOT NULL,
			address VARCHAR(500) NOT NULL,
			total_spot INTEGER NOT NULL CHECK (total_spot > 0),
			free_spot INTEGER NOT NULL CHECK (free_spot >= 0 AND free_spot <= total_spot),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			location_id INTEGER NOT NULL REFERENCES parking_locations(id),
			booking_time TIMESTAMP NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			settlement_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			payment_method VARCHAR(20) NOT NULL DEFAULT '',
			rating INTEGER CHECK (rating BETWEEN 1 AND 5),
			comment TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id SERIAL PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id),
			booking_id INTEGER NOT NULL REFERENCES bookings(id),
			amount NUMERIC(10,2) NOT NULL DEFAULT 0,
			paid_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// One active booking per user, enforced inside the same atomic
		// unit as the insert.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_one_active_per_user
			ON bookings(user_id) WHERE status = 'active'`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_location_id ON bookings(location_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_unpaid ON bookings(user_id, paid) WHERE paid = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_payments_user_id ON payments(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
