package entity

import "time"

type User struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Email          string    `json:"email" db:"email"`
	Points         int       `json:"points" db:"points"`
	PendingBalance float64   `json:"pending_balance" db:"pending_balance"`
	IsAdmin        bool      `json:"is_admin" db:"is_admin"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
