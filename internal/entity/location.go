package entity

import (
	"time"
)

// Location is a mall parking location. FreeSpot is owned by the
// inventory layer; 0 <= FreeSpot <= TotalSpot at all times.
type Location struct {
	ID        int64     `json:"id" db:"id"`
	MallName  string    `json:"mall_name" db:"mall_name"`
	Address   string    `json:"address" db:"address"`
	TotalSpot int       `json:"total_spot" db:"total_spot"`
	FreeSpot  int       `json:"free_spot" db:"free_spot"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UsedSpots is the number of spots currently held by active bookings.
func (l *Location) UsedSpots() int {
	return l.TotalSpot - l.FreeSpot
}
