package models

import (
	"time"
)

// SystemConfig is the singleton system row. Epoch is the auction
// scheduling origin; no action is accepted before it.
type SystemConfig struct {
	Epoch         time.Time `db:"epoch"`
	UserCount     int32     `db:"user_count"`
	LoyaltyPoints int64     `db:"loyalty_points"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// OpenAt reports whether the system accepts actions at the given instant.
func (s *SystemConfig) OpenAt(now time.Time) bool {
	return !now.Before(s.Epoch)
}
