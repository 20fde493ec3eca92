package models

import (
	"time"
)

// Account represents a registered auction participant with a prepaid
// credit balance
type Account struct {
	AccountID       string    `db:"account_id"`
	Principal       string    `db:"principal"`
	Credit          int64     `db:"credit"`
	AvailableCredit int64     `db:"-"` // Calculated field: credit minus the amount locked by a standing top bid
	RegisteredAt    time.Time `db:"registered_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
