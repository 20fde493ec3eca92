package models

import (
	"time"
)

// Bid represents a live bid in the book for the currently open auction.
// Each account holds at most one live bid and the book holds at most
// three rows; both bounds are enforced by the auction service.
type Bid struct {
	AccountID string    `db:"account_id"`
	ItemID    int64     `db:"item_id"`
	Amount    int64     `db:"amount"`
	PlacedAt  time.Time `db:"placed_at"`
}
