package models

import (
	"time"
)

// AuctionRecord is the append-only record of one auction window.
// Winner and WinningAmount stay nil until the auction settles.
type AuctionRecord struct {
	SequenceNumber  int32      `db:"sequence_number"`
	ItemID          int64      `db:"item_id"`
	StartAt         time.Time  `db:"start_at"`
	BiddingEndAt    time.Time  `db:"bidding_end_at"`
	EndAt           time.Time  `db:"end_at"`
	WinnerAccountID *string    `db:"winner_account_id"`
	WinningAmount   *int64     `db:"winning_amount"`
	CreatedAt       time.Time  `db:"created_at"`
	SettledAt       *time.Time `db:"settled_at"`
}

// IsSettled reports whether a winner has been recorded.
func (a *AuctionRecord) IsSettled() bool {
	return a.WinnerAccountID != nil
}

// BiddingOpenAt reports whether new bids are accepted at the given instant.
func (a *AuctionRecord) BiddingOpenAt(now time.Time) bool {
	return !now.Before(a.StartAt) && !now.After(a.BiddingEndAt)
}

// ActiveAt reports whether the full auction window, including the
// post-bidding sealed phase, still covers the given instant.
func (a *AuctionRecord) ActiveAt(now time.Time) bool {
	return !now.Before(a.StartAt) && !now.After(a.EndAt)
}
