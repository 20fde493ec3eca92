package testutil

import (
	"time"

	"github.com/FreeosDAO/cronacle-backend/models"
)

// CreateTestBid creates a bid with default values
func CreateTestBid(accountID string, itemID, amount int64) *models.Bid {
	return &models.Bid{
		AccountID: accountID,
		ItemID:    itemID,
		Amount:    amount,
		PlacedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

// CreateTestAuctionRecord creates an unsettled auction record whose
// bidding window covers "now"
func CreateTestAuctionRecord(sequence int32, itemID int64) *models.AuctionRecord {
	start := time.Now().UTC().Truncate(time.Microsecond)
	return &models.AuctionRecord{
		SequenceNumber: sequence,
		ItemID:         itemID,
		StartAt:        start,
		BiddingEndAt:   start.Add(9 * time.Minute),
		EndAt:          start.Add(10*time.Minute - time.Millisecond),
	}
}
