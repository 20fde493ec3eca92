package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/FreeosDAO/cronacle-backend/models"
)

// Request/Response DTOs

// DepositNotification mirrors the transfer notification delivered by the
// token ledger. Quantity carries the amount and symbol, e.g. "10 CREDIT".
type DepositNotification struct {
	From     string `json:"from" binding:"required"`
	To       string `json:"to" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Memo     string `json:"memo"`
}

type PlaceBidRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	ItemID    int64  `json:"item_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

type ClaimRequest struct {
	AccountID string `json:"account_id" binding:"required"`
}

type WithdrawRequest struct {
	AccountID string `json:"account_id" binding:"required"`
	Amount    int64  `json:"amount" binding:"required,gt=0"`
}

type StoreIdentityRequest struct {
	Principal string `json:"principal" binding:"required"`
}

type EnqueueItemRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	ItemID  int64  `json:"item_id" binding:"required,gt=0"`
}

type RecordTickRequest struct {
	ActorID  string `json:"actor_id" binding:"required"`
	USDPrice int64  `json:"usd_price" binding:"required,gt=0"`
}

type AccountResponse struct {
	AccountID       string `json:"account_id"`
	Credit          int64  `json:"credit"`
	AvailableCredit int64  `json:"available_credit"`
}

type BidResponse struct {
	AccountID string `json:"account_id"`
	ItemID    int64  `json:"item_id"`
	Amount    int64  `json:"amount"`
	PlacedAt  string `json:"placed_at"`
}

type AuctionResponse struct {
	SequenceNumber int32         `json:"sequence_number"`
	ItemID         int64         `json:"item_id"`
	StartAt        string        `json:"start_at"`
	BiddingEndAt   string        `json:"bidding_end_at"`
	EndAt          string        `json:"end_at"`
	Winner         *string       `json:"winner,omitempty"`
	WinningAmount  *int64        `json:"winning_amount,omitempty"`
	Bids           []BidResponse `json:"bids"`
}

type QueueItemResponse struct {
	Position int32 `json:"position"`
	ItemID   int64 `json:"item_id"`
}

func newAccountResponse(account *models.Account) AccountResponse {
	return AccountResponse{
		AccountID:       account.AccountID,
		Credit:          account.Credit,
		AvailableCredit: account.AvailableCredit,
	}
}

func newBidResponse(bid *models.Bid) BidResponse {
	return BidResponse{
		AccountID: bid.AccountID,
		ItemID:    bid.ItemID,
		Amount:    bid.Amount,
		PlacedAt:  bid.PlacedAt.UTC().Format(time.RFC3339),
	}
}

func newAuctionResponse(record *models.AuctionRecord, bids []*models.Bid) AuctionResponse {
	resp := AuctionResponse{
		SequenceNumber: record.SequenceNumber,
		ItemID:         record.ItemID,
		StartAt:        record.StartAt.UTC().Format(time.RFC3339),
		BiddingEndAt:   record.BiddingEndAt.UTC().Format(time.RFC3339),
		EndAt:          record.EndAt.UTC().Format(time.RFC3339Nano),
		Winner:         record.WinnerAccountID,
		WinningAmount:  record.WinningAmount,
		Bids:           []BidResponse{},
	}
	for _, bid := range bids {
		resp.Bids = append(resp.Bids, newBidResponse(bid))
	}
	return resp
}

// parseQuantity splits a ledger quantity string such as "10 CREDIT" into
// its integer amount and symbol.
func parseQuantity(quantity string) (int64, string, error) {
	parts := strings.Fields(quantity)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed quantity %q", quantity)
	}

	amount, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("malformed amount in quantity %q", quantity)
	}
	if amount <= 0 {
		return 0, "", fmt.Errorf("quantity must be positive")
	}

	return amount, parts[1], nil
}
