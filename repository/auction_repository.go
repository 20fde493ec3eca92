package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// AuctionRepository implements the service.AuctionRepository interface
type AuctionRepository struct {
	q queryable
}

// NewAuctionRepository creates a new auction repository
func NewAuctionRepository(db *database.DB) *AuctionRepository {
	return &AuctionRepository{q: db.Pool}
}

// newAuctionRepositoryWithTx creates a new auction repository with a transaction
func newAuctionRepositoryWithTx(tx queryable) *AuctionRepository {
	return &AuctionRepository{q: tx}
}

const auctionColumns = `
	sequence_number, item_id, start_at, bidding_end_at, end_at,
	winner_account_id, winning_amount, created_at, settled_at`

func scanAuction(row pgx.Row) (*models.AuctionRecord, error) {
	var record models.AuctionRecord
	err := row.Scan(
		&record.SequenceNumber,
		&record.ItemID,
		&record.StartAt,
		&record.BiddingEndAt,
		&record.EndAt,
		&record.WinnerAccountID,
		&record.WinningAmount,
		&record.CreatedAt,
		&record.SettledAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetLatest returns the record with the highest sequence number, or nil
func (r *AuctionRepository) GetLatest(ctx context.Context) (*models.AuctionRecord, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auction_records
		ORDER BY sequence_number DESC
		LIMIT 1
	`

	record, err := scanAuction(r.q.QueryRow(ctx, query))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest auction record: %w", err)
	}
	return record, nil
}

// GetByItem returns the auction record for the given item, or nil
func (r *AuctionRepository) GetByItem(ctx context.Context, itemID int64) (*models.AuctionRecord, error) {
	query := `
		SELECT ` + auctionColumns + `
		FROM auction_records
		WHERE item_id = $1
		ORDER BY sequence_number DESC
		LIMIT 1
	`

	record, err := scanAuction(r.q.QueryRow(ctx, query, itemID))
	if err != nil {
		return nil, fmt.Errorf("failed to get auction record for item %d: %w", itemID, err)
	}
	return record, nil
}

// Create appends a new auction record
func (r *AuctionRepository) Create(ctx context.Context, record *models.AuctionRecord) error {
	query := `
		INSERT INTO auction_records (sequence_number, item_id, start_at, bidding_end_at, end_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		record.SequenceNumber,
		record.ItemID,
		record.StartAt,
		record.BiddingEndAt,
		record.EndAt,
	).Scan(&record.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create auction record %d: %w", record.SequenceNumber, err)
	}

	return nil
}

// SetWinner records the settlement outcome on an existing record.
// A record can only be settled once.
func (r *AuctionRepository) SetWinner(ctx context.Context, sequenceNumber int32, winnerID string, amount int64, settledAt time.Time) error {
	query := `
		UPDATE auction_records
		SET winner_account_id = $1, winning_amount = $2, settled_at = $3
		WHERE sequence_number = $4
		  AND winner_account_id IS NULL
	`

	result, err := r.q.Exec(ctx, query, winnerID, amount, settledAt, sequenceNumber)
	if err != nil {
		return fmt.Errorf("failed to set winner on auction record %d: %w", sequenceNumber, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("auction record %d not found or already settled", sequenceNumber)
	}

	return nil
}
