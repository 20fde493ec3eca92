package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// BidRepository implements the service.BidRepository interface
type BidRepository struct {
	q queryable
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *database.DB) *BidRepository {
	return &BidRepository{q: db.Pool}
}

// newBidRepositoryWithTx creates a new bid repository with a transaction
func newBidRepositoryWithTx(tx queryable) *BidRepository {
	return &BidRepository{q: tx}
}

// GetTop returns the highest-amount live bid, or nil if the book is empty
func (r *BidRepository) GetTop(ctx context.Context) (*models.Bid, error) {
	query := `
		SELECT account_id, item_id, amount, placed_at
		FROM bids
		ORDER BY amount DESC
		LIMIT 1
	`

	var bid models.Bid
	err := r.q.QueryRow(ctx, query).Scan(
		&bid.AccountID,
		&bid.ItemID,
		&bid.Amount,
		&bid.PlacedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get top bid: %w", err)
	}

	return &bid, nil
}

// GetByAccount returns the account's live bid, or nil
func (r *BidRepository) GetByAccount(ctx context.Context, accountID string) (*models.Bid, error) {
	query := `
		SELECT account_id, item_id, amount, placed_at
		FROM bids
		WHERE account_id = $1
	`

	var bid models.Bid
	err := r.q.QueryRow(ctx, query, accountID).Scan(
		&bid.AccountID,
		&bid.ItemID,
		&bid.Amount,
		&bid.PlacedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bid for account %s: %w", accountID, err)
	}

	return &bid, nil
}

// List returns all live bids ordered by amount descending
func (r *BidRepository) List(ctx context.Context) ([]*models.Bid, error) {
	query := `
		SELECT account_id, item_id, amount, placed_at
		FROM bids
		ORDER BY amount DESC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []*models.Bid
	for rows.Next() {
		var bid models.Bid
		err := rows.Scan(&bid.AccountID, &bid.ItemID, &bid.Amount, &bid.PlacedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, &bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bids: %w", err)
	}

	return bids, nil
}

// Count returns the number of live bids
func (r *BidRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bids`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bids: %w", err)
	}
	return count, nil
}

// Upsert inserts the bid or replaces the account's existing one in place
func (r *BidRepository) Upsert(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (account_id, item_id, amount, placed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id)
		DO UPDATE SET item_id = EXCLUDED.item_id, amount = EXCLUDED.amount, placed_at = EXCLUDED.placed_at
	`

	_, err := r.q.Exec(ctx, query, bid.AccountID, bid.ItemID, bid.Amount, bid.PlacedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert bid for account %s: %w", bid.AccountID, err)
	}

	return nil
}

// DeleteLowest evicts the lowest-ranked live bid
func (r *BidRepository) DeleteLowest(ctx context.Context) error {
	query := `
		DELETE FROM bids
		WHERE account_id = (
			SELECT account_id FROM bids ORDER BY amount ASC LIMIT 1
		)
	`

	_, err := r.q.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to evict lowest bid: %w", err)
	}

	return nil
}

// Clear removes all live bids as a unit
func (r *BidRepository) Clear(ctx context.Context) error {
	_, err := r.q.Exec(ctx, `DELETE FROM bids`)
	if err != nil {
		return fmt.Errorf("failed to clear bids: %w", err)
	}
	return nil
}
