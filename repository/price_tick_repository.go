package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// PriceTickRepository implements the service.PriceTickRepository interface
type PriceTickRepository struct {
	q queryable
}

// NewPriceTickRepository creates a new price tick repository
func NewPriceTickRepository(db *database.DB) *PriceTickRepository {
	return &PriceTickRepository{q: db.Pool}
}

// newPriceTickRepositoryWithTx creates a new price tick repository with a transaction
func newPriceTickRepositoryWithTx(tx queryable) *PriceTickRepository {
	return &PriceTickRepository{q: tx}
}

// Record stores one price observation
func (r *PriceTickRepository) Record(ctx context.Context, tick *models.PriceTick) error {
	query := `
		INSERT INTO price_ticks (tick_time, usd_price)
		VALUES ($1, $2)
	`

	_, err := r.q.Exec(ctx, query, tick.TickTime, tick.USDPrice)
	if err != nil {
		return fmt.Errorf("failed to record price tick: %w", err)
	}

	return nil
}

// GetLatest returns the most recent tick, or nil
func (r *PriceTickRepository) GetLatest(ctx context.Context) (*models.PriceTick, error) {
	query := `
		SELECT tick_time, usd_price
		FROM price_ticks
		ORDER BY tick_time DESC
		LIMIT 1
	`

	var tick models.PriceTick
	err := r.q.QueryRow(ctx, query).Scan(&tick.TickTime, &tick.USDPrice)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest price tick: %w", err)
	}

	return &tick, nil
}
