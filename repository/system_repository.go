package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// SystemRepository implements the service.SystemRepository interface
type SystemRepository struct {
	q queryable
}

// NewSystemRepository creates a new system repository
func NewSystemRepository(db *database.DB) *SystemRepository {
	return &SystemRepository{q: db.Pool}
}

// newSystemRepositoryWithTx creates a new system repository with a transaction
func newSystemRepositoryWithTx(tx queryable) *SystemRepository {
	return &SystemRepository{q: tx}
}

// Get returns the system singleton row, or nil if never initialized
func (r *SystemRepository) Get(ctx context.Context) (*models.SystemConfig, error) {
	query := `
		SELECT epoch, user_count, loyalty_points, created_at, updated_at
		FROM system_config
		WHERE singleton
	`

	var system models.SystemConfig
	err := r.q.QueryRow(ctx, query).Scan(
		&system.Epoch,
		&system.UserCount,
		&system.LoyaltyPoints,
		&system.CreatedAt,
		&system.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system config: %w", err)
	}

	return &system, nil
}

// EnsureInitialized creates the system row if it does not exist
func (r *SystemRepository) EnsureInitialized(ctx context.Context, epoch time.Time) error {
	query := `
		INSERT INTO system_config (singleton, epoch)
		VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO NOTHING
	`

	_, err := r.q.Exec(ctx, query, epoch)
	if err != nil {
		return fmt.Errorf("failed to initialize system config: %w", err)
	}

	return nil
}

// IncrementUserCount bumps the registered-user counter
func (r *SystemRepository) IncrementUserCount(ctx context.Context) error {
	query := `
		UPDATE system_config
		SET user_count = user_count + 1, updated_at = NOW()
		WHERE singleton
	`

	result, err := r.q.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to increment user count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("system config not initialized")
	}

	return nil
}

// AddLoyaltyPoints bumps the loyalty-point counter
func (r *SystemRepository) AddLoyaltyPoints(ctx context.Context, points int64) error {
	if points <= 0 {
		return fmt.Errorf("points must be positive")
	}

	query := `
		UPDATE system_config
		SET loyalty_points = loyalty_points + $1, updated_at = NOW()
		WHERE singleton
	`

	result, err := r.q.Exec(ctx, query, points)
	if err != nil {
		return fmt.Errorf("failed to add loyalty points: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("system config not initialized")
	}

	return nil
}
