package repository

import (
	"context"
	"fmt"

	"github.com/FreeosDAO/cronacle-backend/database"
	"github.com/FreeosDAO/cronacle-backend/models"
)

// QueueRepository implements the service.QueueRepository interface
type QueueRepository struct {
	q queryable
}

// NewQueueRepository creates a new queue repository
func NewQueueRepository(db *database.DB) *QueueRepository {
	return &QueueRepository{q: db.Pool}
}

// newQueueRepositoryWithTx creates a new queue repository with a transaction
func newQueueRepositoryWithTx(tx queryable) *QueueRepository {
	return &QueueRepository{q: tx}
}

// HeadAndNext returns the first two queue entries in FIFO order.
// Either return value may be nil.
func (r *QueueRepository) HeadAndNext(ctx context.Context) (*models.QueueItem, *models.QueueItem, error) {
	query := `
		SELECT position, item_id
		FROM queue_items
		ORDER BY position ASC
		LIMIT 2
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read queue head: %w", err)
	}
	defer rows.Close()

	var entries []*models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		if err := rows.Scan(&item.Position, &item.ItemID); err != nil {
			return nil, nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		entries = append(entries, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate queue items: %w", err)
	}

	var head, next *models.QueueItem
	if len(entries) > 0 {
		head = entries[0]
	}
	if len(entries) > 1 {
		next = entries[1]
	}
	return head, next, nil
}

// List returns all queue entries in FIFO order
func (r *QueueRepository) List(ctx context.Context) ([]*models.QueueItem, error) {
	query := `
		SELECT position, item_id
		FROM queue_items
		ORDER BY position ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue items: %w", err)
	}
	defer rows.Close()

	var items []*models.QueueItem
	for rows.Next() {
		var item models.QueueItem
		if err := rows.Scan(&item.Position, &item.ItemID); err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue items: %w", err)
	}

	return items, nil
}

// Enqueue appends an item to the queue tail
func (r *QueueRepository) Enqueue(ctx context.Context, itemID int64) (*models.QueueItem, error) {
	query := `
		INSERT INTO queue_items (position, item_id)
		VALUES ((SELECT COALESCE(MAX(position), 0) + 1 FROM queue_items), $1)
		RETURNING position, item_id
	`

	var item models.QueueItem
	err := r.q.QueryRow(ctx, query, itemID).Scan(&item.Position, &item.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue item %d: %w", itemID, err)
	}

	return &item, nil
}

// Remove deletes the queue entry for a settled item
func (r *QueueRepository) Remove(ctx context.Context, itemID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM queue_items WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove item %d from queue: %w", itemID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("item %d not found in queue", itemID)
	}

	return nil
}
