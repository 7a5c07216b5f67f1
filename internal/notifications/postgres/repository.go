// Package postgres persists the notification retry queue.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yechale/rollcall/internal/notifications"
)

// slotName is the single named storage slot the queue owns. The serialized
// list is read in full on startup and overwritten in full on every
// mutation; the queue is the slot's only writer.
const slotName = "sync_queue"

// Repository implements notifications.Store on a single jsonb slot.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a queue store backed by the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Load reads the full queue slot. A missing slot is an empty queue.
func (r *Repository) Load(ctx context.Context) ([]notifications.QueuedOperation, error) {
	var raw []byte
	err := r.db.QueryRow(ctx,
		`SELECT operations FROM retry_queue WHERE slot = $1`,
		slotName,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue slot: %w", err)
	}

	var ops []notifications.QueuedOperation
	if err := json.Unmarshal(raw, &ops); err != nil {
		return nil, fmt.Errorf("decode queue slot: %w", err)
	}
	return ops, nil
}

// Save overwrites the queue slot with the full list.
func (r *Repository) Save(ctx context.Context, ops []notifications.QueuedOperation) error {
	if ops == nil {
		ops = []notifications.QueuedOperation{}
	}

	raw, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("encode queue slot: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO retry_queue (slot, operations, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (slot) DO UPDATE SET operations = EXCLUDED.operations, updated_at = now()`,
		slotName, raw,
	)
	if err != nil {
		return fmt.Errorf("write queue slot: %w", err)
	}
	return nil
}
