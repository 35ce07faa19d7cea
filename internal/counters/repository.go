// Package counters maintains named sequences and per-collection running totals.
package counters

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists sequences and collection counters.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Next atomically increments the named sequence and returns the new value.
// A missing sequence starts at 1.
func (r *Repository) Next(ctx context.Context, name string) (int64, error) {
	var current int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sequences (name, current) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET current = sequences.current + 1
		RETURNING current`, name).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("counters: next %s: %w", name, err)
	}
	return current, nil
}

// Add applies a delta to a collection counter, creating it on first use.
// Deltas are applied on document creation (+1) and deletion (-1).
func (r *Repository) Add(ctx context.Context, collection string, delta int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO collection_counters (collection, total) VALUES ($1, $2)
		ON CONFLICT (collection) DO UPDATE SET total = collection_counters.total + $2`,
		collection, delta)
	if err != nil {
		return fmt.Errorf("counters: add %s: %w", collection, err)
	}
	return nil
}

// Get returns the current total for a collection counter.
func (r *Repository) Get(ctx context.Context, collection string) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT total FROM collection_counters WHERE collection = $1`, collection).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}
