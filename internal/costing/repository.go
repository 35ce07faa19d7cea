// Package costing recomputes moving weighted-average cost prices from
// purchase records.
package costing

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchaseLine is one purchase detail row relevant to costing.
type PurchaseLine struct {
	ProductCode string
	Quantity    int
	CostPrice   float64
}

type Repository interface {
	// PurchaseLinesForDate returns every purchase line dated within the given
	// civil day across all shops, excluding shops flagged hidden.
	PurchaseLinesForDate(ctx context.Context, date time.Time) ([]PurchaseLine, error)
	// AvgCost returns the product's current average cost, nil when unset.
	AvgCost(ctx context.Context, productCode string) (*float64, error)
	// TotalStock sums live stock for the product across all shops.
	TotalStock(ctx context.Context, productCode string) (int, error)
	SetAvgCost(ctx context.Context, productCode string, value float64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) PurchaseLinesForDate(ctx context.Context, date time.Time) ([]PurchaseLine, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	rows, err := r.pool.Query(ctx, `
		SELECT d.product_code, d.quantity, d.cost_price
		FROM purchase_details d
		JOIN purchases p ON p.id = d.header_id
		JOIN shops s ON s.code = p.shop_code
		WHERE p.date >= $1 AND p.date < $2 AND s.hidden = false`,
		dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []PurchaseLine
	for rows.Next() {
		var l PurchaseLine
		if err := rows.Scan(&l.ProductCode, &l.Quantity, &l.CostPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) AvgCost(ctx context.Context, productCode string) (*float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx,
		`SELECT avg_cost_price FROM products WHERE code = $1`, productCode).Scan(&avg)
	return avg, err
}

func (r *repository) TotalStock(ctx context.Context, productCode string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM stocks WHERE product_code = $1`, productCode).Scan(&total)
	return total, err
}

func (r *repository) SetAvgCost(ctx context.Context, productCode string, value float64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE products SET avg_cost_price = $2, updated_at = now() WHERE code = $1`,
		productCode, value)
	return err
}
