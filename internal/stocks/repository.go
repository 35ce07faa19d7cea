package stocks

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	ListByShop(ctx context.Context, shopCode string) ([]Stock, error)
	All(ctx context.Context) ([]Stock, error)
	UpsertMonthly(ctx context.Context, snapshots []MonthlyStock) error
	ListMonthly(ctx context.Context, month, shopCode string) ([]MonthlyStock, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) ListByShop(ctx context.Context, shopCode string) ([]Stock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT shop_code, product_code, product_name, quantity, updated_at
		FROM stocks WHERE shop_code = $1 ORDER BY product_code`, shopCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStocks(rows)
}

func (r *repository) All(ctx context.Context) ([]Stock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT shop_code, product_code, product_name, quantity, updated_at
		FROM stocks ORDER BY shop_code, product_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStocks(rows)
}

// UpsertMonthly writes snapshot rows with overwrite semantics, so re-running
// a month's snapshot replaces prior values rather than duplicating them.
func (r *repository) UpsertMonthly(ctx context.Context, snapshots []MonthlyStock) error {
	for _, snap := range snapshots {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO monthly_stocks (month, shop_code, product_code, product_name, quantity)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (month, shop_code, product_code) DO UPDATE SET
				product_name = EXCLUDED.product_name, quantity = EXCLUDED.quantity`,
			snap.Month, snap.ShopCode, snap.ProductCode, snap.ProductName, snap.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) ListMonthly(ctx context.Context, month, shopCode string) ([]MonthlyStock, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT month, shop_code, product_code, product_name, quantity
		FROM monthly_stocks WHERE month = $1 AND shop_code = $2 ORDER BY product_code`,
		month, shopCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []MonthlyStock
	for rows.Next() {
		var m MonthlyStock
		if err := rows.Scan(&m.Month, &m.ShopCode, &m.ProductCode, &m.ProductName, &m.Quantity); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, m)
	}
	return snapshots, rows.Err()
}

func scanStocks(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Stock, error) {
	var stocks []Stock
	for rows.Next() {
		var s Stock
		if err := rows.Scan(&s.ShopCode, &s.ProductCode, &s.ProductName, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}
