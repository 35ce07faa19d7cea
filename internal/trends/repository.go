package trends

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/trade"
)

type Repository interface {
	// MovementLines returns the stream's lines for one product at one shop,
	// dated by the header's business date.
	MovementLines(ctx context.Context, kind trade.MovementKind, shopCode, productCode string, from, to time.Time) ([]MovementLine, error)
	// SaleLines returns sale lines for the product, dated by the sale header.
	SaleLines(ctx context.Context, shopCode, productCode string, from, to time.Time) ([]SaleLine, error)
	// MonthlyBaseline reads the archived stock quantity for the month label;
	// a missing snapshot row yields zero.
	MonthlyBaseline(ctx context.Context, month, shopCode, productCode string) (int, error)
}

var movementTables = map[trade.MovementKind][2]string{
	trade.KindPurchase:  {"purchases", "purchase_details"},
	trade.KindDelivery:  {"deliveries", "delivery_details"},
	trade.KindRejection: {"rejections", "rejection_details"},
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) MovementLines(ctx context.Context, kind trade.MovementKind, shopCode, productCode string, from, to time.Time) ([]MovementLine, error) {
	tables := movementTables[kind]
	rows, err := r.pool.Query(ctx, `
		SELECT h.date, d.quantity, d.cost_price
		FROM `+tables[1]+` d
		JOIN `+tables[0]+` h ON h.id = d.header_id
		WHERE h.shop_code = $1 AND d.product_code = $2 AND h.date >= $3 AND h.date < $4
		ORDER BY h.date`, shopCode, productCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []MovementLine
	for rows.Next() {
		var l MovementLine
		if err := rows.Scan(&l.Date, &l.Quantity, &l.CostPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) SaleLines(ctx context.Context, shopCode, productCode string, from, to time.Time) ([]SaleLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.date, s.returned, d.division_code, d.quantity, d.selling_price, d.discount
		FROM sale_details d
		JOIN sales s ON s.id = d.sale_id
		WHERE s.shop_code = $1 AND d.product_code = $2 AND s.date >= $3 AND s.date < $4
		ORDER BY s.date`, shopCode, productCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.Date, &l.Returned, &l.DivisionCode, &l.Quantity, &l.SellingPrice, &l.Discount); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) MonthlyBaseline(ctx context.Context, month, shopCode, productCode string) (int, error) {
	var quantity int
	err := r.pool.QueryRow(ctx, `
		SELECT quantity FROM monthly_stocks
		WHERE month = $1 AND shop_code = $2 AND product_code = $3`,
		month, shopCode, productCode).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return quantity, nil
}
