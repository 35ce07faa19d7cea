package trade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
)

// MovementKind selects one of the three stock-movement streams.
type MovementKind string

const (
	KindPurchase  MovementKind = "purchase"
	KindDelivery  MovementKind = "delivery"
	KindRejection MovementKind = "rejection"
)

// ErrNoSession indicates no register session matched the query.
var ErrNoSession = errors.New("trade: register session not found")

var movementTables = map[MovementKind][2]string{
	KindPurchase:  {"purchases", "purchase_details"},
	KindDelivery:  {"deliveries", "delivery_details"},
	KindRejection: {"rejections", "rejection_details"},
}

// stockDelta maps a movement kind to its effect on live stock.
var stockDelta = map[MovementKind]int{
	KindPurchase:  +1,
	KindDelivery:  -1,
	KindRejection: -1,
}

type Repository interface {
	RecordSale(ctx context.Context, sale Sale) (Sale, error)
	RecordMovement(ctx context.Context, kind MovementKind, movement Movement) (Movement, error)
	ListSales(ctx context.Context, shopCode string, from, to time.Time) ([]Sale, error)
	SaleLines(ctx context.Context, saleID int64) ([]SaleLine, error)
	OpenSession(ctx context.Context, shopCode string, at time.Time) (RegisterSession, error)
	CloseSession(ctx context.Context, shopCode string, at time.Time) error
	LatestSessionBefore(ctx context.Context, shopCode string, at time.Time) (RegisterSession, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// RecordSale writes the header and its lines in one transaction and adjusts
// live stock for each line. Returned sales add quantities back.
func (r *repository) RecordSale(ctx context.Context, sale Sale) (Sale, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		err := tx.QueryRow(ctx, `
			INSERT INTO sales (sequence_no, shop_code, date, returned, payment_type, credit_total, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			sale.SequenceNo, sale.ShopCode, sale.Date, sale.Returned,
			sale.PaymentType, sale.CreditTotal, now,
		).Scan(&sale.ID)
		if err != nil {
			return err
		}
		sale.CreatedAt = now

		sign := -1
		if sale.Returned {
			sign = +1
		}
		for i := range sale.Lines {
			line := &sale.Lines[i]
			line.SaleID = sale.ID
			line.Index = i
			if _, err := tx.Exec(ctx, `
				INSERT INTO sale_details (sale_id, "index", product_code, product_name, division_code, quantity, selling_price, discount, tax_rate)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				line.SaleID, line.Index, line.ProductCode, line.ProductName,
				line.DivisionCode, line.Quantity, line.SellingPrice, line.Discount, line.TaxRate); err != nil {
				return err
			}
			if err := adjustStock(ctx, tx, sale.ShopCode, line.ProductCode, line.ProductName, sign*line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// RecordMovement writes a purchase, delivery or rejection with its lines in
// one transaction and adjusts live stock accordingly.
func (r *repository) RecordMovement(ctx context.Context, kind MovementKind, movement Movement) (Movement, error) {
	tables, ok := movementTables[kind]
	if !ok {
		return Movement{}, fmt.Errorf("trade: unknown movement kind %q", kind)
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		now := time.Now()
		err := tx.QueryRow(ctx, `
			INSERT INTO `+tables[0]+` (sequence_no, shop_code, date, created_at)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			movement.SequenceNo, movement.ShopCode, movement.Date, now,
		).Scan(&movement.ID)
		if err != nil {
			return err
		}
		movement.CreatedAt = now

		for i := range movement.Lines {
			line := &movement.Lines[i]
			line.HeaderID = movement.ID
			line.Index = i
			if _, err := tx.Exec(ctx, `
				INSERT INTO `+tables[1]+` (header_id, "index", product_code, product_name, quantity, cost_price)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				line.HeaderID, line.Index, line.ProductCode, line.ProductName,
				line.Quantity, line.CostPrice); err != nil {
				return err
			}
			if err := adjustStock(ctx, tx, movement.ShopCode, line.ProductCode, line.ProductName, stockDelta[kind]*line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

func (r *repository) ListSales(ctx context.Context, shopCode string, from, to time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, sequence_no, shop_code, date, returned, payment_type, credit_total, created_at
		FROM sales
		WHERE shop_code = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at`, shopCode, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.SequenceNo, &s.ShopCode, &s.Date, &s.Returned,
			&s.PaymentType, &s.CreditTotal, &s.CreatedAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *repository) SaleLines(ctx context.Context, saleID int64) ([]SaleLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sale_id, "index", product_code, product_name, division_code, quantity, selling_price, discount, tax_rate
		FROM sale_details WHERE sale_id = $1 ORDER BY "index"`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.SaleID, &l.Index, &l.ProductCode, &l.ProductName,
			&l.DivisionCode, &l.Quantity, &l.SellingPrice, &l.Discount, &l.TaxRate); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) OpenSession(ctx context.Context, shopCode string, at time.Time) (RegisterSession, error) {
	var session RegisterSession
	err := r.pool.QueryRow(ctx, `
		INSERT INTO register_sessions (shop_code, opened_at) VALUES ($1, $2)
		RETURNING id`, shopCode, at).Scan(&session.ID)
	if err != nil {
		return RegisterSession{}, err
	}
	session.ShopCode = shopCode
	session.OpenedAt = at
	return session, nil
}

func (r *repository) CloseSession(ctx context.Context, shopCode string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE register_sessions SET closed_at = $2
		WHERE shop_code = $1 AND closed_at IS NULL`, shopCode, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoSession
	}
	return nil
}

// LatestSessionBefore returns the most recent session opened before the
// given instant.
func (r *repository) LatestSessionBefore(ctx context.Context, shopCode string, at time.Time) (RegisterSession, error) {
	var session RegisterSession
	err := r.pool.QueryRow(ctx, `
		SELECT id, shop_code, opened_at, closed_at
		FROM register_sessions
		WHERE shop_code = $1 AND opened_at < $2
		ORDER BY opened_at DESC LIMIT 1`, shopCode, at).
		Scan(&session.ID, &session.ShopCode, &session.OpenedAt, &session.ClosedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RegisterSession{}, ErrNoSession
	}
	if err != nil {
		return RegisterSession{}, err
	}
	return session, nil
}

// adjustStock folds a signed quantity into live stock, creating the row on
// first movement. The product name copy keeps the stock listing readable
// without a join.
func adjustStock(ctx context.Context, tx pgx.Tx, shopCode, productCode, productName string, delta int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stocks (shop_code, product_code, product_name, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (shop_code, product_code) DO UPDATE SET
			quantity = stocks.quantity + $4, updated_at = now()`,
		shopCode, productCode, productName, delta)
	return err
}
