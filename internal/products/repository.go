package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
)

// ListFilters narrows product listings.
type ListFilters struct {
	Search string
	Hidden *bool
	Page   int
	Limit  int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, code string, product Product) error
	Delete(ctx context.Context, code string) error
}

// ErrNotFound indicates the product code does not exist.
var ErrNotFound = errors.New("products: not found")

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, code, name, kana, selling_price, cost_price, avg_cost_price, hidden, no_return, unregistered, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		clause := ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.Hidden != nil {
		argCount++
		clause := ` AND hidden = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, *filters.Hidden)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY code`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, p)
	}
	return result, total, rows.Err()
}

func (r *repository) GetByCode(ctx context.Context, code string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1`, code)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, kana, selling_price, cost_price, avg_cost_price, hidden, no_return, unregistered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id`,
		product.Code, product.Name, product.Kana, product.SellingPrice, product.CostPrice,
		product.AvgCostPrice, product.Hidden, product.NoReturn, product.Unregistered, now,
	).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

// Update rewrites the master row and, when the name changed, cascades the new
// name into the denormalized copies held by stocks and transaction detail rows.
func (r *repository) Update(ctx context.Context, code string, product Product) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var oldName string
		err := tx.QueryRow(ctx, `SELECT name FROM products WHERE code = $1 FOR UPDATE`, code).Scan(&oldName)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE products SET name = $2, kana = $3, selling_price = $4, cost_price = $5,
				hidden = $6, no_return = $7, unregistered = $8, updated_at = now()
			WHERE code = $1`,
			code, product.Name, product.Kana, product.SellingPrice, product.CostPrice,
			product.Hidden, product.NoReturn, product.Unregistered)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		if oldName == product.Name {
			return nil
		}
		for _, table := range []string{"stocks", "purchase_details", "delivery_details", "rejection_details", "sale_details"} {
			if _, err := tx.Exec(ctx,
				`UPDATE `+table+` SET product_name = $2 WHERE product_code = $1`, code, product.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) Delete(ctx context.Context, code string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Kana, &p.SellingPrice, &p.CostPrice,
		&p.AvgCostPrice, &p.Hidden, &p.NoReturn, &p.Unregistered, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
