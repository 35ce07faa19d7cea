package shops

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-pos/meridian-pos/internal/platform/db"
)

// ErrNotFound indicates the shop code does not exist.
var ErrNotFound = errors.New("shops: not found")

// ErrIdentityExists indicates the login identity was already provisioned.
var ErrIdentityExists = errors.New("shops: identity already exists")

// ListFilters narrows shop listings.
type ListFilters struct {
	Search string
	Hidden *bool
	Page   int
	Limit  int
}

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Shop, int, error)
	GetByCode(ctx context.Context, code string) (Shop, error)
	UpsertBatch(ctx context.Context, batch []UpsertShop) error
	CreateIdentity(ctx context.Context, email, passwordHash, role string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const shopColumns = `id, code, name, kana, address, phone, role, hidden, created_at, updated_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Shop, int, error) {
	query := `SELECT ` + shopColumns + ` FROM shops WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM shops WHERE 1=1`
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

	var result []Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Kana, &s.Address, &s.Phone,
			&s.Role, &s.Hidden, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	return result, total, rows.Err()
}

func (r *repository) GetByCode(ctx context.Context, code string) (Shop, error) {
	var s Shop
	err := r.pool.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE code = $1`, code).
		Scan(&s.ID, &s.Code, &s.Name, &s.Kana, &s.Address, &s.Phone,
			&s.Role, &s.Hidden, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Shop{}, ErrNotFound
	}
	return s, err
}

// UpsertBatch merges one batch of roster rows inside a single transaction.
// Atomicity holds within the batch only; other batches commit independently.
func (r *repository) UpsertBatch(ctx context.Context, batch []UpsertShop) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, item := range batch {
			s := item.Shop
			if item.SetDefaults {
				if _, err := tx.Exec(ctx, `
					INSERT INTO shops (code, name, kana, address, phone, role, hidden, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, 'shop', false, now(), now())
					ON CONFLICT (code) DO UPDATE SET
						name = EXCLUDED.name, kana = EXCLUDED.kana,
						address = EXCLUDED.address, phone = EXCLUDED.phone,
						role = 'shop', hidden = false, updated_at = now()`,
					s.Code, s.Name, s.Kana, s.Address, s.Phone); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO shops (code, name, kana, address, phone, role, hidden, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, '', true, now(), now())
				ON CONFLICT (code) DO UPDATE SET
					name = EXCLUDED.name, kana = EXCLUDED.kana,
					address = EXCLUDED.address, phone = EXCLUDED.phone, updated_at = now()`,
				s.Code, s.Name, s.Kana, s.Address, s.Phone); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateIdentity inserts a login identity. A unique violation on the email
// means the identity was provisioned by an earlier run and is not an error.
func (r *repository) CreateIdentity(ctx context.Context, email, passwordHash, role string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO identities (email, password_hash, role, created_at)
		VALUES ($1, $2, $3, now())`, email, passwordHash, role)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrIdentityExists
		}
		return err
	}
	return nil
}
