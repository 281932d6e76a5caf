package showroom

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/shared"
)

// Repository provides PostgreSQL backed persistence for showroom products.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a product record.
func (r *Repository) Create(ctx context.Context, p Product) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO showroom_products
(id, production_order_id, name, category, unit_price, available_qty, published_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.ProductionOrderID, p.Name, p.Category, p.UnitPrice, p.AvailableQty, p.PublishedAt, p.UpdatedAt)
	return err
}

// Get returns a product by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, production_order_id, name, category, unit_price, available_qty, published_at, updated_at
FROM showroom_products WHERE id=$1`, id)
	return scanProduct(row)
}

// List returns the catalog, newest first.
func (r *Repository) List(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, production_order_id, name, category, unit_price, available_qty, published_at, updated_at
FROM showroom_products ORDER BY published_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SetPrice updates the unit price.
func (r *Repository) SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, `UPDATE showroom_products SET unit_price=$1, updated_at=$2 WHERE id=$3`, price, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Reserve decrements available quantity when enough remains. A surviving
// row with too little stock yields ErrConflict.
func (r *Repository) Reserve(ctx context.Context, id uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE showroom_products SET available_qty = available_qty - $1, updated_at=$2
WHERE id=$3 AND available_qty >= $1`, quantity, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return shared.ErrConflict
}

// Release returns previously reserved quantity to the shelf.
func (r *Repository) Release(ctx context.Context, id uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE showroom_products SET available_qty = available_qty + $1, updated_at=$2 WHERE id=$3`,
		quantity, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ProductionOrderID, &p.Name, &p.Category, &p.UnitPrice, &p.AvailableQty, &p.PublishedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}
