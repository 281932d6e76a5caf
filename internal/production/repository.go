package production

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

// Repository provides PostgreSQL backed persistence for production orders.
// Materials are stored as a JSONB column; the list is small and always read
// and written with its order.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new production order.
func (r *Repository) Create(ctx context.Context, order Order) error {
	materials, err := json.Marshal(order.Materials)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO production_orders
(id, number, product_name, category, quantity, materials, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.Number, order.ProductName, order.Category, order.Quantity,
		materials, string(order.Status), order.CreatedBy, order.CreatedAt, order.UpdatedAt)
	return err
}

// Get returns a production order by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, number, product_name, category, quantity, materials, status, created_by, created_at, updated_at
FROM production_orders WHERE id=$1`, id)
	return scanOrder(row)
}

// List returns production orders, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, product_name, category, quantity, materials, status, created_by, created_at, updated_at
FROM production_orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// Search matches orders by number or product name fragment.
func (r *Repository) Search(ctx context.Context, term string) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, product_name, category, quantity, materials, status, created_by, created_at, updated_at
FROM production_orders WHERE number ILIKE '%'||$1||'%' OR product_name ILIKE '%'||$1||'%'
ORDER BY created_at DESC`, term)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// CASStatus transitions status only when the stored value still matches
// expected. A row that exists but no longer matches yields ErrConflict.
func (r *Repository) CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE production_orders SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		string(next), time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return shared.ErrConflict
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var order Order
	var materials []byte
	var status string
	err := row.Scan(&order.ID, &order.Number, &order.ProductName, &order.Category, &order.Quantity,
		&materials, &status, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	order.Status = lifecycle.Status(status)
	if err := json.Unmarshal(materials, &order.Materials); err != nil {
		return Order{}, err
	}
	return order, nil
}
