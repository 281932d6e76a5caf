package purchase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/production"
	"github.com/craftline-erp/craftline/internal/shared"
)

// Repository provides PostgreSQL backed persistence for purchase orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new purchase order.
func (r *Repository) Create(ctx context.Context, order Order) error {
	materials, err := json.Marshal(order.Materials)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO purchase_orders
(id, number, production_order_id, product_name, quantity, materials, status, requested_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.Number, order.ProductionOrderID, order.ProductName, order.Quantity,
		materials, string(order.Status), order.RequestedBy, order.CreatedAt, order.UpdatedAt)
	return err
}

// Get returns a purchase order by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, number, production_order_id, product_name, quantity, materials, status, last_stock_check, requested_by, created_at, updated_at
FROM purchase_orders WHERE id=$1`, id)
	return scanOrder(row)
}

// List returns purchase orders, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, production_order_id, product_name, quantity, materials, status, last_stock_check, requested_by, created_at, updated_at
FROM purchase_orders ORDER BY created_at DESC`)
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
// expected; a surviving row that no longer matches yields ErrConflict.
func (r *Repository) CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		string(next), time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return casOutcome(ctx, r, id, tag.RowsAffected())
}

// ApplyStockCheck stores the availability snapshot and the resulting status
// in one compare-and-set write.
func (r *Repository) ApplyStockCheck(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status, lines []StockCheckLine) error {
	snapshot, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET status=$1, last_stock_check=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		string(next), snapshot, time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return casOutcome(ctx, r, id, tag.RowsAffected())
}

// Rewrite replaces quantity and materials while the status stays put. The
// status predicate doubles as the optimistic-concurrency check.
func (r *Repository) Rewrite(ctx context.Context, id uuid.UUID, expected lifecycle.Status, quantity int, materials []production.Material) error {
	encoded, err := json.Marshal(materials)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET quantity=$1, materials=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		quantity, encoded, time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return casOutcome(ctx, r, id, tag.RowsAffected())
}

func casOutcome(ctx context.Context, r *Repository, id uuid.UUID, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return shared.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var order Order
	var materials []byte
	var stockCheck []byte
	var status string
	err := row.Scan(&order.ID, &order.Number, &order.ProductionOrderID, &order.ProductName, &order.Quantity,
		&materials, &status, &stockCheck, &order.RequestedBy, &order.CreatedAt, &order.UpdatedAt)
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
	if len(stockCheck) > 0 {
		if err := json.Unmarshal(stockCheck, &order.LastStockCheck); err != nil {
			return Order{}, err
		}
	}
	return order, nil
}
