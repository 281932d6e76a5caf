package assembly

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

// Repository provides PostgreSQL backed persistence for assembly orders.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new assembly order.
func (r *Repository) Create(ctx context.Context, order Order) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO assembly_orders
(id, number, production_order_id, product_name, category, quantity, status, progress, quality_check, testing_passed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		order.ID, order.Number, order.ProductionOrderID, order.ProductName, order.Category, order.Quantity,
		string(order.Status), order.Progress, order.QualityCheck, order.TestingPassed, order.CreatedAt, order.UpdatedAt)
	return err
}

// Get returns an assembly order by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, number, production_order_id, product_name, category, quantity, status, progress, quality_check, testing_passed, started_at, completed_at, created_at, updated_at
FROM assembly_orders WHERE id=$1`, id)
	return scanOrder(row)
}

// List returns assembly orders, newest first.
func (r *Repository) List(ctx context.Context) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, number, production_order_id, product_name, category, quantity, status, progress, quality_check, testing_passed, started_at, completed_at, created_at, updated_at
FROM assembly_orders ORDER BY created_at DESC`)
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

// CASStart flips the order into in_progress, stamping startedAt and
// resetting progress, guarded by the observed status.
func (r *Repository) CASStart(ctx context.Context, id uuid.UUID, expected lifecycle.Status) error {
	now := time.Now()
	tag, err := r.pool.Exec(ctx, `UPDATE assembly_orders SET status=$1, progress=0, started_at=$2, updated_at=$2 WHERE id=$3 AND status=$4`,
		string(StatusInProgress), now, id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// CASProgress advances progress, guarded by both the observed status and the
// observed progress so concurrent advances cannot interleave.
func (r *Repository) CASProgress(ctx context.Context, id uuid.UUID, expectedProgress, newProgress int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE assembly_orders SET progress=$1, updated_at=$2 WHERE id=$3 AND status=$4 AND progress=$5`,
		newProgress, time.Now(), id, string(StatusInProgress), expectedProgress)
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// CASStatus transitions status only when the stored value still matches.
func (r *Repository) CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE assembly_orders SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`,
		string(next), time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// CASComplete marks the order completed, stamping completedAt and the
// quality flags, guarded by status and full progress.
func (r *Repository) CASComplete(ctx context.Context, id uuid.UUID, expected lifecycle.Status) error {
	now := time.Now()
	tag, err := r.pool.Exec(ctx, `UPDATE assembly_orders SET status=$1, quality_check=TRUE, testing_passed=TRUE, completed_at=$2, updated_at=$2 WHERE id=$3 AND status=$4 AND progress=100`,
		string(StatusCompleted), now, id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

func (r *Repository) casOutcome(ctx context.Context, id uuid.UUID, affected int64) error {
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
	var status string
	err := row.Scan(&order.ID, &order.Number, &order.ProductionOrderID, &order.ProductName, &order.Category, &order.Quantity,
		&status, &order.Progress, &order.QualityCheck, &order.TestingPassed, &order.StartedAt, &order.CompletedAt,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, shared.ErrNotFound
		}
		return Order{}, err
	}
	order.Status = lifecycle.Status(status)
	return order, nil
}
