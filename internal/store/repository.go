package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline-erp/craftline/internal/shared"
)

// Repository provides PostgreSQL backed persistence for stock items.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	AddOnHand(ctx context.Context, name string, qty int) error
	SetOnHand(ctx context.Context, name string, qty int) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepo{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

// Get returns a single stock item by material name.
func (r *Repository) Get(ctx context.Context, name string) (StockItem, error) {
	var item StockItem
	err := r.pool.QueryRow(ctx, `SELECT material_name, on_hand, updated_at FROM stock_items WHERE material_name=$1`, name).
		Scan(&item.MaterialName, &item.OnHand, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockItem{}, shared.ErrNotFound
		}
		return StockItem{}, err
	}
	return item, nil
}

// List returns every stock item ordered by material name.
func (r *Repository) List(ctx context.Context) ([]StockItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT material_name, on_hand, updated_at FROM stock_items ORDER BY material_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockItem
	for rows.Next() {
		var item StockItem
		if err := rows.Scan(&item.MaterialName, &item.OnHand, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// OnHandByNames returns on-hand quantities for the given material names.
// Unknown materials are absent from the result map.
func (r *Repository) OnHandByNames(ctx context.Context, names []string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT material_name, on_hand FROM stock_items WHERE material_name = ANY($1)`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	onHand := make(map[string]int, len(names))
	for rows.Next() {
		var name string
		var qty int
		if err := rows.Scan(&name, &qty); err != nil {
			return nil, err
		}
		onHand[name] = qty
	}
	return onHand, rows.Err()
}

func (t *txRepo) AddOnHand(ctx context.Context, name string, qty int) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO stock_items (material_name, on_hand, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (material_name) DO UPDATE SET on_hand = stock_items.on_hand + EXCLUDED.on_hand, updated_at = EXCLUDED.updated_at`,
		name, qty, time.Now())
	return err
}

func (t *txRepo) SetOnHand(ctx context.Context, name string, qty int) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO stock_items (material_name, on_hand, updated_at) VALUES ($1, $2, $3)
ON CONFLICT (material_name) DO UPDATE SET on_hand = EXCLUDED.on_hand, updated_at = EXCLUDED.updated_at`,
		name, qty, time.Now())
	return err
}
