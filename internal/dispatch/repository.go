package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

const recordColumns = `id, sales_order_id, order_number, delivery_type, status, handed_over_by, delivered_at, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for dispatch records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert creates a dispatch record. The unique index on sales_order_id turns
// a duplicate insert into ErrConflict instead of a second record.
func (r *Repository) Insert(ctx context.Context, rec Record) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO dispatch_records (`+recordColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		rec.ID, rec.SalesOrderID, rec.OrderNumber, rec.DeliveryType, string(rec.Status), rec.HandedOverBy, rec.DeliveredAt, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrConflict
		}
		return err
	}
	return nil
}

// Get returns a record by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM dispatch_records WHERE id=$1`, id)
	return scanRecord(row)
}

// GetByOrder returns the record for a sales order.
func (r *Repository) GetByOrder(ctx context.Context, salesOrderID uuid.UUID) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM dispatch_records WHERE sales_order_id=$1`, salesOrderID)
	return scanRecord(row)
}

// List returns dispatch records, newest first.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+recordColumns+` FROM dispatch_records ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CASStatus transitions status only from the expected value. Confirming
// delivery also stamps delivered_at.
func (r *Repository) CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	var deliveredAt any
	if next == StatusDelivered {
		deliveredAt = time.Now()
	}
	tag, err := r.pool.Exec(ctx, `UPDATE dispatch_records SET status=$1, delivered_at=COALESCE($2, delivered_at), updated_at=$3 WHERE id=$4 AND status=$5`,
		string(next), deliveredAt, time.Now(), id, string(expected))
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var status string
	err := row.Scan(&rec.ID, &rec.SalesOrderID, &rec.OrderNumber, &rec.DeliveryType, &status, &rec.HandedOverBy, &rec.DeliveredAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	rec.Status = lifecycle.Status(status)
	return rec, nil
}
