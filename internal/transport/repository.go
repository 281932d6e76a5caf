package transport

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

const approvalColumns = `id, order_number, delivery_type, transport_cost, demand_amount, transport_notes,
negotiated_amount, customer_notes, status, decided_by, created_at, updated_at`

// Repository provides PostgreSQL backed persistence for transport approvals
// and the vehicle fleet.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateApproval inserts a new approval.
func (r *Repository) CreateApproval(ctx context.Context, a Approval) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO transport_approvals (`+approvalColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		a.ID, a.OrderNumber, a.DeliveryType, a.TransportCost, a.DemandAmount, a.TransportNotes,
		a.NegotiatedAmount, a.CustomerNotes, string(a.Status), a.DecidedBy, a.CreatedAt, a.UpdatedAt)
	return err
}

// GetApproval returns an approval by id.
func (r *Repository) GetApproval(ctx context.Context, id uuid.UUID) (Approval, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+approvalColumns+` FROM transport_approvals WHERE id=$1`, id)
	return scanApproval(row)
}

// OpenByOrder returns the approval still blocking the given order, if any.
func (r *Repository) OpenByOrder(ctx context.Context, orderNumber string) (Approval, error) {
	open := make([]string, len(openStatuses))
	for i, s := range openStatuses {
		open[i] = string(s)
	}
	row := r.pool.QueryRow(ctx, `SELECT `+approvalColumns+` FROM transport_approvals
WHERE order_number=$1 AND status=ANY($2) ORDER BY created_at DESC LIMIT 1`, orderNumber, open)
	return scanApproval(row)
}

// ListApprovals returns approvals, newest first.
func (r *Repository) ListApprovals(ctx context.Context) ([]Approval, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+approvalColumns+` FROM transport_approvals ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var approvals []Approval
	for rows.Next() {
		a, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, a)
	}
	return approvals, rows.Err()
}

// CASStatus transitions an approval's status only from the expected value.
func (r *Repository) CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status, decidedBy string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transport_approvals SET status=$1, decided_by=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		string(next), decidedBy, time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// ApplyRejection stores the demand alongside the status flip.
func (r *Repository) ApplyRejection(ctx context.Context, id uuid.UUID, expected lifecycle.Status, demand decimal.Decimal, notes, decidedBy string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transport_approvals SET status=$1, demand_amount=$2, transport_notes=$3, decided_by=$4, updated_at=$5
WHERE id=$6 AND status=$7`,
		string(StatusRejected), demand, notes, decidedBy, time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

// ApplyCounter stores the customer's counter-proposal alongside the status flip.
func (r *Repository) ApplyCounter(ctx context.Context, id uuid.UUID, amount decimal.Decimal, notes string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transport_approvals SET status=$1, negotiated_amount=$2, customer_notes=$3, updated_at=$4
WHERE id=$5 AND status=$6`,
		string(StatusRenegotiating), amount, notes, time.Now(), id, string(StatusRejected))
	if err != nil {
		return err
	}
	return r.casOutcome(ctx, id, tag.RowsAffected())
}

const vehicleColumns = `id, registration_number, model, capacity_kg, driver_name, status, assigned_order_number, created_at, updated_at`

// CreateVehicle inserts a fleet vehicle.
func (r *Repository) CreateVehicle(ctx context.Context, v Vehicle) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO transport_vehicles (`+vehicleColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		v.ID, v.RegistrationNumber, v.Model, v.CapacityKg, v.DriverName, string(v.Status), v.AssignedOrderNumber, v.CreatedAt, v.UpdatedAt)
	return err
}

// GetVehicle returns a vehicle by id.
func (r *Repository) GetVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM transport_vehicles WHERE id=$1`, id)
	return scanVehicle(row)
}

// UpdateVehicle rewrites the editable details of a vehicle.
func (r *Repository) UpdateVehicle(ctx context.Context, id uuid.UUID, model string, capacityKg int, driverName string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transport_vehicles SET model=$1, capacity_kg=$2, driver_name=$3, updated_at=$4 WHERE id=$5`,
		model, capacityKg, driverName, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteVehicle removes a vehicle from the fleet.
func (r *Repository) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transport_vehicles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListVehicles returns the fleet.
func (r *Repository) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+vehicleColumns+` FROM transport_vehicles ORDER BY registration_number ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var fleet []Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, v)
	}
	return fleet, rows.Err()
}

// CASVehicle transitions a vehicle's status only from the expected value and
// records the order it is serving, if any.
func (r *Repository) CASVehicle(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status, orderNumber string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE transport_vehicles SET status=$1, assigned_order_number=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		string(next), orderNumber, time.Now(), id, string(expected))
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	if _, err := r.GetVehicle(ctx, id); err != nil {
		return err
	}
	return shared.ErrConflict
}

func (r *Repository) casOutcome(ctx context.Context, id uuid.UUID, affected int64) error {
	if affected > 0 {
		return nil
	}
	if _, err := r.GetApproval(ctx, id); err != nil {
		return err
	}
	return shared.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApproval(row rowScanner) (Approval, error) {
	var a Approval
	var status string
	err := row.Scan(&a.ID, &a.OrderNumber, &a.DeliveryType, &a.TransportCost, &a.DemandAmount, &a.TransportNotes,
		&a.NegotiatedAmount, &a.CustomerNotes, &status, &a.DecidedBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Approval{}, shared.ErrNotFound
		}
		return Approval{}, err
	}
	a.Status = lifecycle.Status(status)
	return a, nil
}

func scanVehicle(row rowScanner) (Vehicle, error) {
	var v Vehicle
	var status string
	err := row.Scan(&v.ID, &v.RegistrationNumber, &v.Model, &v.CapacityKg, &v.DriverName, &status, &v.AssignedOrderNumber, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vehicle{}, shared.ErrNotFound
		}
		return Vehicle{}, err
	}
	v.Status = lifecycle.Status(status)
	return v, nil
}
