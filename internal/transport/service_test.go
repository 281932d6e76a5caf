package transport

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryTransportRepo struct {
	approvals map[uuid.UUID]Approval
	vehicles  map[uuid.UUID]Vehicle
}

func newMemoryTransportRepo() *memoryTransportRepo {
	return &memoryTransportRepo{
		approvals: make(map[uuid.UUID]Approval),
		vehicles:  make(map[uuid.UUID]Vehicle),
	}
}

func (m *memoryTransportRepo) CreateApproval(_ context.Context, a Approval) error {
	m.approvals[a.ID] = a
	return nil
}

func (m *memoryTransportRepo) GetApproval(_ context.Context, id uuid.UUID) (Approval, error) {
	a, ok := m.approvals[id]
	if !ok {
		return Approval{}, fmt.Errorf("approval: %w", shared.ErrNotFound)
	}
	return a, nil
}

func (m *memoryTransportRepo) OpenByOrder(_ context.Context, orderNumber string) (Approval, error) {
	for _, a := range m.approvals {
		if a.OrderNumber != orderNumber {
			continue
		}
		for _, open := range openStatuses {
			if a.Status == open {
				return a, nil
			}
		}
	}
	return Approval{}, fmt.Errorf("approval for %s: %w", orderNumber, shared.ErrNotFound)
}

func (m *memoryTransportRepo) ListApprovals(_ context.Context) ([]Approval, error) {
	out := make([]Approval, 0, len(m.approvals))
	for _, a := range m.approvals {
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryTransportRepo) CASStatus(_ context.Context, id uuid.UUID, expected, next lifecycle.Status, decidedBy string) error {
	a, ok := m.approvals[id]
	if !ok {
		return fmt.Errorf("approval: %w", shared.ErrNotFound)
	}
	if a.Status != expected {
		return fmt.Errorf("approval moved: %w", shared.ErrConflict)
	}
	a.Status = next
	a.DecidedBy = decidedBy
	m.approvals[id] = a
	return nil
}

func (m *memoryTransportRepo) ApplyRejection(_ context.Context, id uuid.UUID, expected lifecycle.Status, demand decimal.Decimal, notes, decidedBy string) error {
	a, ok := m.approvals[id]
	if !ok {
		return fmt.Errorf("approval: %w", shared.ErrNotFound)
	}
	if a.Status != expected {
		return fmt.Errorf("approval moved: %w", shared.ErrConflict)
	}
	a.Status = StatusRejected
	a.DemandAmount = demand
	a.TransportNotes = notes
	a.DecidedBy = decidedBy
	m.approvals[id] = a
	return nil
}

func (m *memoryTransportRepo) ApplyCounter(_ context.Context, id uuid.UUID, amount decimal.Decimal, notes string) error {
	a, ok := m.approvals[id]
	if !ok {
		return fmt.Errorf("approval: %w", shared.ErrNotFound)
	}
	if a.Status != StatusRejected {
		return fmt.Errorf("approval moved: %w", shared.ErrConflict)
	}
	a.Status = StatusRenegotiating
	a.NegotiatedAmount = amount
	a.CustomerNotes = notes
	m.approvals[id] = a
	return nil
}

func (m *memoryTransportRepo) CreateVehicle(_ context.Context, v Vehicle) error {
	m.vehicles[v.ID] = v
	return nil
}

func (m *memoryTransportRepo) GetVehicle(_ context.Context, id uuid.UUID) (Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return Vehicle{}, fmt.Errorf("vehicle: %w", shared.ErrNotFound)
	}
	return v, nil
}

func (m *memoryTransportRepo) ListVehicles(_ context.Context) ([]Vehicle, error) {
	out := make([]Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, v)
	}
	return out, nil
}

func (m *memoryTransportRepo) UpdateVehicle(_ context.Context, id uuid.UUID, model string, capacityKg int, driverName string) error {
	v, ok := m.vehicles[id]
	if !ok {
		return fmt.Errorf("vehicle: %w", shared.ErrNotFound)
	}
	v.Model = model
	v.CapacityKg = capacityKg
	v.DriverName = driverName
	m.vehicles[id] = v
	return nil
}

func (m *memoryTransportRepo) DeleteVehicle(_ context.Context, id uuid.UUID) error {
	if _, ok := m.vehicles[id]; !ok {
		return fmt.Errorf("vehicle: %w", shared.ErrNotFound)
	}
	delete(m.vehicles, id)
	return nil
}

func (m *memoryTransportRepo) CASVehicle(_ context.Context, id uuid.UUID, expected, next lifecycle.Status, orderNumber string) error {
	v, ok := m.vehicles[id]
	if !ok {
		return fmt.Errorf("vehicle: %w", shared.ErrNotFound)
	}
	if v.Status != expected {
		return fmt.Errorf("vehicle moved: %w", shared.ErrConflict)
	}
	v.Status = next
	v.AssignedOrderNumber = orderNumber
	m.vehicles[id] = v
	return nil
}

type fakeSalesPort struct {
	approved []string
	demands  map[string]decimal.Decimal
	reopened []string
}

func newFakeSalesPort() *fakeSalesPort {
	return &fakeSalesPort{demands: make(map[string]decimal.Decimal)}
}

func (f *fakeSalesPort) MarkTransportApproved(_ context.Context, orderNumber string) error {
	f.approved = append(f.approved, orderNumber)
	return nil
}

func (f *fakeSalesPort) ApplyDemandAmount(_ context.Context, orderNumber string, demand decimal.Decimal) error {
	f.demands[orderNumber] = demand
	return nil
}

func (f *fakeSalesPort) ReopenForEdit(_ context.Context, orderNumber string) error {
	f.reopened = append(f.reopened, orderNumber)
	return nil
}

func newTransportFixture(t *testing.T) (*Service, *memoryTransportRepo, *fakeSalesPort) {
	t.Helper()
	repo := newMemoryTransportRepo()
	sales := newFakeSalesPort()
	svc := NewService(repo, nil)
	svc.BindSales(sales)
	return svc, repo, sales
}

func openApproval(t *testing.T, svc *Service, repo *memoryTransportRepo, orderNumber string, cost int64) Approval {
	t.Helper()
	require.NoError(t, svc.OpenApproval(context.Background(), orderNumber, "part load", decimal.NewFromInt(cost)))
	a, err := repo.OpenByOrder(context.Background(), orderNumber)
	require.NoError(t, err)
	return a
}

func TestOpenApprovalIsExclusivePerOrder(t *testing.T) {
	svc, repo, _ := newTransportFixture(t)
	openApproval(t, svc, repo, "SO-1", 200)

	err := svc.OpenApproval(context.Background(), "SO-1", "part load", decimal.NewFromInt(250))
	require.ErrorIs(t, err, shared.ErrConflict)

	err = svc.OpenApproval(context.Background(), "  ", "part load", decimal.NewFromInt(250))
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestApproveOriginalQuote(t *testing.T) {
	svc, repo, sales := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	got, err := svc.Approve(context.Background(), a.ID, "transport-head")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)
	require.Equal(t, "transport-head", got.DecidedBy)
	require.Equal(t, []string{"SO-1"}, sales.approved)
	require.Empty(t, sales.demands)
}

func TestRejectNeedsDemandAndNotes(t *testing.T) {
	svc, repo, _ := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	_, err := svc.Reject(context.Background(), a.ID, decimal.Zero, "too far", "transport-head")
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Reject(context.Background(), a.ID, decimal.NewFromInt(300), "   ", "transport-head")
	require.ErrorIs(t, err, shared.ErrValidation)

	// A failed rejection leaves the approval untouched.
	got, err := repo.GetApproval(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusPending, got.Status)
	require.True(t, got.DemandAmount.IsZero())
}

func TestAcceptDemandAppliesDemandToOrder(t *testing.T) {
	svc, repo, sales := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	_, err := svc.Reject(context.Background(), a.ID, decimal.NewFromInt(300), "long distance", "transport-head")
	require.NoError(t, err)

	got, err := svc.AcceptDemand(context.Background(), a.ID, "customer")
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, got.Status)
	require.True(t, sales.demands["SO-1"].Equal(decimal.NewFromInt(300)))
}

func TestRenegotiationLoopSettlesOnCounter(t *testing.T) {
	svc, repo, sales := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	// Several rounds with no cap on count.
	for round := 0; round < 3; round++ {
		_, err := svc.Reject(context.Background(), a.ID, decimal.NewFromInt(int64(300+round*10)), "fuel surcharge", "transport-head")
		require.NoError(t, err)
		_, err = svc.Renegotiate(context.Background(), a.ID, decimal.NewFromInt(int64(250+round*10)), "meet in the middle", "customer")
		require.NoError(t, err)
	}

	got, err := svc.Approve(context.Background(), a.ID, "transport-head")
	require.NoError(t, err)
	require.Equal(t, StatusApproved, got.Status)
	// Approving a counter settles at the customer's figure.
	require.True(t, sales.demands["SO-1"].Equal(decimal.NewFromInt(270)))
	require.Empty(t, sales.approved)
}

func TestRenegotiateGuards(t *testing.T) {
	svc, repo, _ := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	// Counter before any rejection is not a legal move.
	_, err := svc.Renegotiate(context.Background(), a.ID, decimal.NewFromInt(250), "counter", "customer")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = svc.Reject(context.Background(), a.ID, decimal.NewFromInt(300), "long distance", "transport-head")
	require.NoError(t, err)

	_, err = svc.Renegotiate(context.Background(), a.ID, decimal.Zero, "counter", "customer")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Renegotiate(context.Background(), a.ID, decimal.NewFromInt(250), "  ", "customer")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestModifyOrderCancelsAndReopens(t *testing.T) {
	svc, repo, sales := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	_, err := svc.Reject(context.Background(), a.ID, decimal.NewFromInt(300), "long distance", "transport-head")
	require.NoError(t, err)

	got, err := svc.ModifyOrder(context.Background(), a.ID, "customer")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
	require.Equal(t, []string{"SO-1"}, sales.reopened)

	// The cancelled approval no longer blocks a fresh one.
	openApproval(t, svc, repo, "SO-1", 220)
}

func TestCancelPending(t *testing.T) {
	svc, repo, _ := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	require.NoError(t, svc.CancelPending(context.Background(), "SO-1"))
	got, err := repo.GetApproval(context.Background(), a.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)

	err = svc.CancelPending(context.Background(), "SO-1")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestApprovalTerminalStatesRejectFurtherMoves(t *testing.T) {
	svc, repo, _ := newTransportFixture(t)
	a := openApproval(t, svc, repo, "SO-1", 200)

	_, err := svc.Approve(context.Background(), a.ID, "transport-head")
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), a.ID, "transport-head")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	_, err = svc.Reject(context.Background(), a.ID, decimal.NewFromInt(300), "notes", "transport-head")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
	_, err = svc.ModifyOrder(context.Background(), a.ID, "customer")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestVehicleLifecycle(t *testing.T) {
	svc, _, _ := newTransportFixture(t)
	ctx := context.Background()

	v, err := svc.AddVehicle(ctx, AddVehicleInput{RegistrationNumber: "KA-01-2345", Model: "Tata 407", CapacityKg: 2500}, "fleet")
	require.NoError(t, err)
	require.Equal(t, VehicleAvailable, v.Status)

	v, err = svc.AssignVehicle(ctx, v.ID, "SO-1", "fleet")
	require.NoError(t, err)
	require.Equal(t, VehicleAssigned, v.Status)
	require.Equal(t, "SO-1", v.AssignedOrderNumber)

	// An assigned vehicle cannot enter the workshop.
	_, err = svc.EnterWorkshop(ctx, v.ID, "fleet")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	v, err = svc.StartReturn(ctx, v.ID, "fleet")
	require.NoError(t, err)
	require.Equal(t, VehicleReturning, v.Status)

	v, err = svc.MarkReturned(ctx, v.ID, "fleet")
	require.NoError(t, err)
	require.Equal(t, VehicleAvailable, v.Status)

	v, err = svc.EnterWorkshop(ctx, v.ID, "fleet")
	require.NoError(t, err)
	require.Equal(t, VehicleMaintenance, v.Status)

	v, err = svc.LeaveWorkshop(ctx, v.ID, "fleet")
	require.NoError(t, err)
	require.Equal(t, VehicleAvailable, v.Status)
}

func TestEditVehicle(t *testing.T) {
	svc, _, _ := newTransportFixture(t)
	ctx := context.Background()

	v, err := svc.AddVehicle(ctx, AddVehicleInput{RegistrationNumber: "KA-01-2345", Model: "Tata 407", CapacityKg: 2500, DriverName: "Suresh"}, "fleet")
	require.NoError(t, err)
	require.Equal(t, "Suresh", v.DriverName)

	v, err = svc.EditVehicle(ctx, v.ID, EditVehicleInput{Model: "Tata 709", CapacityKg: 4000, DriverName: "Mahesh"}, "fleet")
	require.NoError(t, err)
	require.Equal(t, "Tata 709", v.Model)
	require.Equal(t, 4000, v.CapacityKg)
	require.Equal(t, "Mahesh", v.DriverName)
	// Registration is identity and survives the edit untouched.
	require.Equal(t, "KA-01-2345", v.RegistrationNumber)

	_, err = svc.EditVehicle(ctx, v.ID, EditVehicleInput{Model: "Tata 709"}, "fleet")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.EditVehicle(ctx, uuid.New(), EditVehicleInput{Model: "Tata 709", CapacityKg: 4000}, "fleet")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteVehicle(t *testing.T) {
	svc, repo, _ := newTransportFixture(t)
	ctx := context.Background()

	v, err := svc.AddVehicle(ctx, AddVehicleInput{RegistrationNumber: "KA-01-2345", Model: "Tata 407", CapacityKg: 2500}, "fleet")
	require.NoError(t, err)

	// A vehicle out on a run stays in the fleet.
	_, err = svc.AssignVehicle(ctx, v.ID, "SO-1", "fleet")
	require.NoError(t, err)
	err = svc.DeleteVehicle(ctx, v.ID, "fleet")
	require.ErrorIs(t, err, shared.ErrConflict)

	_, err = svc.StartReturn(ctx, v.ID, "fleet")
	require.NoError(t, err)
	_, err = svc.MarkReturned(ctx, v.ID, "fleet")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteVehicle(ctx, v.ID, "fleet"))
	require.Empty(t, repo.vehicles)
	err = svc.DeleteVehicle(ctx, v.ID, "fleet")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAddVehicleValidation(t *testing.T) {
	svc, _, _ := newTransportFixture(t)
	_, err := svc.AddVehicle(context.Background(), AddVehicleInput{Model: "Tata 407", CapacityKg: 100}, "fleet")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.AddVehicle(context.Background(), AddVehicleInput{RegistrationNumber: "KA-01-2345"}, "fleet")
	require.ErrorIs(t, err, shared.ErrValidation)
}
