package dispatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryDispatchRepo struct {
	records map[uuid.UUID]Record
	byOrder map[uuid.UUID]uuid.UUID
}

func newMemoryDispatchRepo() *memoryDispatchRepo {
	return &memoryDispatchRepo{
		records: make(map[uuid.UUID]Record),
		byOrder: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *memoryDispatchRepo) Insert(_ context.Context, rec Record) error {
	if _, exists := m.byOrder[rec.SalesOrderID]; exists {
		return fmt.Errorf("dispatch record exists: %w", shared.ErrConflict)
	}
	m.records[rec.ID] = rec
	m.byOrder[rec.SalesOrderID] = rec.ID
	return nil
}

func (m *memoryDispatchRepo) Get(_ context.Context, id uuid.UUID) (Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, fmt.Errorf("dispatch record: %w", shared.ErrNotFound)
	}
	return rec, nil
}

func (m *memoryDispatchRepo) GetByOrder(ctx context.Context, salesOrderID uuid.UUID) (Record, error) {
	id, ok := m.byOrder[salesOrderID]
	if !ok {
		return Record{}, fmt.Errorf("dispatch record: %w", shared.ErrNotFound)
	}
	return m.Get(ctx, id)
}

func (m *memoryDispatchRepo) List(_ context.Context) ([]Record, error) {
	out := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *memoryDispatchRepo) CASStatus(_ context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	rec, ok := m.records[id]
	if !ok {
		return fmt.Errorf("dispatch record: %w", shared.ErrNotFound)
	}
	if rec.Status != expected {
		return fmt.Errorf("dispatch record moved: %w", shared.ErrConflict)
	}
	rec.Status = next
	m.records[id] = rec
	return nil
}

func TestEnsureRecordExactlyOnce(t *testing.T) {
	repo := newMemoryDispatchRepo()
	svc := NewService(repo, nil)
	orderID := uuid.New()

	created, err := svc.EnsureRecord(context.Background(), orderID, "SO-1", "company delivery", "sales")
	require.NoError(t, err)
	require.True(t, created)

	// The repeat lands on the unique order constraint and is a success.
	created, err = svc.EnsureRecord(context.Background(), orderID, "SO-1", "company delivery", "sales")
	require.NoError(t, err)
	require.False(t, created)

	records, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec, err := svc.GetByOrder(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, StatusReady, rec.Status)
	require.Equal(t, "sales", rec.HandedOverBy)
}

func TestDeliveryLifecycle(t *testing.T) {
	repo := newMemoryDispatchRepo()
	svc := NewService(repo, nil)
	orderID := uuid.New()

	_, err := svc.EnsureRecord(context.Background(), orderID, "SO-1", "company delivery", "sales")
	require.NoError(t, err)
	rec, err := svc.GetByOrder(context.Background(), orderID)
	require.NoError(t, err)

	// Delivery cannot be confirmed before it starts.
	_, err = svc.ConfirmDelivered(context.Background(), rec.ID, "driver")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	rec, err = svc.StartDelivery(context.Background(), rec.ID, "driver")
	require.NoError(t, err)
	require.Equal(t, StatusOutForDelivery, rec.Status)

	rec, err = svc.ConfirmDelivered(context.Background(), rec.ID, "driver")
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, rec.Status)

	// Delivered is terminal.
	_, err = svc.StartDelivery(context.Background(), rec.ID, "driver")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}
