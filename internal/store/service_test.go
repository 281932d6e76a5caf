package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryStoreRepo struct {
	onHand map[string]int
}

func newMemoryStoreRepo() *memoryStoreRepo {
	return &memoryStoreRepo{onHand: make(map[string]int)}
}

func (m *memoryStoreRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m)
}

func (m *memoryStoreRepo) AddOnHand(_ context.Context, name string, qty int) error {
	m.onHand[name] += qty
	return nil
}

func (m *memoryStoreRepo) SetOnHand(_ context.Context, name string, qty int) error {
	m.onHand[name] = qty
	return nil
}

func (m *memoryStoreRepo) Get(_ context.Context, name string) (StockItem, error) {
	qty, ok := m.onHand[name]
	if !ok {
		return StockItem{}, fmt.Errorf("stock item %s: %w", name, shared.ErrNotFound)
	}
	return StockItem{MaterialName: name, OnHand: qty, UpdatedAt: time.Now()}, nil
}

func (m *memoryStoreRepo) List(_ context.Context) ([]StockItem, error) {
	out := make([]StockItem, 0, len(m.onHand))
	for name, qty := range m.onHand {
		out = append(out, StockItem{MaterialName: name, OnHand: qty})
	}
	return out, nil
}

func (m *memoryStoreRepo) OnHandByNames(_ context.Context, names []string) (map[string]int, error) {
	out := make(map[string]int)
	for _, name := range names {
		if qty, ok := m.onHand[name]; ok {
			out[name] = qty
		}
	}
	return out, nil
}

func TestAvailabilityFillsUnknownMaterialsWithZero(t *testing.T) {
	repo := newMemoryStoreRepo()
	repo.onHand["Steel"] = 5
	svc := NewService(repo, nil)

	onHand, err := svc.Availability(context.Background(), []string{"Steel", "Bolts"})
	require.NoError(t, err)
	require.Equal(t, map[string]int{"Steel": 5, "Bolts": 0}, onHand)

	_, err = svc.Availability(context.Background(), nil)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreditIsAdditive(t *testing.T) {
	repo := newMemoryStoreRepo()
	repo.onHand["Steel"] = 5
	svc := NewService(repo, nil)

	require.NoError(t, svc.Credit(context.Background(), map[string]int{"Steel": 10, "Bolts": 100}, "store"))
	require.Equal(t, 15, repo.onHand["Steel"])
	require.Equal(t, 100, repo.onHand["Bolts"])

	require.ErrorIs(t, svc.Credit(context.Background(), nil, "store"), shared.ErrValidation)
	require.ErrorIs(t, svc.Credit(context.Background(), map[string]int{"Steel": 0}, "store"), shared.ErrValidation)
	require.ErrorIs(t, svc.Credit(context.Background(), map[string]int{"": 5}, "store"), shared.ErrValidation)
}

func TestSetOnHandOverwrites(t *testing.T) {
	repo := newMemoryStoreRepo()
	repo.onHand["Steel"] = 5
	svc := NewService(repo, nil)

	item, err := svc.SetOnHand(context.Background(), "Steel", 42, "store")
	require.NoError(t, err)
	require.Equal(t, 42, item.OnHand)

	_, err = svc.SetOnHand(context.Background(), "Steel", -1, "store")
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.SetOnHand(context.Background(), "", 1, "store")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAllocatability(t *testing.T) {
	require.True(t, Availability{Requested: 5, OnHand: 5}.Allocatable())
	require.True(t, Availability{Requested: 5, OnHand: 9}.Allocatable())
	require.False(t, Availability{Requested: 5, OnHand: 4}.Allocatable())
	require.False(t, Availability{Requested: 5, OnHand: 0}.Allocatable())

	require.True(t, Availability{Requested: 5, OnHand: 4}.PartiallyAllocatable())
	require.False(t, Availability{Requested: 5, OnHand: 0}.PartiallyAllocatable())
	require.False(t, Availability{Requested: 5, OnHand: 5}.PartiallyAllocatable())
}
