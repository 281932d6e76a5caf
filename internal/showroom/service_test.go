package showroom

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryShowroomRepo struct {
	products map[uuid.UUID]Product
}

func newMemoryShowroomRepo() *memoryShowroomRepo {
	return &memoryShowroomRepo{products: make(map[uuid.UUID]Product)}
}

func (m *memoryShowroomRepo) Create(_ context.Context, p Product) error {
	m.products[p.ID] = p
	return nil
}

func (m *memoryShowroomRepo) Get(_ context.Context, id uuid.UUID) (Product, error) {
	p, ok := m.products[id]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	return p, nil
}

func (m *memoryShowroomRepo) List(_ context.Context) ([]Product, error) {
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *memoryShowroomRepo) SetPrice(_ context.Context, id uuid.UUID, price decimal.Decimal) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	p.UnitPrice = price
	m.products[id] = p
	return nil
}

func (m *memoryShowroomRepo) Reserve(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	if p.AvailableQty < quantity {
		return fmt.Errorf("product %s has %d on the floor: %w", id, p.AvailableQty, shared.ErrConflict)
	}
	p.AvailableQty -= quantity
	m.products[id] = p
	return nil
}

func (m *memoryShowroomRepo) Release(_ context.Context, id uuid.UUID, quantity int) error {
	p, ok := m.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	p.AvailableQty += quantity
	m.products[id] = p
	return nil
}

func publishOne(t *testing.T, svc *Service, repo *memoryShowroomRepo) Product {
	t.Helper()
	require.NoError(t, svc.Publish(context.Background(), uuid.New(), "Workbench", "furniture", 4))
	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	return products[0]
}

func TestPublishStartsUnpriced(t *testing.T) {
	repo := newMemoryShowroomRepo()
	svc := NewService(repo, nil)

	p := publishOne(t, svc, repo)
	require.True(t, p.UnitPrice.IsZero())
	require.Equal(t, 4, p.AvailableQty)
	require.False(t, p.PublishedAt.IsZero())
}

func TestReserveReturnsUnitPrice(t *testing.T) {
	repo := newMemoryShowroomRepo()
	svc := NewService(repo, nil)
	p := publishOne(t, svc, repo)

	// Unpriced products cannot be sold.
	_, err := svc.Reserve(context.Background(), p.ID, 2)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.SetPrice(context.Background(), p.ID, decimal.NewFromInt(1000), "showroom")
	require.NoError(t, err)

	price, err := svc.Reserve(context.Background(), p.ID, 2)
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromInt(1000)))

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableQty)

	_, err = svc.Reserve(context.Background(), p.ID, 0)
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Reserve(context.Background(), p.ID, 3)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestReleaseRestocks(t *testing.T) {
	repo := newMemoryShowroomRepo()
	svc := NewService(repo, nil)
	p := publishOne(t, svc, repo)

	_, err := svc.SetPrice(context.Background(), p.ID, decimal.NewFromInt(1000), "showroom")
	require.NoError(t, err)
	_, err = svc.Reserve(context.Background(), p.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Release(context.Background(), p.ID, 1))
	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.AvailableQty)

	require.ErrorIs(t, svc.Release(context.Background(), p.ID, 0), shared.ErrValidation)
}

func TestSetPriceRejectsNegative(t *testing.T) {
	repo := newMemoryShowroomRepo()
	svc := NewService(repo, nil)
	p := publishOne(t, svc, repo)

	_, err := svc.SetPrice(context.Background(), p.ID, decimal.NewFromInt(-1), "showroom")
	require.ErrorIs(t, err, shared.ErrValidation)

	got, err := svc.SetPrice(context.Background(), p.ID, decimal.NewFromInt(1250), "showroom")
	require.NoError(t, err)
	require.True(t, got.UnitPrice.Equal(decimal.NewFromInt(1250)))
}
