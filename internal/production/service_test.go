package production

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryProductionRepo struct {
	orders map[uuid.UUID]Order
}

func newMemoryProductionRepo() *memoryProductionRepo {
	return &memoryProductionRepo{orders: make(map[uuid.UUID]Order)}
}

func (m *memoryProductionRepo) Create(_ context.Context, order Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memoryProductionRepo) Get(_ context.Context, id uuid.UUID) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("production order: %w", shared.ErrNotFound)
	}
	return o, nil
}

func (m *memoryProductionRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memoryProductionRepo) Search(_ context.Context, term string) ([]Order, error) {
	term = strings.ToLower(term)
	var out []Order
	for _, o := range m.orders {
		if strings.Contains(strings.ToLower(o.Number), term) || strings.Contains(strings.ToLower(o.ProductName), term) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memoryProductionRepo) CASStatus(_ context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("production order: %w", shared.ErrNotFound)
	}
	if o.Status != expected {
		return fmt.Errorf("production order moved: %w", shared.ErrConflict)
	}
	o.Status = next
	m.orders[id] = o
	return nil
}

type fakePurchaseOpener struct {
	opened []OpenPurchaseInput
}

func (f *fakePurchaseOpener) OpenFromProduction(_ context.Context, input OpenPurchaseInput) error {
	f.opened = append(f.opened, input)
	return nil
}

type fakeAssemblyOpener struct {
	opened []uuid.UUID
}

func (f *fakeAssemblyOpener) OpenForProduction(_ context.Context, productionOrderID uuid.UUID, _, _ string, _ int) error {
	f.opened = append(f.opened, productionOrderID)
	return nil
}

func newProductionFixture(t *testing.T) (*Service, *memoryProductionRepo, *fakePurchaseOpener, *fakeAssemblyOpener) {
	t.Helper()
	repo := newMemoryProductionRepo()
	purchase := &fakePurchaseOpener{}
	assembly := &fakeAssemblyOpener{}
	svc := NewService(repo, nil)
	svc.BindWorkflow(purchase, assembly)
	return svc, repo, purchase, assembly
}

func validInput() CreateInput {
	return CreateInput{
		ProductName: "Workbench",
		Category:    "furniture",
		Quantity:    5,
		Materials: []Material{
			{Name: "Steel", Quantity: 10, UnitCost: decimal.NewFromInt(50)},
			{Name: "Bolts", Quantity: 100, UnitCost: decimal.NewFromInt(2)},
		},
		CreatedBy: "production",
	}
}

func TestCreateOrderOpensPurchase(t *testing.T) {
	svc, _, purchase, _ := newProductionFixture(t)

	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.True(t, strings.HasPrefix(order.Number, "PRD-"))

	require.Len(t, purchase.opened, 1)
	require.Equal(t, order.ID, purchase.opened[0].ProductionOrderID)
	require.Equal(t, "Workbench", purchase.opened[0].ProductName)
	require.Len(t, purchase.opened[0].Materials, 2)
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, purchase, _ := newProductionFixture(t)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing product name", func(in *CreateInput) { in.ProductName = "" }},
		{"zero quantity", func(in *CreateInput) { in.Quantity = 0 }},
		{"no materials", func(in *CreateInput) { in.Materials = nil }},
		{"unnamed material", func(in *CreateInput) { in.Materials[0].Name = "" }},
		{"zero material quantity", func(in *CreateInput) { in.Materials[0].Quantity = 0 }},
		{"negative unit cost", func(in *CreateInput) { in.Materials[0].UnitCost = decimal.NewFromInt(-1) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.CreateOrder(context.Background(), input)
			require.ErrorIs(t, err, shared.ErrValidation)
		})
	}
	require.Empty(t, purchase.opened)
}

func TestBeginProductionOpensAssembly(t *testing.T) {
	svc, repo, _, assembly := newProductionFixture(t)
	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.BeginProduction(context.Background(), order.ID))
	got, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusInProduction, got.Status)
	require.Equal(t, []uuid.UUID{order.ID}, assembly.opened)

	// Beginning twice is not a legal move.
	err = svc.BeginProduction(context.Background(), order.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestMarkCompleted(t *testing.T) {
	svc, repo, _, _ := newProductionFixture(t)
	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	// Completion before production starts is not a legal move.
	err = svc.MarkCompleted(context.Background(), order.ID)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	require.NoError(t, svc.BeginProduction(context.Background(), order.ID))
	require.NoError(t, svc.MarkCompleted(context.Background(), order.ID))
	got, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
}

func TestSearchMatchesNumberAndName(t *testing.T) {
	svc, _, _, _ := newProductionFixture(t)
	order, err := svc.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)

	byName, err := svc.Search(context.Background(), "workb")
	require.NoError(t, err)
	require.Len(t, byName, 1)

	byNumber, err := svc.Search(context.Background(), order.Number)
	require.NoError(t, err)
	require.Len(t, byNumber, 1)

	none, err := svc.Search(context.Background(), "no-such-order")
	require.NoError(t, err)
	require.Empty(t, none)
}
