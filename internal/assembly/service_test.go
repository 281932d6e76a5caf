package assembly

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryAssemblyRepo struct {
	orders map[uuid.UUID]Order
}

func newMemoryAssemblyRepo() *memoryAssemblyRepo {
	return &memoryAssemblyRepo{orders: make(map[uuid.UUID]Order)}
}

func (m *memoryAssemblyRepo) Create(_ context.Context, order Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *memoryAssemblyRepo) Get(_ context.Context, id uuid.UUID) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("assembly order: %w", shared.ErrNotFound)
	}
	return o, nil
}

func (m *memoryAssemblyRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memoryAssemblyRepo) CASStart(_ context.Context, id uuid.UUID, expected lifecycle.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("assembly order: %w", shared.ErrNotFound)
	}
	if o.Status != expected {
		return fmt.Errorf("assembly order moved: %w", shared.ErrConflict)
	}
	now := time.Now()
	o.Status = StatusInProgress
	o.Progress = 0
	o.StartedAt = &now
	m.orders[id] = o
	return nil
}

func (m *memoryAssemblyRepo) CASProgress(_ context.Context, id uuid.UUID, expectedProgress, newProgress int) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("assembly order: %w", shared.ErrNotFound)
	}
	if o.Status != StatusInProgress || o.Progress != expectedProgress {
		return fmt.Errorf("assembly order moved: %w", shared.ErrConflict)
	}
	o.Progress = newProgress
	m.orders[id] = o
	return nil
}

func (m *memoryAssemblyRepo) CASStatus(_ context.Context, id uuid.UUID, expected, next lifecycle.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("assembly order: %w", shared.ErrNotFound)
	}
	if o.Status != expected {
		return fmt.Errorf("assembly order moved: %w", shared.ErrConflict)
	}
	o.Status = next
	m.orders[id] = o
	return nil
}

func (m *memoryAssemblyRepo) CASComplete(_ context.Context, id uuid.UUID, expected lifecycle.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return fmt.Errorf("assembly order: %w", shared.ErrNotFound)
	}
	if o.Status != expected || o.Progress != 100 {
		return fmt.Errorf("assembly order moved: %w", shared.ErrConflict)
	}
	now := time.Now()
	o.Status = StatusCompleted
	o.QualityCheck = true
	o.TestingPassed = true
	o.CompletedAt = &now
	m.orders[id] = o
	return nil
}

type fakeShowroomPublisher struct {
	published []string
}

func (f *fakeShowroomPublisher) Publish(_ context.Context, _ uuid.UUID, name, _ string, _ int) error {
	f.published = append(f.published, name)
	return nil
}

type fakeProductionCloser struct {
	completed []uuid.UUID
}

func (f *fakeProductionCloser) MarkCompleted(_ context.Context, id uuid.UUID) error {
	f.completed = append(f.completed, id)
	return nil
}

func newAssemblyFixture(t *testing.T) (*Service, *memoryAssemblyRepo, *fakeShowroomPublisher, *fakeProductionCloser) {
	t.Helper()
	repo := newMemoryAssemblyRepo()
	showroom := &fakeShowroomPublisher{}
	prod := &fakeProductionCloser{}
	return NewService(repo, showroom, prod, nil), repo, showroom, prod
}

func openOrder(t *testing.T, svc *Service, repo *memoryAssemblyRepo) Order {
	t.Helper()
	prodID := uuid.New()
	require.NoError(t, svc.OpenForProduction(context.Background(), prodID, "Workbench", "furniture", 5))
	orders, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	return orders[0]
}

func TestStartResetsProgress(t *testing.T) {
	svc, repo, _, _ := newAssemblyFixture(t)
	order := openOrder(t, svc, repo)

	got, err := svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, got.Status)
	require.Zero(t, got.Progress)
	require.NotNil(t, got.StartedAt)

	_, err = svc.Start(context.Background(), order.ID, "assembly")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestAdvanceOnlyByFixedDeltas(t *testing.T) {
	svc, repo, _, _ := newAssemblyFixture(t)
	order := openOrder(t, svc, repo)

	// Progress before start is not a legal move.
	_, err := svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 25}, "assembly")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	_, err = svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)

	got, err := svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 25}, "assembly")
	require.NoError(t, err)
	require.Equal(t, 25, got.Progress)

	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 30}, "assembly")
	require.ErrorIs(t, err, shared.ErrValidation)

	got, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 50}, "assembly")
	require.NoError(t, err)
	require.Equal(t, 75, got.Progress)

	// Progress clamps at 100.
	got, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 50}, "assembly")
	require.NoError(t, err)
	require.Equal(t, 100, got.Progress)
}

func TestAdvanceRemainingJumpsToHundred(t *testing.T) {
	svc, repo, _, _ := newAssemblyFixture(t)
	order := openOrder(t, svc, repo)
	_, err := svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)

	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 25}, "assembly")
	require.NoError(t, err)

	got, err := svc.Advance(context.Background(), order.ID, AdvanceInput{Remaining: true}, "assembly")
	require.NoError(t, err)
	require.Equal(t, 100, got.Progress)
}

func TestPauseHoldsProgress(t *testing.T) {
	svc, repo, _, _ := newAssemblyFixture(t)
	order := openOrder(t, svc, repo)
	_, err := svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 50}, "assembly")
	require.NoError(t, err)

	got, err := svc.Pause(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	require.Equal(t, StatusPaused, got.Status)

	// No progress while paused.
	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 25}, "assembly")
	require.ErrorIs(t, err, shared.ErrInvalidTransition)

	got, err = svc.Resume(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, got.Status)
	got, err = repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	require.Equal(t, 50, got.Progress)
}

func TestCompleteRequiresFullProgress(t *testing.T) {
	svc, repo, showroom, prod := newAssemblyFixture(t)
	order := openOrder(t, svc, repo)
	_, err := svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Delta: 50}, "assembly")
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), order.ID, "assembly")
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, showroom.published)

	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Remaining: true}, "assembly")
	require.NoError(t, err)

	got, err := svc.Complete(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, got.Status)
	require.True(t, got.QualityCheck)
	require.True(t, got.TestingPassed)
	require.NotNil(t, got.CompletedAt)
	require.Equal(t, []string{"Workbench"}, showroom.published)
	require.Equal(t, []uuid.UUID{order.ProductionOrderID}, prod.completed)
}

func TestReworkReentersViaStart(t *testing.T) {
	svc, repo, showroom, _ := newAssemblyFixture(t)
	order := openOrder(t, svc, repo)
	_, err := svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Remaining: true}, "assembly")
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), order.ID, "assembly")
	require.NoError(t, err)

	got, err := svc.Rework(context.Background(), order.ID, "showroom")
	require.NoError(t, err)
	require.Equal(t, StatusRework, got.Status)

	// Rework restarts from zero and completes through the same gate.
	got, err = svc.Start(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	require.Zero(t, got.Progress)
	_, err = svc.Advance(context.Background(), order.ID, AdvanceInput{Remaining: true}, "assembly")
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), order.ID, "assembly")
	require.NoError(t, err)
	require.Len(t, showroom.published, 2)
}
