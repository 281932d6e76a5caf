package tracker

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/production"
	"github.com/craftline-erp/craftline/internal/sales"
	"github.com/craftline-erp/craftline/internal/shared"
)

type fakeProductionSearch struct {
	orders []production.Order
	calls  int
}

func (f *fakeProductionSearch) Search(_ context.Context, _ string) ([]production.Order, error) {
	f.calls++
	return f.orders, nil
}

type fakeSalesSearch struct {
	orders []sales.Order
	calls  int
}

func (f *fakeSalesSearch) Search(_ context.Context, _ string) ([]sales.Order, error) {
	f.calls++
	return f.orders, nil
}

func newTrackerFixture(t *testing.T, ttl time.Duration) (*Service, *fakeProductionSearch, *fakeSalesSearch, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	prod := &fakeProductionSearch{orders: []production.Order{
		{Number: "PRD-1", ProductName: "Workbench", Status: production.StatusInProduction},
	}}
	sal := &fakeSalesSearch{orders: []sales.Order{
		{OrderNumber: "SO-1", CustomerName: "Ravi", OrderStatus: sales.StatusPending, PaymentStatus: sales.PaymentPartial, DeliveryType: sales.DeliveryPartLoad},
	}}
	svc := NewService(slog.Default(), prod, sal, cache, ttl)
	return svc, prod, sal, srv
}

func TestSearchMergesBothPipelines(t *testing.T) {
	svc, _, _, _ := newTrackerFixture(t, 30*time.Second)

	results, err := svc.Search(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "production", results[0].Kind)
	require.Equal(t, "PRD-1", results[0].OrderNumber)
	require.Equal(t, "Workbench", results[0].ProductName)
	require.Equal(t, "Assembly", results[0].CurrentDepartment)
	require.Equal(t, "sales", results[1].Kind)
	require.Equal(t, "Ravi", results[1].CustomerName)
	require.Equal(t, "Sales", results[1].CurrentDepartment)
	require.Equal(t, "partial", results[1].PaymentStatus)
	require.Equal(t, "part load", results[1].DeliveryType)
}

func TestCurrentDepartmentDerivation(t *testing.T) {
	require.Equal(t, "Purchase", productionDepartment(production.Order{Status: production.StatusPending}))
	require.Equal(t, "Assembly", productionDepartment(production.Order{Status: production.StatusInProduction}))
	require.Equal(t, "Showroom", productionDepartment(production.Order{Status: production.StatusCompleted}))

	require.Equal(t, "Transport", salesDepartment(sales.Order{OrderStatus: sales.StatusPendingTransportApproval, PaymentStatus: sales.PaymentPending}))
	require.Equal(t, "Finance", salesDepartment(sales.Order{OrderStatus: sales.StatusPending, PaymentStatus: sales.PaymentPendingFinanceApproval}))
	require.Equal(t, "Sales", salesDepartment(sales.Order{OrderStatus: sales.StatusTransportApproved, PaymentStatus: sales.PaymentPartial}))
	// The dispatch handoff marker wins even while finance paperwork lingers.
	require.Equal(t, "Dispatch", salesDepartment(sales.Order{OrderStatus: sales.StatusTransportApproved, PaymentStatus: sales.PaymentCompleted, AfterSalesStatus: sales.AfterSalesSentToDispatch}))
}

func TestSearchRequiresTerm(t *testing.T) {
	svc, _, _, _ := newTrackerFixture(t, 30*time.Second)
	_, err := svc.Search(context.Background(), "   ")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSearchServesRepeatsFromCache(t *testing.T) {
	svc, prod, sal, srv := newTrackerFixture(t, 30*time.Second)

	_, err := svc.Search(context.Background(), "Ravi")
	require.NoError(t, err)
	require.Equal(t, 1, prod.calls)
	require.Equal(t, 1, sal.calls)

	// Same term, case-folded: served from cache, repositories untouched.
	results, err := svc.Search(context.Background(), "ravi")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1, prod.calls)
	require.Equal(t, 1, sal.calls)

	// Once the entry expires the repositories are consulted again.
	srv.FastForward(31 * time.Second)
	_, err = svc.Search(context.Background(), "ravi")
	require.NoError(t, err)
	require.Equal(t, 2, prod.calls)
	require.Equal(t, 2, sal.calls)
}

func TestSearchSurvivesCacheOutage(t *testing.T) {
	svc, prod, _, srv := newTrackerFixture(t, 30*time.Second)
	srv.Close()

	results, err := svc.Search(context.Background(), "Ravi")
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, 1, prod.calls)
}

func TestSearchWithoutCache(t *testing.T) {
	prod := &fakeProductionSearch{}
	sal := &fakeSalesSearch{}
	svc := NewService(slog.Default(), prod, sal, nil, time.Second)

	results, err := svc.Search(context.Background(), "anything")
	require.NoError(t, err)
	require.Empty(t, results)
	require.Equal(t, 1, prod.calls)
	require.Equal(t, 1, sal.calls)
}
