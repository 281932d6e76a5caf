package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/shared"
)

type memoryAuditRepo struct {
	entries []Entry
}

func (m *memoryAuditRepo) ListRecent(_ context.Context, limit int) ([]Entry, error) {
	if limit > len(m.entries) {
		limit = len(m.entries)
	}
	return m.entries[:limit], nil
}

func (m *memoryAuditRepo) ListByEntity(_ context.Context, entity, entityID string, limit int) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.Entity == entity && e.EntityID == entityID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestTrailRequiresEntityAndID(t *testing.T) {
	svc := NewService(&memoryAuditRepo{})
	_, err := svc.Trail(context.Background(), "", "abc", 10)
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Trail(context.Background(), "sales", "  ", 10)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestTrailFiltersByEntity(t *testing.T) {
	repo := &memoryAuditRepo{entries: []Entry{
		{Entity: "sales", EntityID: "a", Action: "SALES_CREATE"},
		{Entity: "sales", EntityID: "b", Action: "SALES_EDIT"},
		{Entity: "purchase", EntityID: "a", Action: "PURCHASE_ACCEPT"},
	}}
	svc := NewService(repo)

	entries, err := svc.Trail(context.Background(), "sales", "a", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "SALES_CREATE", entries[0].Action)
}

func TestLimitClamping(t *testing.T) {
	require.Equal(t, defaultLimit, shared.ClampLimit(0, defaultLimit, maxLimit))
	require.Equal(t, defaultLimit, shared.ClampLimit(-5, defaultLimit, maxLimit))
	require.Equal(t, maxLimit, shared.ClampLimit(1000, defaultLimit, maxLimit))
	require.Equal(t, 25, shared.ClampLimit(25, defaultLimit, maxLimit))
}
