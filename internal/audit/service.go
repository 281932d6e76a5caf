package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	ListByEntity(ctx context.Context, entity, entityID string, limit int) ([]Entry, error)
}

const (
	defaultLimit = 50
	maxLimit     = 200
)

// Service serves read-only trail queries.
type Service struct {
	repo RepositoryPort
}

// NewService constructs audit service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Recent returns the latest entries across all entities.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.repo.ListRecent(ctx, shared.ClampLimit(limit, defaultLimit, maxLimit))
}

// Trail returns the latest entries of one entity record, newest first.
func (s *Service) Trail(ctx context.Context, entity, entityID string, limit int) ([]Entry, error) {
	if strings.TrimSpace(entity) == "" || strings.TrimSpace(entityID) == "" {
		return nil, fmt.Errorf("audit: entity and entity id required: %w", shared.ErrValidation)
	}
	return s.repo.ListByEntity(ctx, entity, entityID, shared.ClampLimit(limit, defaultLimit, maxLimit))
}
