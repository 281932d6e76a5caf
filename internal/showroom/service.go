package showroom

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, p Product) error
	Get(ctx context.Context, id uuid.UUID) (Product, error)
	List(ctx context.Context) ([]Product, error)
	SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) error
	Reserve(ctx context.Context, id uuid.UUID, quantity int) error
	Release(ctx context.Context, id uuid.UUID, quantity int) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages showroom catalog entries.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Publish records a sellable product when assembly completes. Price starts
// at zero; the Showroom department prices it afterwards.
func (s *Service) Publish(ctx context.Context, productionOrderID uuid.UUID, name, category string, quantity int) error {
	now := time.Now()
	p := Product{
		ID:                uuid.New(),
		ProductionOrderID: productionOrderID,
		Name:              name,
		Category:          category,
		UnitPrice:         decimal.Zero,
		AvailableQty:      quantity,
		PublishedAt:       now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{Actor: "assembly", Action: "SHOWROOM_PUBLISH", Entity: "showroom", EntityID: p.ID.String(), Meta: map[string]any{"name": name}})
	}
	return nil
}

// Get returns a catalog entry.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	return s.repo.Get(ctx, id)
}

// List returns the catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Reserve takes quantity off the shelf for a sales order and returns the
// unit price it was sold at. Unpriced products cannot be sold.
func (s *Service) Reserve(ctx context.Context, id uuid.UUID, quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Decimal{}, fmt.Errorf("showroom: reserve quantity must be positive: %w", shared.ErrValidation)
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !p.UnitPrice.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("showroom: product %s has no price yet: %w", p.Name, shared.ErrValidation)
	}
	if err := s.repo.Reserve(ctx, id, quantity); err != nil {
		return decimal.Decimal{}, err
	}
	return p.UnitPrice, nil
}

// Release puts reserved quantity back, used when a sales order edit trims
// its quantity.
func (s *Service) Release(ctx context.Context, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("showroom: release quantity must be positive: %w", shared.ErrValidation)
	}
	return s.repo.Release(ctx, id, quantity)
}

// SetPrice prices a catalog entry.
func (s *Service) SetPrice(ctx context.Context, id uuid.UUID, price decimal.Decimal, actor string) (Product, error) {
	if price.IsNegative() {
		return Product{}, fmt.Errorf("showroom: price must not be negative: %w", shared.ErrValidation)
	}
	if err := s.repo.SetPrice(ctx, id, price); err != nil {
		return Product{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: "SHOWROOM_PRICE", Entity: "showroom", EntityID: id.String(), Meta: map[string]any{"price": price.String()}})
	}
	return s.repo.Get(ctx, id)
}
