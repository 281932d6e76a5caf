package store

import (
	"context"
	"fmt"

	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, name string) (StockItem, error)
	List(ctx context.Context) ([]StockItem, error)
	OnHandByNames(ctx context.Context, names []string) (map[string]int, error)
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates store inventory operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Get returns one stock item.
func (s *Service) Get(ctx context.Context, name string) (StockItem, error) {
	if name == "" {
		return StockItem{}, fmt.Errorf("store: material name required: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, name)
}

// List returns all stock items.
func (s *Service) List(ctx context.Context) ([]StockItem, error) {
	return s.repo.List(ctx)
}

// SetOnHand overwrites the on-hand quantity for a material.
func (s *Service) SetOnHand(ctx context.Context, name string, qty int, actor string) (StockItem, error) {
	if name == "" {
		return StockItem{}, fmt.Errorf("store: material name required: %w", shared.ErrValidation)
	}
	if qty < 0 {
		return StockItem{}, fmt.Errorf("store: on-hand quantity must not be negative: %w", shared.ErrValidation)
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SetOnHand(ctx, name, qty)
	})
	if err != nil {
		return StockItem{}, err
	}
	s.recordAudit(ctx, actor, "STOCK_SET", name, map[string]any{"on_hand": qty})
	return s.repo.Get(ctx, name)
}

// Availability returns on-hand quantities for the requested material names.
// Materials the store has never seen report zero.
func (s *Service) Availability(ctx context.Context, names []string) (map[string]int, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("store: at least one material required: %w", shared.ErrValidation)
	}
	onHand, err := s.repo.OnHandByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if _, ok := onHand[name]; !ok {
			onHand[name] = 0
		}
	}
	return onHand, nil
}

// Credit additively increments on-hand quantities. The caller guards
// idempotence; a credit applied here always adds.
func (s *Service) Credit(ctx context.Context, credits map[string]int, actor string) error {
	if len(credits) == 0 {
		return fmt.Errorf("store: nothing to credit: %w", shared.ErrValidation)
	}
	for name, qty := range credits {
		if name == "" || qty <= 0 {
			return fmt.Errorf("store: credit requires a named material and positive quantity: %w", shared.ErrValidation)
		}
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for name, qty := range credits {
			if err := tx.AddOnHand(ctx, name, qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "STOCK_CREDIT", "bulk", map[string]any{"materials": len(credits)})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "store", EntityID: entityID, Meta: meta})
}
