package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Insert(ctx context.Context, rec Record) error
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	GetByOrder(ctx context.Context, salesOrderID uuid.UUID) (Record, error)
	List(ctx context.Context) ([]Record, error)
	CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages dispatch records.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	machine *lifecycle.Machine
}

// NewService constructs dispatch service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, machine: Machine()}
}

// EnsureRecord creates the dispatch record for a sales order exactly once.
// A concurrent or repeated call lands on the unique constraint and reports
// created=false with no error; callers treat both outcomes as success.
func (s *Service) EnsureRecord(ctx context.Context, salesOrderID uuid.UUID, orderNumber, deliveryType, actor string) (bool, error) {
	now := time.Now()
	rec := Record{
		ID:           uuid.New(),
		SalesOrderID: salesOrderID,
		OrderNumber:  orderNumber,
		DeliveryType: deliveryType,
		Status:       StatusReady,
		HandedOverBy: actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	s.recordAudit(ctx, actor, "DISPATCH_CREATE", rec.ID, map[string]any{"order": orderNumber})
	return true, nil
}

// Get returns one dispatch record.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	return s.repo.Get(ctx, id)
}

// GetByOrder returns the record of a sales order.
func (s *Service) GetByOrder(ctx context.Context, salesOrderID uuid.UUID) (Record, error) {
	return s.repo.GetByOrder(ctx, salesOrderID)
}

// List returns all dispatch records.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// StartDelivery sends a ready record out for delivery.
func (s *Service) StartDelivery(ctx context.Context, id uuid.UUID, actor string) (Record, error) {
	return s.transition(ctx, id, TriggerStartDelivery, actor, "DISPATCH_START")
}

// ConfirmDelivered closes the record and stamps the delivery time.
func (s *Service) ConfirmDelivered(ctx context.Context, id uuid.UUID, actor string) (Record, error) {
	return s.transition(ctx, id, TriggerConfirmDelivered, actor, "DISPATCH_DELIVERED")
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, trigger lifecycle.Trigger, actor, action string) (Record, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	next, err := s.machine.Next(rec.Status, trigger)
	if err != nil {
		return Record{}, err
	}
	if err := s.repo.CASStatus(ctx, id, rec.Status, next); err != nil {
		return Record{}, err
	}
	s.recordAudit(ctx, actor, action, id, map[string]any{"status": string(next)})
	return s.repo.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "dispatch", EntityID: id.String(), Meta: meta})
}
