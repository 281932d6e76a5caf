package assembly

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id uuid.UUID) (Order, error)
	List(ctx context.Context) ([]Order, error)
	CASStart(ctx context.Context, id uuid.UUID, expected lifecycle.Status) error
	CASProgress(ctx context.Context, id uuid.UUID, expectedProgress, newProgress int) error
	CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error
	CASComplete(ctx context.Context, id uuid.UUID, expected lifecycle.Status) error
}

// ShowroomPort publishes the sellable product record on completion.
type ShowroomPort interface {
	Publish(ctx context.Context, productionOrderID uuid.UUID, name, category string, quantity int) error
}

// ProductionPort closes the loop on the production order.
type ProductionPort interface {
	MarkCompleted(ctx context.Context, id uuid.UUID) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates assembly progress and rework.
type Service struct {
	repo     RepositoryPort
	showroom ShowroomPort
	prod     ProductionPort
	audit    AuditPort
	machine  *lifecycle.Machine
}

// NewService constructs assembly service.
func NewService(repo RepositoryPort, showroom ShowroomPort, prod ProductionPort, audit AuditPort) *Service {
	return &Service{repo: repo, showroom: showroom, prod: prod, audit: audit, machine: Machine()}
}

// OpenForProduction creates the pending assembly order for a production
// order whose materials have been verified in store.
func (s *Service) OpenForProduction(ctx context.Context, productionOrderID uuid.UUID, productName, category string, quantity int) error {
	now := time.Now()
	order := Order{
		ID:                uuid.New(),
		Number:            fmt.Sprintf("ASM-%d", now.UnixNano()),
		ProductionOrderID: productionOrderID,
		ProductName:       productName,
		Category:          category,
		Quantity:          quantity,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return err
	}
	s.recordAudit(ctx, "store", "ASSEMBLY_OPEN", order.ID, map[string]any{"number": order.Number})
	return nil
}

// Get returns one assembly order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns all assembly orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Start begins (or restarts, after rework) assembly, resetting progress.
func (s *Service) Start(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if _, err := s.machine.Next(order.Status, TriggerStart); err != nil {
		return Order{}, err
	}
	if err := s.repo.CASStart(ctx, id, order.Status); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "ASSEMBLY_START", id, nil)
	return s.repo.Get(ctx, id)
}

// AdvanceInput carries a progress increment: a fixed delta of 25 or 50, or
// Remaining to jump straight to 100.
type AdvanceInput struct {
	Delta     int
	Remaining bool
}

// Advance moves progress forward while assembly is running. Progress is
// clamped at 100 and never decreases.
func (s *Service) Advance(ctx context.Context, id uuid.UUID, input AdvanceInput, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if _, err := s.machine.Next(order.Status, TriggerAdvance); err != nil {
		return Order{}, err
	}
	delta := input.Delta
	if input.Remaining {
		delta = 100 - order.Progress
	} else if delta != 25 && delta != 50 {
		return Order{}, fmt.Errorf("assembly: advance delta must be 25, 50 or remaining: %w", shared.ErrValidation)
	}
	next := order.Progress + delta
	if next > 100 {
		next = 100
	}
	if err := s.repo.CASProgress(ctx, id, order.Progress, next); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "ASSEMBLY_ADVANCE", id, map[string]any{"progress": next})
	return s.repo.Get(ctx, id)
}

// Pause suspends a running assembly without touching progress.
func (s *Service) Pause(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	return s.simpleTransition(ctx, id, TriggerPause, "ASSEMBLY_PAUSE", actor)
}

// Resume continues a paused assembly.
func (s *Service) Resume(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	return s.simpleTransition(ctx, id, TriggerResume, "ASSEMBLY_RESUME", actor)
}

// Complete finishes assembly. Only legal at progress 100; stamps the quality
// flags and completedAt, publishes the sellable product to the showroom and
// closes the production order. Rework completion takes this same path.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if _, err := s.machine.Next(order.Status, TriggerComplete); err != nil {
		return Order{}, err
	}
	if order.Progress != 100 {
		return Order{}, fmt.Errorf("assembly: complete requires progress 100, have %d: %w", order.Progress, shared.ErrValidation)
	}
	if err := s.repo.CASComplete(ctx, id, order.Status); err != nil {
		return Order{}, err
	}
	if s.showroom != nil {
		if err := s.showroom.Publish(ctx, order.ProductionOrderID, order.ProductName, order.Category, order.Quantity); err != nil {
			return Order{}, err
		}
	}
	if s.prod != nil {
		if err := s.prod.MarkCompleted(ctx, order.ProductionOrderID); err != nil {
			return Order{}, err
		}
	}
	s.recordAudit(ctx, actor, "ASSEMBLY_COMPLETE", id, nil)
	return s.repo.Get(ctx, id)
}

// Rework pulls a completed order back when a downstream quality check
// fails; the order re-enters the flow via Start.
func (s *Service) Rework(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	return s.simpleTransition(ctx, id, TriggerRework, "ASSEMBLY_REWORK", actor)
}

func (s *Service) simpleTransition(ctx context.Context, id uuid.UUID, trigger lifecycle.Trigger, action, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next, err := s.machine.Next(order.Status, trigger)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.CASStatus(ctx, id, order.Status, next); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, action, id, nil)
	order.Status = next
	return order, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "assembly", EntityID: id.String(), Meta: meta})
}
