package production

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
	Search(ctx context.Context, term string) ([]Order, error)
	CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error
}

// OpenPurchaseInput is handed to the purchase workflow when a production
// order is created.
type OpenPurchaseInput struct {
	ProductionOrderID uuid.UUID
	ProductName       string
	Quantity          int
	Materials         []Material
	RequestedBy       string
}

// PurchasePort opens the linked purchase order.
type PurchasePort interface {
	OpenFromProduction(ctx context.Context, input OpenPurchaseInput) error
}

// AssemblyPort opens the assembly order once materials are verified in store.
type AssemblyPort interface {
	OpenForProduction(ctx context.Context, productionOrderID uuid.UUID, productName, category string, quantity int) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates production order flows.
type Service struct {
	repo     RepositoryPort
	purchase PurchasePort
	assembly AssemblyPort
	audit    AuditPort
	machine  *lifecycle.Machine
}

// NewService constructs production service. The purchase and assembly ports
// are bound after construction because those services reference production
// in turn.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, machine: Machine()}
}

// BindWorkflow wires the downstream purchase and assembly ports.
func (s *Service) BindWorkflow(purchase PurchasePort, assembly AssemblyPort) {
	s.purchase = purchase
	s.assembly = assembly
}

// CreateInput describes creation payload.
type CreateInput struct {
	ProductName string
	Category    string
	Quantity    int
	Materials   []Material
	CreatedBy   string
}

// CreateOrder persists the order and opens its purchase request.
func (s *Service) CreateOrder(ctx context.Context, input CreateInput) (Order, error) {
	if input.ProductName == "" {
		return Order{}, fmt.Errorf("production: product name required: %w", shared.ErrValidation)
	}
	if input.Quantity <= 0 {
		return Order{}, fmt.Errorf("production: quantity must be positive: %w", shared.ErrValidation)
	}
	if len(input.Materials) == 0 {
		return Order{}, fmt.Errorf("production: at least one material required: %w", shared.ErrValidation)
	}
	for i, m := range input.Materials {
		if m.Name == "" {
			return Order{}, fmt.Errorf("production: material %d name required: %w", i+1, shared.ErrValidation)
		}
		if m.Quantity < 1 {
			return Order{}, fmt.Errorf("production: material %d quantity must be at least 1: %w", i+1, shared.ErrValidation)
		}
		if m.UnitCost.IsNegative() {
			return Order{}, fmt.Errorf("production: material %d unit cost must not be negative: %w", i+1, shared.ErrValidation)
		}
	}
	now := time.Now()
	order := Order{
		ID:          uuid.New(),
		Number:      generateNumber("PRD"),
		ProductName: input.ProductName,
		Category:    input.Category,
		Quantity:    input.Quantity,
		Materials:   input.Materials,
		Status:      StatusPending,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return Order{}, err
	}
	if s.purchase != nil {
		err := s.purchase.OpenFromProduction(ctx, OpenPurchaseInput{
			ProductionOrderID: order.ID,
			ProductName:       order.ProductName,
			Quantity:          order.Quantity,
			Materials:         order.Materials,
			RequestedBy:       order.CreatedBy,
		})
		if err != nil {
			return Order{}, err
		}
	}
	s.recordAudit(ctx, input.CreatedBy, "PRODUCTION_CREATE", order.ID, map[string]any{"number": order.Number})
	return order, nil
}

// Get returns one production order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns all production orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Search matches orders by number or product name fragment.
func (s *Service) Search(ctx context.Context, term string) ([]Order, error) {
	return s.repo.Search(ctx, term)
}

// BeginProduction flips the order to in_production once its purchase order is
// verified in store, and opens the assembly order.
func (s *Service) BeginProduction(ctx context.Context, id uuid.UUID) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	next, err := s.machine.Next(order.Status, TriggerBeginProduction)
	if err != nil {
		return err
	}
	if err := s.repo.CASStatus(ctx, id, order.Status, next); err != nil {
		return err
	}
	if s.assembly != nil {
		if err := s.assembly.OpenForProduction(ctx, order.ID, order.ProductName, order.Category, order.Quantity); err != nil {
			return err
		}
	}
	s.recordAudit(ctx, "store", "PRODUCTION_BEGIN", id, map[string]any{"number": order.Number})
	return nil
}

// MarkCompleted records assembly completion on the production order.
func (s *Service) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	next, err := s.machine.Next(order.Status, TriggerComplete)
	if err != nil {
		return err
	}
	if err := s.repo.CASStatus(ctx, id, order.Status, next); err != nil {
		return err
	}
	s.recordAudit(ctx, "assembly", "PRODUCTION_COMPLETE", id, map[string]any{"number": order.Number})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "production", EntityID: id.String(), Meta: meta})
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
