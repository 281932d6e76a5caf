package purchase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/production"
	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id uuid.UUID) (Order, error)
	List(ctx context.Context) ([]Order, error)
	CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error
	ApplyStockCheck(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status, lines []StockCheckLine) error
	Rewrite(ctx context.Context, id uuid.UUID, expected lifecycle.Status, quantity int, materials []production.Material) error
}

// StorePort exposes the store inventory the workflow allocates against.
type StorePort interface {
	Availability(ctx context.Context, names []string) (map[string]int, error)
	Credit(ctx context.Context, credits map[string]int, actor string) error
}

// ProductionPort moves the linked production order forward after verification.
type ProductionPort interface {
	BeginProduction(ctx context.Context, id uuid.UUID) error
}

// IdempotencyPort guards verify-purchase against double credits under retry.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ApprovalPort records finance decisions.
type ApprovalPort interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the purchase order workflow.
type Service struct {
	repo        RepositoryPort
	store       StorePort
	prod        ProductionPort
	approvals   ApprovalPort
	audit       AuditPort
	idempotency IdempotencyPort
	machine     *lifecycle.Machine
}

// NewService constructs purchase service.
func NewService(repo RepositoryPort, store StorePort, prod ProductionPort, approvals ApprovalPort, audit AuditPort, idem IdempotencyPort) *Service {
	return &Service{repo: repo, store: store, prod: prod, approvals: approvals, audit: audit, idempotency: idem, machine: Machine()}
}

// OpenFromProduction creates the purchase order linked to a new production
// order, in pending_request.
func (s *Service) OpenFromProduction(ctx context.Context, input production.OpenPurchaseInput) error {
	if len(input.Materials) == 0 {
		return fmt.Errorf("purchase: at least one material required: %w", shared.ErrValidation)
	}
	now := time.Now()
	order := Order{
		ID:                uuid.New(),
		Number:            generateNumber("PUR"),
		ProductionOrderID: input.ProductionOrderID,
		ProductName:       input.ProductName,
		Quantity:          input.Quantity,
		Materials:         input.Materials,
		Status:            StatusPendingRequest,
		RequestedBy:       input.RequestedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return err
	}
	s.recordAudit(ctx, input.RequestedBy, "PURCHASE_OPEN", order.ID, map[string]any{"number": order.Number})
	return nil
}

// Get returns one purchase order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.repo.Get(ctx, id)
}

// List returns all purchase orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Accept moves a pending request into the store check queue.
func (s *Service) Accept(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.transition(ctx, id, TriggerAccept)
	if err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "PURCHASE_ACCEPT", id, nil)
	return order, nil
}

// Reject declines a pending request.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.transition(ctx, id, TriggerReject)
	if err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "PURCHASE_REJECT", id, nil)
	return order, nil
}

// CheckStock consults store on-hand quantities and routes the order to
// store_allocated, partially_allocated or insufficient_stock. Zero or
// negative on-hand never counts toward allocation.
func (s *Service) CheckStock(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	// Fail fast before touching the store when the status has no
	// stock-check edge at all.
	if !s.machine.Can(order.Status, TriggerStockSufficient) {
		return Order{}, fmt.Errorf("purchase: check_stock on %s: %w", order.Status, shared.ErrInvalidTransition)
	}
	names := make([]string, 0, len(order.Materials))
	for _, m := range order.Materials {
		names = append(names, m.Name)
	}
	onHand, err := s.store.Availability(ctx, names)
	if err != nil {
		return Order{}, err
	}
	lines := make([]StockCheckLine, 0, len(order.Materials))
	allocatable, short := 0, 0
	for _, m := range order.Materials {
		available := onHand[m.Name]
		lines = append(lines, StockCheckLine{Name: m.Name, Requested: m.Quantity, OnHand: available})
		switch {
		case available > 0 && available >= m.Quantity:
			allocatable++
		case available > 0:
			short++
		}
	}
	trigger := TriggerStockInsufficient
	switch {
	case allocatable == len(order.Materials):
		trigger = TriggerStockSufficient
	case allocatable > 0 || short > 0:
		trigger = TriggerStockPartial
	}
	next, err := s.machine.Next(order.Status, trigger)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.ApplyStockCheck(ctx, id, order.Status, next, lines); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "PURCHASE_STOCK_CHECK", id, map[string]any{"outcome": string(next)})
	return s.repo.Get(ctx, id)
}

// EditInput rewrites an order's requested quantity and materials.
type EditInput struct {
	Quantity  int
	Materials []production.Material
}

// Edit rewrites materials and quantity. Only orders sitting in an
// allocation-shortfall status may be edited; cost is derived, so rewriting
// materials recomputes it implicitly.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, input EditInput, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if _, err := s.machine.Next(order.Status, TriggerEdit); err != nil {
		return Order{}, err
	}
	if input.Quantity <= 0 {
		return Order{}, fmt.Errorf("purchase: quantity must be positive: %w", shared.ErrValidation)
	}
	if len(input.Materials) == 0 {
		return Order{}, fmt.Errorf("purchase: at least one material required: %w", shared.ErrValidation)
	}
	for i, m := range input.Materials {
		if m.Name == "" || m.Quantity < 1 || m.UnitCost.IsNegative() {
			return Order{}, fmt.Errorf("purchase: material %d invalid: %w", i+1, shared.ErrValidation)
		}
	}
	if err := s.repo.Rewrite(ctx, id, order.Status, input.Quantity, input.Materials); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "PURCHASE_EDIT", id, map[string]any{"materials": len(input.Materials)})
	return s.repo.Get(ctx, id)
}

// RequestFinanceApproval escalates an allocation shortfall to Finance.
func (s *Service) RequestFinanceApproval(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.transition(ctx, id, TriggerRequestFinance)
	if err != nil {
		return Order{}, err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{
			Module: "purchase", RefID: id, Actor: actor,
			Action: shared.ApprovalSubmit, Note: fmt.Sprintf("purchase %s sent for finance approval", order.Number),
		})
	}
	s.recordAudit(ctx, actor, "PURCHASE_FINANCE_REQUEST", id, nil)
	return order, nil
}

// FinanceDecide applies Finance's approve/reject decision.
func (s *Service) FinanceDecide(ctx context.Context, id uuid.UUID, approve bool, note, actor string) (Order, error) {
	trigger := TriggerFinanceReject
	action := shared.ApprovalReject
	if approve {
		trigger = TriggerFinanceApprove
		action = shared.ApprovalApprove
	}
	order, err := s.transition(ctx, id, trigger)
	if err != nil {
		return Order{}, err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{Module: "purchase", RefID: id, Actor: actor, Action: action, Note: note})
	}
	s.recordAudit(ctx, actor, "PURCHASE_FINANCE_DECIDE", id, map[string]any{"approved": approve})
	return order, nil
}

// VerifyPurchase additively credits the store's inventory with the order's
// materials and marks the order completed. The credit must apply exactly
// once: a repeat call observes verified_in_store or completed and returns
// without touching stock, and the compare-and-set status write closes the
// race between two concurrent verifiers. verified_in_store is the transient
// marker between the credit claim and the side effects landing; completed is
// terminal.
func (s *Service) VerifyPurchase(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.Status == StatusVerifiedInStore || order.Status == StatusCompleted {
		return order, nil
	}
	next, err := s.machine.Next(order.Status, TriggerVerify)
	if err != nil {
		return Order{}, err
	}
	key := fmt.Sprintf("purchase:verify:%s", id)
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "purchase"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return order, nil
			}
			return Order{}, err
		}
		inserted = true
	}
	if err := s.repo.CASStatus(ctx, id, order.Status, next); err != nil {
		if inserted {
			_ = s.idempotency.Delete(ctx, key)
		}
		// A concurrent verifier may have won the race; a verified order
		// is a success for this caller too.
		if errors.Is(err, shared.ErrConflict) {
			if current, getErr := s.repo.Get(ctx, id); getErr == nil &&
				(current.Status == StatusVerifiedInStore || current.Status == StatusCompleted) {
				return current, nil
			}
		}
		return Order{}, err
	}
	credits := make(map[string]int, len(order.Materials))
	for _, m := range order.Materials {
		credits[m.Name] += m.Quantity
	}
	if err := s.store.Credit(ctx, credits, actor); err != nil {
		return Order{}, err
	}
	if s.prod != nil {
		if err := s.prod.BeginProduction(ctx, order.ProductionOrderID); err != nil {
			return Order{}, err
		}
	}
	final, err := s.machine.Next(next, TriggerComplete)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.CASStatus(ctx, id, next, final); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "PURCHASE_VERIFY", id, map[string]any{"materials": len(credits)})
	return s.repo.Get(ctx, id)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, trigger lifecycle.Trigger) (Order, error) {
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
	order.Status = next
	return order, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "purchase", EntityID: id.String(), Meta: meta})
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
