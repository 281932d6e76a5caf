package transport

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	CreateApproval(ctx context.Context, a Approval) error
	GetApproval(ctx context.Context, id uuid.UUID) (Approval, error)
	OpenByOrder(ctx context.Context, orderNumber string) (Approval, error)
	ListApprovals(ctx context.Context) ([]Approval, error)
	CASStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status, decidedBy string) error
	ApplyRejection(ctx context.Context, id uuid.UUID, expected lifecycle.Status, demand decimal.Decimal, notes, decidedBy string) error
	ApplyCounter(ctx context.Context, id uuid.UUID, amount decimal.Decimal, notes string) error
	CreateVehicle(ctx context.Context, v Vehicle) error
	GetVehicle(ctx context.Context, id uuid.UUID) (Vehicle, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	UpdateVehicle(ctx context.Context, id uuid.UUID, model string, capacityKg int, driverName string) error
	DeleteVehicle(ctx context.Context, id uuid.UUID) error
	CASVehicle(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status, orderNumber string) error
}

// SalesPort is how a resolved negotiation flows back into the sales order.
type SalesPort interface {
	MarkTransportApproved(ctx context.Context, orderNumber string) error
	ApplyDemandAmount(ctx context.Context, orderNumber string, demand decimal.Decimal) error
	ReopenForEdit(ctx context.Context, orderNumber string) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service runs the transport cost negotiation and the fleet ledger.
type Service struct {
	repo     RepositoryPort
	sales    SalesPort
	audit    AuditPort
	machine  *lifecycle.Machine
	vehicles *lifecycle.Machine
}

// NewService constructs transport service. The sales port is set after
// construction because the two services reference each other.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, machine: Machine(), vehicles: VehicleMachine()}
}

// BindSales wires the sales callback port.
func (s *Service) BindSales(sales SalesPort) {
	s.sales = sales
}

// OpenApproval creates a pending approval for a sales order. An order may
// have at most one open approval; a second open attempt conflicts.
func (s *Service) OpenApproval(ctx context.Context, orderNumber, deliveryType string, transportCost decimal.Decimal) error {
	if strings.TrimSpace(orderNumber) == "" {
		return fmt.Errorf("transport: order number required: %w", shared.ErrValidation)
	}
	if _, err := s.repo.OpenByOrder(ctx, orderNumber); err == nil {
		return fmt.Errorf("transport: order %s already has an open approval: %w", orderNumber, shared.ErrConflict)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	now := time.Now()
	a := Approval{
		ID:            uuid.New(),
		OrderNumber:   orderNumber,
		DeliveryType:  deliveryType,
		TransportCost: transportCost,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.CreateApproval(ctx, a); err != nil {
		return err
	}
	s.recordAudit(ctx, "sales", "TRANSPORT_OPEN", a.ID, map[string]any{"order": orderNumber, "cost": transportCost.String()})
	return nil
}

// CancelPending withdraws the open approval of an order, used when Sales
// rewrites or re-routes the order.
func (s *Service) CancelPending(ctx context.Context, orderNumber string) error {
	a, err := s.repo.OpenByOrder(ctx, orderNumber)
	if err != nil {
		return err
	}
	next, err := s.machine.Next(a.Status, TriggerCancel)
	if err != nil {
		return err
	}
	if err := s.repo.CASStatus(ctx, a.ID, a.Status, next, "sales"); err != nil {
		return err
	}
	s.recordAudit(ctx, "sales", "TRANSPORT_CANCEL", a.ID, map[string]any{"order": orderNumber})
	return nil
}

// Get returns one approval.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Approval, error) {
	return s.repo.GetApproval(ctx, id)
}

// List returns all approvals.
func (s *Service) List(ctx context.Context) ([]Approval, error) {
	return s.repo.ListApprovals(ctx)
}

// Approve accepts the cost on the table. From pending the original quote
// stands; from renegotiating the customer's counter becomes the cost.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor string) (Approval, error) {
	a, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return Approval{}, err
	}
	next, err := s.machine.Next(a.Status, TriggerApprove)
	if err != nil {
		return Approval{}, err
	}
	fromCounter := a.Status == StatusRenegotiating
	if err := s.repo.CASStatus(ctx, id, a.Status, next, actor); err != nil {
		return Approval{}, err
	}
	if s.sales != nil {
		if fromCounter {
			err = s.sales.ApplyDemandAmount(ctx, a.OrderNumber, a.NegotiatedAmount)
		} else {
			err = s.sales.MarkTransportApproved(ctx, a.OrderNumber)
		}
		if err != nil {
			return Approval{}, err
		}
	}
	s.recordAudit(ctx, actor, "TRANSPORT_APPROVE", id, map[string]any{"order": a.OrderNumber})
	return s.repo.GetApproval(ctx, id)
}

// Reject refuses the cost on the table. A rejection must carry a positive
// demand amount and notes for the customer; without both it never lands.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, demand decimal.Decimal, notes, actor string) (Approval, error) {
	a, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return Approval{}, err
	}
	if _, err := s.machine.Next(a.Status, TriggerReject); err != nil {
		return Approval{}, err
	}
	if !demand.IsPositive() {
		return Approval{}, fmt.Errorf("transport: rejection needs a positive demand amount: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(notes) == "" {
		return Approval{}, fmt.Errorf("transport: rejection needs notes for the customer: %w", shared.ErrValidation)
	}
	if err := s.repo.ApplyRejection(ctx, id, a.Status, demand, notes, actor); err != nil {
		return Approval{}, err
	}
	s.recordAudit(ctx, actor, "TRANSPORT_REJECT", id, map[string]any{"order": a.OrderNumber, "demand": demand.String()})
	return s.repo.GetApproval(ctx, id)
}

// AcceptDemand confirms the rejected quote's demand: the demanded amount
// overwrites the sales order's transport cost and the negotiation closes.
func (s *Service) AcceptDemand(ctx context.Context, id uuid.UUID, actor string) (Approval, error) {
	a, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return Approval{}, err
	}
	next, err := s.machine.Next(a.Status, TriggerAcceptDemand)
	if err != nil {
		return Approval{}, err
	}
	if err := s.repo.CASStatus(ctx, id, a.Status, next, actor); err != nil {
		return Approval{}, err
	}
	if s.sales != nil {
		if err := s.sales.ApplyDemandAmount(ctx, a.OrderNumber, a.DemandAmount); err != nil {
			return Approval{}, err
		}
	}
	s.recordAudit(ctx, actor, "TRANSPORT_ACCEPT_DEMAND", id, map[string]any{"order": a.OrderNumber, "demand": a.DemandAmount.String()})
	return s.repo.GetApproval(ctx, id)
}

// Renegotiate counters a rejected demand. The counter must carry a positive
// amount and the customer's notes; the ball returns to Transport's court.
func (s *Service) Renegotiate(ctx context.Context, id uuid.UUID, amount decimal.Decimal, customerNotes, actor string) (Approval, error) {
	a, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return Approval{}, err
	}
	if _, err := s.machine.Next(a.Status, TriggerRenegotiate); err != nil {
		return Approval{}, err
	}
	if !amount.IsPositive() {
		return Approval{}, fmt.Errorf("transport: counter needs a positive amount: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(customerNotes) == "" {
		return Approval{}, fmt.Errorf("transport: counter needs customer notes: %w", shared.ErrValidation)
	}
	if err := s.repo.ApplyCounter(ctx, id, amount, customerNotes); err != nil {
		return Approval{}, err
	}
	s.recordAudit(ctx, actor, "TRANSPORT_RENEGOTIATE", id, map[string]any{"order": a.OrderNumber, "amount": amount.String()})
	return s.repo.GetApproval(ctx, id)
}

// ModifyOrder abandons the negotiation: the approval is cancelled and the
// sales order reopens for editing.
func (s *Service) ModifyOrder(ctx context.Context, id uuid.UUID, actor string) (Approval, error) {
	a, err := s.repo.GetApproval(ctx, id)
	if err != nil {
		return Approval{}, err
	}
	next, err := s.machine.Next(a.Status, TriggerModifyOrder)
	if err != nil {
		return Approval{}, err
	}
	if err := s.repo.CASStatus(ctx, id, a.Status, next, actor); err != nil {
		return Approval{}, err
	}
	if s.sales != nil {
		if err := s.sales.ReopenForEdit(ctx, a.OrderNumber); err != nil {
			return Approval{}, err
		}
	}
	s.recordAudit(ctx, actor, "TRANSPORT_MODIFY_ORDER", id, map[string]any{"order": a.OrderNumber})
	return s.repo.GetApproval(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "transport", EntityID: id.String(), Meta: meta})
}
