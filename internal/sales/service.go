package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/payments"
	"github.com/craftline-erp/craftline/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Create(ctx context.Context, order Order) error
	Get(ctx context.Context, id uuid.UUID) (Order, error)
	GetByNumber(ctx context.Context, number string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	Search(ctx context.Context, term string) ([]Order, error)
	Rewrite(ctx context.Context, order Order) error
	ApplyPayment(ctx context.Context, orderID uuid.UUID, expected, next lifecycle.Status, payment payments.Payment, amountPaid, balance decimal.Decimal) error
	ListPayments(ctx context.Context, orderID uuid.UUID) ([]payments.Payment, error)
	CASPaymentStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error
	CASOrderStatus(ctx context.Context, id uuid.UUID, expected, next lifecycle.Status) error
	CASOrderStatusByNumber(ctx context.Context, number string, expected, next lifecycle.Status) error
	SetCoupon(ctx context.Context, id uuid.UUID, code, reason string) error
	SetApprovalDecision(ctx context.Context, id uuid.UUID, next ApprovalStatus, financeBypass bool) error
	SetDriverDetails(ctx context.Context, id uuid.UUID, name, phone, vehicleNumber string) error
	ApplyDemand(ctx context.Context, number string, transportCost, finalAmount, balance decimal.Decimal, next lifecycle.Status) error
	CASAfterSales(ctx context.Context, id uuid.UUID, expected, next AfterSalesStatus) error
	SetGSTResult(ctx context.Context, id uuid.UUID, verified bool, businessName string) error
}

// ShowroomPort reserves catalog stock for new orders and takes returns on
// quantity-trimming edits.
type ShowroomPort interface {
	Reserve(ctx context.Context, productID uuid.UUID, quantity int) (decimal.Decimal, error)
	Release(ctx context.Context, productID uuid.UUID, quantity int) error
}

// TransportPort opens and withdraws transport cost approvals.
type TransportPort interface {
	OpenApproval(ctx context.Context, orderNumber, deliveryType string, transportCost decimal.Decimal) error
	CancelPending(ctx context.Context, orderNumber string) error
}

// TaxPort verifies a GST number against the external registry.
type TaxPort interface {
	Verify(ctx context.Context, gstin string) (verified bool, businessName string, err error)
}

// DispatchPort creates the downstream dispatch record exactly once.
type DispatchPort interface {
	EnsureRecord(ctx context.Context, orderID uuid.UUID, orderNumber, deliveryType, actor string) (created bool, err error)
}

// TaskPort hands slow work to the background queue.
type TaskPort interface {
	EnqueueFinanceReview(ctx context.Context, orderNumber string) error
	EnqueueDispatchNotify(ctx context.Context, orderNumber string) error
}

// ApprovalPort records coupon and finance decisions.
type ApprovalPort interface {
	Record(ctx context.Context, log shared.ApprovalLog) error
}

// AuditPort reused from shared.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the sales order workflow.
type Service struct {
	repo      RepositoryPort
	showroom  ShowroomPort
	transport TransportPort
	tax       TaxPort
	dispatch  DispatchPort
	tasks     TaskPort
	approvals ApprovalPort
	audit     AuditPort
	machine   *lifecycle.Machine
}

// NewService constructs sales service.
func NewService(repo RepositoryPort, showroom ShowroomPort, transport TransportPort, tax TaxPort, dispatch DispatchPort, tasks TaskPort, approvals ApprovalPort, audit AuditPort) *Service {
	return &Service{
		repo: repo, showroom: showroom, transport: transport, tax: tax,
		dispatch: dispatch, tasks: tasks, approvals: approvals, audit: audit,
		machine: PaymentMachine(),
	}
}

// CreateInput carries the fields of a new sales order.
type CreateInput struct {
	CustomerName      string          `json:"customerName"`
	CustomerContact   string          `json:"customerContact"`
	CustomerEmail     string          `json:"customerEmail"`
	CustomerAddress   string          `json:"customerAddress"`
	GSTNumber         string          `json:"gstNumber"`
	ShowroomProductID uuid.UUID       `json:"showroomProductId"`
	Quantity          int             `json:"quantity"`
	DiscountAmount    decimal.Decimal `json:"discountAmount"`
	TransportCost     decimal.Decimal `json:"transportCost"`
	DeliveryType      DeliveryType    `json:"deliveryType"`
	CreatedBy         string          `json:"createdBy"`
}

func (in CreateInput) validate() error {
	if strings.TrimSpace(in.CustomerName) == "" || strings.TrimSpace(in.CustomerContact) == "" {
		return fmt.Errorf("sales: customer name and contact are required: %w", shared.ErrValidation)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("sales: quantity must be positive: %w", shared.ErrValidation)
	}
	if in.DiscountAmount.IsNegative() || in.TransportCost.IsNegative() {
		return fmt.Errorf("sales: amounts must not be negative: %w", shared.ErrValidation)
	}
	if !in.DeliveryType.Valid() {
		return fmt.Errorf("sales: unknown delivery type %q: %w", in.DeliveryType, shared.ErrValidation)
	}
	return nil
}

// Create opens a sales order against a priced showroom product. Company
// delivery and part load open a transport approval and hold the order in
// pending_transport_approval; self and free delivery carry no transport cost.
func (s *Service) Create(ctx context.Context, input CreateInput) (Order, error) {
	if err := input.validate(); err != nil {
		return Order{}, err
	}
	unitPrice, err := s.showroom.Reserve(ctx, input.ShowroomProductID, input.Quantity)
	if err != nil {
		return Order{}, err
	}
	transportCost := input.TransportCost
	if input.DeliveryType == DeliverySelf || input.DeliveryType == DeliveryFree {
		transportCost = decimal.Zero
	}
	status := StatusPending
	if input.DeliveryType.RequiresTransportApproval() {
		status = StatusPendingTransportApproval
	}
	now := time.Now()
	order := Order{
		ID:                uuid.New(),
		OrderNumber:       generateNumber("SO"),
		CustomerName:      input.CustomerName,
		CustomerContact:   input.CustomerContact,
		CustomerEmail:     input.CustomerEmail,
		CustomerAddress:   input.CustomerAddress,
		GSTNumber:         strings.TrimSpace(input.GSTNumber),
		ShowroomProductID: input.ShowroomProductID,
		UnitPrice:         unitPrice,
		Quantity:          input.Quantity,
		DiscountAmount:    input.DiscountAmount,
		TransportCost:     transportCost,
		DeliveryType:      input.DeliveryType,
		OrderStatus:       status,
		PaymentStatus:     PaymentPending,
		ApprovalStatus:    ApprovalNone,
		AfterSalesStatus:  AfterSalesNone,
		CreatedBy:         input.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.Recalculate()
	if err := s.repo.Create(ctx, order); err != nil {
		return Order{}, err
	}
	if order.OrderStatus == StatusPendingTransportApproval {
		if err := s.transport.OpenApproval(ctx, order.OrderNumber, string(order.DeliveryType), order.TransportCost); err != nil {
			return Order{}, err
		}
	}
	s.verifyGST(ctx, order)
	s.recordAudit(ctx, input.CreatedBy, "SALES_CREATE", order.ID, map[string]any{"number": order.OrderNumber, "delivery": string(order.DeliveryType)})
	return s.repo.Get(ctx, order.ID)
}

// verifyGST asks the external registry and stores the outcome. Registry
// outages leave the flag unresolved; they never block order creation.
func (s *Service) verifyGST(ctx context.Context, order Order) {
	if s.tax == nil || order.GSTNumber == "" {
		return
	}
	verified, businessName, err := s.tax.Verify(ctx, order.GSTNumber)
	if err != nil {
		s.recordAudit(ctx, "system", "SALES_GST_LOOKUP_FAILED", order.ID, map[string]any{"error": err.Error()})
		return
	}
	_ = s.repo.SetGSTResult(ctx, order.ID, verified, businessName)
}

// VerifyTaxID re-runs the registry lookup on demand. Unlike the creation
// path it surfaces registry failures to the caller.
func (s *Service) VerifyTaxID(ctx context.Context, id uuid.UUID) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.GSTNumber == "" {
		return Order{}, fmt.Errorf("sales: order %s has no GST number: %w", order.OrderNumber, shared.ErrValidation)
	}
	if s.tax == nil {
		return Order{}, fmt.Errorf("sales: tax registry not configured: %w", shared.ErrCollaborator)
	}
	verified, businessName, err := s.tax.Verify(ctx, order.GSTNumber)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.SetGSTResult(ctx, id, verified, businessName); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns one sales order.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Order, error) {
	return s.repo.Get(ctx, id)
}

// GetByNumber returns one sales order by number.
func (s *Service) GetByNumber(ctx context.Context, number string) (Order, error) {
	return s.repo.GetByNumber(ctx, number)
}

// List returns all sales orders.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// Search matches orders by number or customer name fragment.
func (s *Service) Search(ctx context.Context, term string) ([]Order, error) {
	return s.repo.Search(ctx, term)
}

// ListPayments returns an order's recorded payments.
func (s *Service) ListPayments(ctx context.Context, orderID uuid.UUID) ([]payments.Payment, error) {
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, orderID)
}

// EditInput rewrites the customer and pricing fields of an order.
type EditInput struct {
	CustomerName    string          `json:"customerName"`
	CustomerContact string          `json:"customerContact"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerAddress string          `json:"customerAddress"`
	Quantity        int             `json:"quantity"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	TransportCost   decimal.Decimal `json:"transportCost"`
	DeliveryType    DeliveryType    `json:"deliveryType"`
}

// Edit rewrites an order while payment is still pending. A delivery type
// change tears down or opens the transport approval to match, and a quantity
// change settles up with the showroom reservation.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, input EditInput, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.PaymentStatus != PaymentPending {
		return Order{}, fmt.Errorf("sales: order %s is no longer editable once payment started: %w", order.OrderNumber, shared.ErrInvalidTransition)
	}
	if strings.TrimSpace(input.CustomerName) == "" || strings.TrimSpace(input.CustomerContact) == "" {
		return Order{}, fmt.Errorf("sales: customer name and contact are required: %w", shared.ErrValidation)
	}
	if input.Quantity <= 0 {
		return Order{}, fmt.Errorf("sales: quantity must be positive: %w", shared.ErrValidation)
	}
	if input.DiscountAmount.IsNegative() || input.TransportCost.IsNegative() {
		return Order{}, fmt.Errorf("sales: amounts must not be negative: %w", shared.ErrValidation)
	}
	if !input.DeliveryType.Valid() {
		return Order{}, fmt.Errorf("sales: unknown delivery type %q: %w", input.DeliveryType, shared.ErrValidation)
	}

	switch delta := input.Quantity - order.Quantity; {
	case delta > 0:
		if _, err := s.showroom.Reserve(ctx, order.ShowroomProductID, delta); err != nil {
			return Order{}, err
		}
	case delta < 0:
		if err := s.showroom.Release(ctx, order.ShowroomProductID, -delta); err != nil {
			return Order{}, err
		}
	}

	wasGated := order.DeliveryType.RequiresTransportApproval()
	order.CustomerName = input.CustomerName
	order.CustomerContact = input.CustomerContact
	order.CustomerEmail = input.CustomerEmail
	order.CustomerAddress = input.CustomerAddress
	order.Quantity = input.Quantity
	order.DiscountAmount = input.DiscountAmount
	order.TransportCost = input.TransportCost
	order.DeliveryType = input.DeliveryType
	if input.DeliveryType == DeliverySelf || input.DeliveryType == DeliveryFree {
		order.TransportCost = decimal.Zero
	}

	// Any edit re-opens the transport question for gated delivery types:
	// an earlier approval no longer covers the rewritten order.
	if wasGated {
		if err := s.transport.CancelPending(ctx, order.OrderNumber); err != nil && !errors.Is(err, shared.ErrNotFound) {
			return Order{}, err
		}
	}
	if order.DeliveryType.RequiresTransportApproval() {
		order.OrderStatus = StatusPendingTransportApproval
	} else {
		order.OrderStatus = StatusPending
	}
	order.Recalculate()
	if err := s.repo.Rewrite(ctx, order); err != nil {
		return Order{}, err
	}
	if order.OrderStatus == StatusPendingTransportApproval {
		if err := s.transport.OpenApproval(ctx, order.OrderNumber, string(order.DeliveryType), order.TransportCost); err != nil {
			return Order{}, err
		}
	}
	s.recordAudit(ctx, actor, "SALES_EDIT", id, map[string]any{"delivery": string(order.DeliveryType)})
	return s.repo.Get(ctx, id)
}

// RecordPayment reconciles a payment attempt against the outstanding balance
// and parks the order with Finance. Validation failures reject the attempt
// before anything is written.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, attempt payments.Attempt) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	next, err := s.machine.Next(order.PaymentStatus, TriggerRecordPayment)
	if err != nil {
		return Order{}, err
	}
	attempt.TotalAmount = order.BalanceAmount
	if err := payments.Reconcile(attempt); err != nil {
		return Order{}, err
	}
	if attempt.ReceivedAmount.GreaterThan(order.BalanceAmount) {
		return Order{}, fmt.Errorf("sales: received %s exceeds outstanding balance %s: %w",
			attempt.ReceivedAmount, order.BalanceAmount, shared.ErrValidation)
	}
	paid := order.AmountPaid.Add(attempt.ReceivedAmount)
	balance := order.FinalAmount.Sub(paid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	payment := payments.Payment{
		ID:             uuid.New(),
		OrderID:        order.ID,
		TotalAmount:    attempt.TotalAmount,
		ReceivedAmount: attempt.ReceivedAmount,
		Method:         attempt.Method,
		Denominations:  attempt.Denominations,
		SplitCash:      attempt.SplitCash,
		SplitOnline:    attempt.SplitOnline,
		UTRReference:   attempt.UTRReference,
		HandledBy:      attempt.HandledBy,
		ReceivedAt:     time.Now(),
	}
	if err := s.repo.ApplyPayment(ctx, id, order.PaymentStatus, next, payment, paid, balance); err != nil {
		return Order{}, err
	}
	if s.tasks != nil {
		_ = s.tasks.EnqueueFinanceReview(ctx, order.OrderNumber)
	}
	s.recordAudit(ctx, attempt.HandledBy, "SALES_PAYMENT", id, map[string]any{"received": attempt.ReceivedAmount.String(), "method": string(attempt.Method)})
	return s.repo.Get(ctx, id)
}

// FinanceDecide resolves a payment awaiting finance review. Approval settles
// the order when the balance is zero and marks it partial otherwise;
// rejection sends it back for a corrected attempt.
func (s *Service) FinanceDecide(ctx context.Context, id uuid.UUID, approve bool, note, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	trigger := TriggerFinanceReject
	action := shared.ApprovalReject
	if approve {
		action = shared.ApprovalApprove
		if order.BalanceAmount.IsZero() {
			trigger = TriggerFinanceConfirmSettled
		} else {
			trigger = TriggerFinanceConfirmPartial
		}
	}
	next, err := s.machine.Next(order.PaymentStatus, trigger)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.CASPaymentStatus(ctx, id, order.PaymentStatus, next); err != nil {
		return Order{}, err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{Module: "sales", RefID: id, Actor: actor, Action: action, Note: note})
	}
	s.recordAudit(ctx, actor, "SALES_FINANCE_DECIDE", id, map[string]any{"approved": approve, "status": string(next)})
	return s.repo.Get(ctx, id)
}

// ApplyCoupon raises the administrative approval gate to waive a remaining
// balance. A coupon never bypasses finance on its own; only the
// administrator's approval sets the bypass flag.
func (s *Service) ApplyCoupon(ctx context.Context, id uuid.UUID, code, reason, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(reason) == "" {
		return Order{}, fmt.Errorf("sales: coupon code and reason are required: %w", shared.ErrValidation)
	}
	if order.PaymentStatus != PaymentPartial {
		return Order{}, fmt.Errorf("sales: coupon applies only to a partially paid order: %w", shared.ErrInvalidTransition)
	}
	if order.ApprovalStatus == ApprovalPending {
		return Order{}, fmt.Errorf("sales: order %s already has a coupon awaiting approval: %w", order.OrderNumber, shared.ErrConflict)
	}
	if err := s.repo.SetCoupon(ctx, id, code, reason); err != nil {
		return Order{}, err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{
			Module: "sales", RefID: id, Actor: actor,
			Action: shared.ApprovalSubmit, Note: fmt.Sprintf("coupon %s: %s", code, reason),
		})
	}
	s.recordAudit(ctx, actor, "SALES_COUPON_APPLY", id, map[string]any{"code": code})
	return s.repo.Get(ctx, id)
}

// DecideCoupon applies the administrator's verdict on a pending coupon.
func (s *Service) DecideCoupon(ctx context.Context, id uuid.UUID, approve bool, note, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.ApprovalStatus != ApprovalPending {
		return Order{}, fmt.Errorf("sales: order %s has no coupon awaiting approval: %w", order.OrderNumber, shared.ErrInvalidTransition)
	}
	next, action := ApprovalNone, shared.ApprovalReject
	if approve {
		next, action = ApprovalApproved, shared.ApprovalApprove
	}
	if err := s.repo.SetApprovalDecision(ctx, id, next, approve); err != nil {
		return Order{}, err
	}
	if s.approvals != nil {
		_ = s.approvals.Record(ctx, shared.ApprovalLog{Module: "sales", RefID: id, Actor: actor, Action: action, Note: note})
	}
	s.recordAudit(ctx, actor, "SALES_COUPON_DECIDE", id, map[string]any{"approved": approve})
	return s.repo.Get(ctx, id)
}

// SetDriverDetails records the customer's own driver ahead of a self
// delivery handoff.
func (s *Service) SetDriverDetails(ctx context.Context, id uuid.UUID, name, phone, vehicleNumber, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.DeliveryType != DeliverySelf {
		return Order{}, fmt.Errorf("sales: driver details apply only to self delivery: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(phone) == "" || strings.TrimSpace(vehicleNumber) == "" {
		return Order{}, fmt.Errorf("sales: driver name, phone and vehicle number are required: %w", shared.ErrValidation)
	}
	if err := s.repo.SetDriverDetails(ctx, id, name, phone, vehicleNumber); err != nil {
		return Order{}, err
	}
	s.recordAudit(ctx, actor, "SALES_DRIVER_DETAILS", id, nil)
	return s.repo.Get(ctx, id)
}

// DispatchHandoff sends a settled order downstream. The handoff is
// idempotent: a repeat call on an order already sent returns it unchanged,
// and the compare-and-set after-sales mark closes the race between two
// concurrent callers so dispatch sees exactly one record.
func (s *Service) DispatchHandoff(ctx context.Context, id uuid.UUID, actor string) (Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if order.AfterSalesStatus == AfterSalesSentToDispatch {
		return order, nil
	}
	if order.PaymentStatus != PaymentCompleted && !order.FinanceBypass {
		return Order{}, fmt.Errorf("sales: order %s is not settled: %w", order.OrderNumber, shared.ErrInvalidTransition)
	}
	if order.ApprovalStatus == ApprovalPending {
		return Order{}, fmt.Errorf("sales: order %s has a coupon awaiting approval: %w", order.OrderNumber, shared.ErrInvalidTransition)
	}
	if order.DeliveryType.RequiresTransportApproval() && order.OrderStatus != StatusTransportApproved {
		return Order{}, fmt.Errorf("sales: order %s awaits transport approval: %w", order.OrderNumber, shared.ErrInvalidTransition)
	}
	if order.DeliveryType == DeliverySelf && (order.DriverName == "" || order.DriverPhone == "" || order.DriverVehicleNumber == "") {
		return Order{}, fmt.Errorf("sales: self delivery needs driver details before handoff: %w", shared.ErrValidation)
	}
	if err := s.repo.CASAfterSales(ctx, id, AfterSalesNone, AfterSalesSentToDispatch); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			if current, getErr := s.repo.Get(ctx, id); getErr == nil && current.AfterSalesStatus == AfterSalesSentToDispatch {
				return current, nil
			}
		}
		return Order{}, err
	}
	if s.dispatch != nil {
		if _, err := s.dispatch.EnsureRecord(ctx, order.ID, order.OrderNumber, string(order.DeliveryType), actor); err != nil {
			return Order{}, err
		}
	}
	if s.tasks != nil {
		_ = s.tasks.EnqueueDispatchNotify(ctx, order.OrderNumber)
	}
	s.recordAudit(ctx, actor, "SALES_DISPATCH_HANDOFF", id, map[string]any{"number": order.OrderNumber})
	return s.repo.Get(ctx, id)
}

// MarkTransportApproved is the callback for a plain transport approval: the
// quoted cost stands, the order leaves the transport gate.
func (s *Service) MarkTransportApproved(ctx context.Context, orderNumber string) error {
	return s.repo.CASOrderStatusByNumber(ctx, orderNumber, StatusPendingTransportApproval, StatusTransportApproved)
}

// ApplyDemandAmount is the callback for an accepted transport demand: the
// demanded amount overwrites the order's transport cost and the derived
// amounts, and the order leaves the transport gate.
func (s *Service) ApplyDemandAmount(ctx context.Context, orderNumber string, demand decimal.Decimal) error {
	order, err := s.repo.GetByNumber(ctx, orderNumber)
	if err != nil {
		return err
	}
	order.TransportCost = demand
	order.Recalculate()
	return s.repo.ApplyDemand(ctx, orderNumber, demand, order.FinalAmount, order.BalanceAmount, StatusTransportApproved)
}

// ReopenForEdit is the callback for a negotiation that ends in modifying the
// order: the approval is withdrawn and the order returns to plain pending so
// Sales can rework it.
func (s *Service) ReopenForEdit(ctx context.Context, orderNumber string) error {
	return s.repo.CASOrderStatusByNumber(ctx, orderNumber, StatusPendingTransportApproval, StatusPending)
}

func (s *Service) recordAudit(ctx context.Context, actor, action string, id uuid.UUID, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "sales", EntityID: id.String(), Meta: meta})
}

func generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
