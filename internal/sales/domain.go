// Package sales drives a sales order from showroom sale through
// delivery-type branching, payment reconciliation and the dispatch handoff.
package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
)

// DeliveryType is decided once at creation and re-evaluated only through an
// explicit edit while payment is still pending.
type DeliveryType string

const (
	DeliverySelf     DeliveryType = "self delivery"
	DeliveryCompany  DeliveryType = "company delivery"
	DeliveryPartLoad DeliveryType = "part load"
	DeliveryFree     DeliveryType = "free delivery"
)

// Valid reports whether the delivery type is a known value.
func (d DeliveryType) Valid() bool {
	switch d {
	case DeliverySelf, DeliveryCompany, DeliveryPartLoad, DeliveryFree:
		return true
	default:
		return false
	}
}

// RequiresTransportApproval reports whether creation must open a transport
// approval before the order can move toward dispatch.
func (d DeliveryType) RequiresTransportApproval() bool {
	return d == DeliveryPartLoad || d == DeliveryCompany
}

// Sales order statuses.
const (
	StatusPending                  lifecycle.Status = "pending"
	StatusPendingTransportApproval lifecycle.Status = "pending_transport_approval"
	StatusTransportApproved        lifecycle.Status = "transport_approved"
)

// Payment statuses.
const (
	PaymentPending                lifecycle.Status = "pending"
	PaymentPartial                lifecycle.Status = "partial"
	PaymentPendingFinanceApproval lifecycle.Status = "pending_finance_approval"
	PaymentCompleted              lifecycle.Status = "completed"
	PaymentFinanceRejected        lifecycle.Status = "finance_rejected"
)

// Payment status triggers. Finance confirmation lands on completed or
// partial depending on the remaining balance, so confirmation is two edges.
const (
	TriggerRecordPayment         lifecycle.Trigger = "record_payment"
	TriggerFinanceConfirmSettled lifecycle.Trigger = "finance_confirm_settled"
	TriggerFinanceConfirmPartial lifecycle.Trigger = "finance_confirm_partial"
	TriggerFinanceReject         lifecycle.Trigger = "finance_reject"
)

// PaymentMachine declares the payment status edge table. Finance may only
// act on orders sitting in pending_finance_approval.
func PaymentMachine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: PaymentPending, Trigger: TriggerRecordPayment, To: PaymentPendingFinanceApproval},
		lifecycle.Edge{From: PaymentPartial, Trigger: TriggerRecordPayment, To: PaymentPendingFinanceApproval},
		lifecycle.Edge{From: PaymentFinanceRejected, Trigger: TriggerRecordPayment, To: PaymentPendingFinanceApproval},
		lifecycle.Edge{From: PaymentPendingFinanceApproval, Trigger: TriggerFinanceConfirmSettled, To: PaymentCompleted},
		lifecycle.Edge{From: PaymentPendingFinanceApproval, Trigger: TriggerFinanceConfirmPartial, To: PaymentPartial},
		lifecycle.Edge{From: PaymentPendingFinanceApproval, Trigger: TriggerFinanceReject, To: PaymentFinanceRejected},
	)
}

// ApprovalStatus tracks the administrative coupon approval gate.
type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "none"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
)

// AfterSalesStatus tracks the one-way dispatch handoff.
type AfterSalesStatus string

const (
	AfterSalesNone           AfterSalesStatus = "none"
	AfterSalesSentToDispatch AfterSalesStatus = "sent_to_dispatch"
)

// Order is a sales order owned by the Sales department. Transport mutates
// its approval fields, Finance its payment status, Dispatch its after-sales
// status.
type Order struct {
	ID                uuid.UUID `json:"id"`
	OrderNumber       string    `json:"orderNumber"`
	CustomerName      string    `json:"customerName"`
	CustomerContact   string    `json:"customerContact"`
	CustomerEmail     string    `json:"customerEmail"`
	CustomerAddress   string    `json:"customerAddress"`
	GSTNumber         string    `json:"gstNumber,omitempty"`
	GSTVerified       *bool     `json:"gstVerified,omitempty"`
	GSTBusinessName   string    `json:"gstBusinessName,omitempty"`
	ShowroomProductID uuid.UUID `json:"showroomProductId"`

	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	TransportCost  decimal.Decimal `json:"transportCost"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	BalanceAmount  decimal.Decimal `json:"balanceAmount"`

	DeliveryType     DeliveryType     `json:"deliveryType"`
	OrderStatus      lifecycle.Status `json:"orderStatus"`
	PaymentStatus    lifecycle.Status `json:"paymentStatus"`
	ApprovalStatus   ApprovalStatus   `json:"approvalStatus"`
	AfterSalesStatus AfterSalesStatus `json:"afterSalesStatus"`
	FinanceBypass    bool             `json:"financeBypass"`
	CouponCode       string           `json:"couponCode,omitempty"`
	CouponReason     string           `json:"couponReason,omitempty"`

	DriverName          string `json:"driverName,omitempty"`
	DriverPhone         string `json:"driverPhone,omitempty"`
	DriverVehicleNumber string `json:"driverVehicleNumber,omitempty"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Recalculate derives finalAmount and balanceAmount from the order's price
// fields. Balance never goes below zero.
func (o *Order) Recalculate() {
	o.FinalAmount = o.UnitPrice.Mul(decimal.NewFromInt(int64(o.Quantity))).
		Sub(o.DiscountAmount).
		Add(o.TransportCost)
	balance := o.FinalAmount.Sub(o.AmountPaid)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	o.BalanceAmount = balance
}
