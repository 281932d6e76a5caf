// Package purchase drives a purchase order from request through material
// allocation, optional finance approval, and in-store verification.
package purchase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
	"github.com/craftline-erp/craftline/internal/production"
)

// Purchase order lifecycle statuses.
const (
	StatusPendingRequest         lifecycle.Status = "pending_request"
	StatusPendingStoreCheck      lifecycle.Status = "pending_store_check"
	StatusStoreAllocated         lifecycle.Status = "store_allocated"
	StatusPartiallyAllocated     lifecycle.Status = "partially_allocated"
	StatusInsufficientStock      lifecycle.Status = "insufficient_stock"
	StatusPendingFinanceApproval lifecycle.Status = "pending_finance_approval"
	StatusFinanceApproved        lifecycle.Status = "finance_approved"
	StatusVerifiedInStore        lifecycle.Status = "verified_in_store"
	StatusRejected               lifecycle.Status = "rejected"
	StatusCompleted              lifecycle.Status = "completed"
)

// Triggers for purchase order transitions. Stock-check outcomes are three
// distinct triggers so the edge table stays a pure (status, trigger) lookup;
// the service picks the trigger after consulting the store.
const (
	TriggerAccept            lifecycle.Trigger = "accept"
	TriggerReject            lifecycle.Trigger = "reject"
	TriggerStockSufficient   lifecycle.Trigger = "stock_sufficient"
	TriggerStockPartial      lifecycle.Trigger = "stock_partial"
	TriggerStockInsufficient lifecycle.Trigger = "stock_insufficient"
	TriggerEdit              lifecycle.Trigger = "edit_order"
	TriggerRequestFinance    lifecycle.Trigger = "request_finance_approval"
	TriggerFinanceApprove    lifecycle.Trigger = "finance_approve"
	TriggerFinanceReject     lifecycle.Trigger = "finance_reject"
	TriggerVerify            lifecycle.Trigger = "verify_purchase"
	TriggerComplete          lifecycle.Trigger = "complete"
)

// Machine declares the purchase order edge table. Edit edges loop back to
// the same status; only the two allocation-shortfall statuses carry them.
func Machine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: StatusPendingRequest, Trigger: TriggerAccept, To: StatusPendingStoreCheck},
		lifecycle.Edge{From: StatusPendingRequest, Trigger: TriggerReject, To: StatusRejected},
		lifecycle.Edge{From: StatusPendingStoreCheck, Trigger: TriggerStockSufficient, To: StatusStoreAllocated},
		lifecycle.Edge{From: StatusPendingStoreCheck, Trigger: TriggerStockPartial, To: StatusPartiallyAllocated},
		lifecycle.Edge{From: StatusPendingStoreCheck, Trigger: TriggerStockInsufficient, To: StatusInsufficientStock},
		lifecycle.Edge{From: StatusInsufficientStock, Trigger: TriggerEdit, To: StatusInsufficientStock},
		lifecycle.Edge{From: StatusPartiallyAllocated, Trigger: TriggerEdit, To: StatusPartiallyAllocated},
		lifecycle.Edge{From: StatusInsufficientStock, Trigger: TriggerRequestFinance, To: StatusPendingFinanceApproval},
		lifecycle.Edge{From: StatusPartiallyAllocated, Trigger: TriggerRequestFinance, To: StatusPendingFinanceApproval},
		lifecycle.Edge{From: StatusPendingFinanceApproval, Trigger: TriggerFinanceApprove, To: StatusFinanceApproved},
		lifecycle.Edge{From: StatusPendingFinanceApproval, Trigger: TriggerFinanceReject, To: StatusRejected},
		lifecycle.Edge{From: StatusStoreAllocated, Trigger: TriggerVerify, To: StatusVerifiedInStore},
		lifecycle.Edge{From: StatusFinanceApproved, Trigger: TriggerVerify, To: StatusVerifiedInStore},
		lifecycle.Edge{From: StatusVerifiedInStore, Trigger: TriggerComplete, To: StatusCompleted},
	)
}

// StockCheckLine records one material's availability at the last stock check.
type StockCheckLine struct {
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	OnHand    int    `json:"onHand"`
}

// Order is a purchase order linked to a production order.
type Order struct {
	ID                uuid.UUID             `json:"id"`
	Number            string                `json:"number"`
	ProductionOrderID uuid.UUID             `json:"productionOrderId"`
	ProductName       string                `json:"productName"`
	Quantity          int                   `json:"quantity"`
	Materials         []production.Material `json:"materials"`
	Status            lifecycle.Status      `json:"status"`
	LastStockCheck    []StockCheckLine      `json:"lastStockCheck,omitempty"`
	RequestedBy       string                `json:"requestedBy"`
	CreatedAt         time.Time             `json:"createdAt"`
	UpdatedAt         time.Time             `json:"updatedAt"`
}

// Cost is the sum of quantity times unit cost over the order's materials.
func (o Order) Cost() decimal.Decimal {
	return production.MaterialCost(o.Materials)
}
