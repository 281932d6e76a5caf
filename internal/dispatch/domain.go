// Package dispatch owns the last leg: one record per settled sales order,
// created exactly once at handoff and walked through the delivery run.
package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/lifecycle"
)

// Dispatch record statuses.
const (
	StatusReady          lifecycle.Status = "ready"
	StatusOutForDelivery lifecycle.Status = "out_for_delivery"
	StatusDelivered      lifecycle.Status = "delivered"
)

// Dispatch record triggers.
const (
	TriggerStartDelivery    lifecycle.Trigger = "start_delivery"
	TriggerConfirmDelivered lifecycle.Trigger = "confirm_delivered"
)

// Machine declares the dispatch record edge table.
func Machine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: StatusReady, Trigger: TriggerStartDelivery, To: StatusOutForDelivery},
		lifecycle.Edge{From: StatusOutForDelivery, Trigger: TriggerConfirmDelivered, To: StatusDelivered},
	)
}

// Record is the dispatch side of a sales order. The sales order id carries
// a unique constraint, so a retried handoff can never mint a second record.
type Record struct {
	ID           uuid.UUID        `json:"id"`
	SalesOrderID uuid.UUID        `json:"salesOrderId"`
	OrderNumber  string           `json:"orderNumber"`
	DeliveryType string           `json:"deliveryType"`
	Status       lifecycle.Status `json:"status"`
	HandedOverBy string           `json:"handedOverBy"`
	DeliveredAt  *time.Time       `json:"deliveredAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}
