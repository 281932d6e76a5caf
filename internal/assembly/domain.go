// Package assembly drives manufacture progress and rework for a production
// order. Progress only moves forward while assembly is running, and a
// completed order publishes a sellable product to the showroom.
package assembly

import (
	"time"

	"github.com/google/uuid"

	"github.com/craftline-erp/craftline/internal/lifecycle"
)

// Assembly order lifecycle statuses.
const (
	StatusPending    lifecycle.Status = "pending"
	StatusInProgress lifecycle.Status = "in_progress"
	StatusPaused     lifecycle.Status = "paused"
	StatusCompleted  lifecycle.Status = "completed"
	StatusRework     lifecycle.Status = "rework"
)

// Triggers for assembly order transitions. Advance is a self-edge: it never
// changes status, only progress.
const (
	TriggerStart    lifecycle.Trigger = "start"
	TriggerAdvance  lifecycle.Trigger = "advance"
	TriggerPause    lifecycle.Trigger = "pause"
	TriggerResume   lifecycle.Trigger = "resume"
	TriggerComplete lifecycle.Trigger = "complete"
	TriggerRework   lifecycle.Trigger = "rework"
)

// Machine declares the assembly order edge table. Rework is a side entry
// taken when a downstream quality check fails; it re-enters via start like a
// fresh pending order.
func Machine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: StatusPending, Trigger: TriggerStart, To: StatusInProgress},
		lifecycle.Edge{From: StatusRework, Trigger: TriggerStart, To: StatusInProgress},
		lifecycle.Edge{From: StatusInProgress, Trigger: TriggerAdvance, To: StatusInProgress},
		lifecycle.Edge{From: StatusInProgress, Trigger: TriggerPause, To: StatusPaused},
		lifecycle.Edge{From: StatusPaused, Trigger: TriggerResume, To: StatusInProgress},
		lifecycle.Edge{From: StatusInProgress, Trigger: TriggerComplete, To: StatusCompleted},
		lifecycle.Edge{From: StatusCompleted, Trigger: TriggerRework, To: StatusRework},
	)
}

// Order is an assembly order for one production order.
type Order struct {
	ID                uuid.UUID        `json:"id"`
	Number            string           `json:"number"`
	ProductionOrderID uuid.UUID        `json:"productionOrderId"`
	ProductName       string           `json:"productName"`
	Category          string           `json:"category"`
	Quantity          int              `json:"quantity"`
	Status            lifecycle.Status `json:"status"`
	Progress          int              `json:"progress"`
	QualityCheck      bool             `json:"qualityCheck"`
	TestingPassed     bool             `json:"testingPassed"`
	StartedAt         *time.Time       `json:"startedAt,omitempty"`
	CompletedAt       *time.Time       `json:"completedAt,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}
