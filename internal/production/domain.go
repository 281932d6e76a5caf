// Package production owns production orders: the manufacturing side of a
// good's journey. Creating one opens the linked purchase order that acquires
// its raw materials.
package production

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/lifecycle"
)

// Production order lifecycle statuses.
const (
	StatusPending      lifecycle.Status = "pending"
	StatusInProduction lifecycle.Status = "in_production"
	StatusCompleted    lifecycle.Status = "completed"
)

// Triggers for production order transitions.
const (
	TriggerBeginProduction lifecycle.Trigger = "begin_production"
	TriggerComplete        lifecycle.Trigger = "complete"
)

// Machine declares the production order edge table.
func Machine() *lifecycle.Machine {
	return lifecycle.NewMachine(
		lifecycle.Edge{From: StatusPending, Trigger: TriggerBeginProduction, To: StatusInProduction},
		lifecycle.Edge{From: StatusInProduction, Trigger: TriggerComplete, To: StatusCompleted},
	)
}

// Material is one raw-material requirement. Immutable once the linked
// purchase order is verified in store.
type Material struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"`
}

// Order is a production order owned by the Production department.
type Order struct {
	ID          uuid.UUID        `json:"id"`
	Number      string           `json:"number"`
	ProductName string           `json:"productName"`
	Category    string           `json:"category"`
	Quantity    int              `json:"quantity"`
	Materials   []Material       `json:"materials"`
	Status      lifecycle.Status `json:"status"`
	CreatedBy   string           `json:"createdBy"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// MaterialCost sums quantity times unit cost over a material list.
func MaterialCost(materials []Material) decimal.Decimal {
	total := decimal.Zero
	for _, m := range materials {
		total = total.Add(m.UnitCost.Mul(decimal.NewFromInt(int64(m.Quantity))))
	}
	return total
}
