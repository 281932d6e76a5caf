// Package showroom holds the sellable product records published when
// assembly completes. Sales reads the catalog; Showroom prices it.
package showroom

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog entry.
type Product struct {
	ID                uuid.UUID       `json:"id"`
	ProductionOrderID uuid.UUID       `json:"productionOrderId"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	AvailableQty      int             `json:"availableQty"`
	PublishedAt       time.Time       `json:"publishedAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}
