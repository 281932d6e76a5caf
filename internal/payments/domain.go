// Package payments validates payment attempts against an order's outstanding
// balance: cash with a denomination breakdown, online with a UTR reference,
// or a split of the two.
package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is the payment method of an attempt.
type Method string

const (
	MethodCash   Method = "cash"
	MethodOnline Method = "online"
	MethodSplit  Method = "split"
)

// Attempt is one payment attempt against a sales order.
type Attempt struct {
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ReceivedAmount decimal.Decimal `json:"receivedAmount"`
	Method         Method          `json:"method"`
	// Denominations maps note value to count. For cash it must cover the
	// whole received amount; for split, exactly the cash sub-amount.
	Denominations map[int]int     `json:"denominations,omitempty"`
	SplitCash     decimal.Decimal `json:"splitCash,omitempty"`
	SplitOnline   decimal.Decimal `json:"splitOnline,omitempty"`
	UTRReference  string          `json:"utrReference,omitempty"`
	HandledBy     string          `json:"handledBy"`
}

// Payment is a recorded, reconciled payment.
type Payment struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"orderId"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	ReceivedAmount decimal.Decimal `json:"receivedAmount"`
	Method         Method          `json:"method"`
	Denominations  map[int]int     `json:"denominations,omitempty"`
	SplitCash      decimal.Decimal `json:"splitCash"`
	SplitOnline    decimal.Decimal `json:"splitOnline"`
	UTRReference   string          `json:"utrReference,omitempty"`
	HandledBy      string          `json:"handledBy"`
	ReceivedAt     time.Time       `json:"receivedAt"`
}

// DenominationTotal sums note value times count over a breakdown.
func DenominationTotal(denominations map[int]int) decimal.Decimal {
	total := decimal.Zero
	for note, count := range denominations {
		total = total.Add(decimal.NewFromInt(int64(note)).Mul(decimal.NewFromInt(int64(count))))
	}
	return total
}
