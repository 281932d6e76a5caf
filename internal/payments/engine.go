package payments

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/craftline-erp/craftline/internal/shared"
)

// Reconcile validates an attempt. Validation rejects before any state is
// touched; a mismatch between sums and the received amount is a
// ReconciliationMismatch, everything else malformed is a ValidationError.
// Amount comparisons are exact, with no rounding tolerance.
func Reconcile(attempt Attempt) error {
	if !attempt.TotalAmount.IsPositive() {
		return fmt.Errorf("payments: total amount must be positive: %w", shared.ErrValidation)
	}
	if attempt.ReceivedAmount.IsNegative() {
		return fmt.Errorf("payments: received amount must not be negative: %w", shared.ErrValidation)
	}
	switch attempt.Method {
	case MethodCash:
		return reconcileCash(attempt.Denominations, attempt.ReceivedAmount, "cash")
	case MethodOnline:
		if strings.TrimSpace(attempt.UTRReference) == "" {
			return fmt.Errorf("payments: online payment requires a UTR reference: %w", shared.ErrValidation)
		}
		return nil
	case MethodSplit:
		if strings.TrimSpace(attempt.UTRReference) == "" {
			return fmt.Errorf("payments: split payment requires a UTR reference for its online part: %w", shared.ErrValidation)
		}
		if attempt.SplitCash.IsNegative() || attempt.SplitOnline.IsNegative() {
			return fmt.Errorf("payments: split sub-amounts must not be negative: %w", shared.ErrValidation)
		}
		if !attempt.SplitCash.Add(attempt.SplitOnline).Equal(attempt.ReceivedAmount) {
			return fmt.Errorf("payments: split cash %s + online %s does not equal received %s: %w",
				attempt.SplitCash, attempt.SplitOnline, attempt.ReceivedAmount, shared.ErrReconciliationMismatch)
		}
		return reconcileCash(attempt.Denominations, attempt.SplitCash, "split cash")
	default:
		return fmt.Errorf("payments: unknown method %q: %w", attempt.Method, shared.ErrValidation)
	}
}

func reconcileCash(denominations map[int]int, expected decimal.Decimal, label string) error {
	for note, count := range denominations {
		if note <= 0 || count < 0 {
			return fmt.Errorf("payments: invalid denomination entry %d x %d: %w", note, count, shared.ErrValidation)
		}
	}
	total := DenominationTotal(denominations)
	if !total.Equal(expected) {
		return fmt.Errorf("payments: %s denominations total %s does not equal %s: %w",
			label, total, expected, shared.ErrReconciliationMismatch)
	}
	return nil
}
