package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/shared"
)

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func TestReconcileCash(t *testing.T) {
	attempt := Attempt{
		TotalAmount:    amount(700),
		ReceivedAmount: amount(700),
		Method:         MethodCash,
		Denominations:  map[int]int{500: 1, 100: 2},
		HandledBy:      "sales",
	}
	require.NoError(t, Reconcile(attempt))

	attempt.ReceivedAmount = amount(650)
	err := Reconcile(attempt)
	require.ErrorIs(t, err, shared.ErrReconciliationMismatch)
}

func TestReconcileCashRejectsBadDenominationEntry(t *testing.T) {
	attempt := Attempt{
		TotalAmount:    amount(100),
		ReceivedAmount: amount(100),
		Method:         MethodCash,
		Denominations:  map[int]int{-50: 2},
	}
	require.ErrorIs(t, Reconcile(attempt), shared.ErrValidation)
}

func TestReconcileOnline(t *testing.T) {
	attempt := Attempt{
		TotalAmount:    amount(900),
		ReceivedAmount: amount(900),
		Method:         MethodOnline,
	}
	require.ErrorIs(t, Reconcile(attempt), shared.ErrValidation)

	attempt.UTRReference = "UTR12345"
	require.NoError(t, Reconcile(attempt))
}

func TestReconcileSplit(t *testing.T) {
	attempt := Attempt{
		TotalAmount:    amount(500),
		ReceivedAmount: amount(500),
		Method:         MethodSplit,
		SplitCash:      amount(300),
		SplitOnline:    amount(200),
		Denominations:  map[int]int{100: 3},
		UTRReference:   "UTR777",
	}
	require.NoError(t, Reconcile(attempt))

	// Sub-amounts must add up to the received amount exactly.
	attempt.ReceivedAmount = amount(600)
	require.ErrorIs(t, Reconcile(attempt), shared.ErrReconciliationMismatch)

	// Denominations must cover the cash part, not the whole.
	attempt.ReceivedAmount = amount(500)
	attempt.Denominations = map[int]int{100: 5}
	require.ErrorIs(t, Reconcile(attempt), shared.ErrReconciliationMismatch)

	attempt.Denominations = map[int]int{100: 3}
	attempt.UTRReference = ""
	require.ErrorIs(t, Reconcile(attempt), shared.ErrValidation)
}

func TestReconcileGuards(t *testing.T) {
	require.ErrorIs(t, Reconcile(Attempt{TotalAmount: decimal.Zero, ReceivedAmount: amount(10), Method: MethodOnline, UTRReference: "x"}), shared.ErrValidation)
	require.ErrorIs(t, Reconcile(Attempt{TotalAmount: amount(10), ReceivedAmount: amount(-1), Method: MethodOnline, UTRReference: "x"}), shared.ErrValidation)
	require.ErrorIs(t, Reconcile(Attempt{TotalAmount: amount(10), ReceivedAmount: amount(10), Method: Method("cheque")}), shared.ErrValidation)
}
