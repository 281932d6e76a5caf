package lifecycle

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftline-erp/craftline/internal/shared"
)

func TestMachineNext(t *testing.T) {
	m := NewMachine(
		Edge{From: "pending", Trigger: "accept", To: "accepted"},
		Edge{From: "pending", Trigger: "reject", To: "rejected"},
		Edge{From: "accepted", Trigger: "complete", To: "completed"},
	)

	next, err := m.Next("pending", "accept")
	require.NoError(t, err)
	require.Equal(t, Status("accepted"), next)

	next, err = m.Next("accepted", "complete")
	require.NoError(t, err)
	require.Equal(t, Status("completed"), next)
}

func TestMachineRejectsUndeclaredEdge(t *testing.T) {
	m := NewMachine(
		Edge{From: "pending", Trigger: "accept", To: "accepted"},
	)

	_, err := m.Next("rejected", "accept")
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrInvalidTransition))

	_, err = m.Next("pending", "unknown")
	require.True(t, errors.Is(err, shared.ErrInvalidTransition))

	require.False(t, m.Can("rejected", "accept"))
	require.True(t, m.Can("pending", "accept"))
}

func TestMachinePanicsOnDuplicateEdge(t *testing.T) {
	require.Panics(t, func() {
		NewMachine(
			Edge{From: "pending", Trigger: "accept", To: "a"},
			Edge{From: "pending", Trigger: "accept", To: "b"},
		)
	})
}
