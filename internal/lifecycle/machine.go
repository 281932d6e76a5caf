// Package lifecycle implements the edge-table state machine shared by every
// order workflow. Each workflow declares its legal (status, trigger) pairs up
// front; anything outside the table fails before any mutation happens.
package lifecycle

import (
	"fmt"

	"github.com/craftline-erp/craftline/internal/shared"
)

// Status is an order lifecycle status.
type Status string

// Trigger names a requested transition.
type Trigger string

// Edge declares a single legal transition.
type Edge struct {
	From    Status
	Trigger Trigger
	To      Status
}

type edgeKey struct {
	from    Status
	trigger Trigger
}

// Machine resolves triggers against a declared edge set.
type Machine struct {
	edges map[edgeKey]Status
}

// NewMachine builds a machine from declared edges. Duplicate (from, trigger)
// pairs are a programming error and panic at wiring time.
func NewMachine(edges ...Edge) *Machine {
	m := &Machine{edges: make(map[edgeKey]Status, len(edges))}
	for _, e := range edges {
		k := edgeKey{from: e.From, trigger: e.Trigger}
		if _, dup := m.edges[k]; dup {
			panic(fmt.Sprintf("lifecycle: duplicate edge (%s, %s)", e.From, e.Trigger))
		}
		m.edges[k] = e.To
	}
	return m
}

// Next returns the target status for (from, trigger), or ErrInvalidTransition
// when no edge is declared.
func (m *Machine) Next(from Status, trigger Trigger) (Status, error) {
	to, ok := m.edges[edgeKey{from: from, trigger: trigger}]
	if !ok {
		return "", fmt.Errorf("lifecycle: %s on %s: %w", trigger, from, shared.ErrInvalidTransition)
	}
	return to, nil
}

// Can reports whether (from, trigger) has a declared edge.
func (m *Machine) Can(from Status, trigger Trigger) bool {
	_, ok := m.edges[edgeKey{from: from, trigger: trigger}]
	return ok
}
