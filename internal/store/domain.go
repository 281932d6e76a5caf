// Package store tracks on-hand raw material quantities owned by the Store
// department. Purchase consults it during stock checks and credits it when a
// verified purchase lands.
package store

import "time"

// StockItem is the on-hand quantity for a single material name.
type StockItem struct {
	MaterialName string    `json:"materialName"`
	OnHand       int       `json:"onHand"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Availability reports what the store can allocate for one requested material.
type Availability struct {
	MaterialName string `json:"materialName"`
	Requested    int    `json:"requested"`
	OnHand       int    `json:"onHand"`
}

// Allocatable reports whether the full requested quantity is on hand.
// Zero or negative on-hand never allocates.
func (a Availability) Allocatable() bool {
	return a.OnHand > 0 && a.OnHand >= a.Requested
}

// PartiallyAllocatable reports whether some, but not all, of the requested
// quantity is on hand.
func (a Availability) PartiallyAllocatable() bool {
	return a.OnHand > 0 && a.OnHand < a.Requested
}
