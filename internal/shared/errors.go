package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidTransition indicates a trigger not legal for the current status.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrConflict indicates the stored status changed since it was read.
	ErrConflict = errors.New("stale status, refetch required")
	// ErrReconciliationMismatch indicates denomination or split sums that do
	// not add up to the received amount.
	ErrReconciliationMismatch = errors.New("payment reconciliation mismatch")
	// ErrCollaborator indicates an external lookup was unreachable or timed out.
	ErrCollaborator = errors.New("external collaborator unavailable")
)
