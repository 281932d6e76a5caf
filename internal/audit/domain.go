// Package audit serves the read side of the audit trail that every
// department writes through shared.AuditLogger.
package audit

import "time"

// Entry is one recorded action, as stored in audit_logs.
type Entry struct {
	ID         int64          `json:"id"`
	Actor      string         `json:"actor"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entityId"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}
