package shared

// ClampLimit normalizes a caller-supplied page size for listing endpoints.
// Non-positive values fall back to the package default, oversized values are
// capped so a single request cannot drag the whole table over the wire.
func ClampLimit(limit, fallback, max int) int {
	switch {
	case limit <= 0:
		return fallback
	case limit > max:
		return max
	default:
		return limit
	}
}
