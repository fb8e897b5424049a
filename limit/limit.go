// Package limit truncates per-event emission sequences.
package limit

// Unbounded disables truncation.
const Unbounded = 0

// Apply returns the first min(len(items), maxItems) elements of items in their
// original order. A maxItems of zero or less means unbounded and returns items
// unchanged. The result shares the backing array of items.
func Apply[T any](items []T, maxItems int) []T {
	if maxItems <= Unbounded || len(items) <= maxItems {
		return items
	}
	return items[:maxItems:maxItems]
}
