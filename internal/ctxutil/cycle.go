// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// CycleKey is the context key for the poll cycle ID.
type CycleKey struct{}

// WithCycleID returns a context with the poll cycle ID embedded.
func WithCycleID(ctx context.Context, cycleID string) context.Context {
	return context.WithValue(ctx, CycleKey{}, cycleID)
}

// CycleIDFromContext returns the cycle ID from context, or empty string if not set.
func CycleIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CycleKey{}).(string); ok {
		return v
	}
	return ""
}
