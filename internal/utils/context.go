// Package utils holds small helpers shared by the relay and the transport:
// typed context keys, relay bearer tokens and id generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
type contextKey string

func (c contextKey) String() string {
	return string(c)
}

var (
	// OwnerCtxKey stores the authenticated blob owner (the token subject).
	OwnerCtxKey = contextKey("owner")
	// TraceIDCtxKey stores the request trace id.
	TraceIDCtxKey = contextKey("traceID")
)

// WithOwner returns a copy of ctx carrying owner.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, OwnerCtxKey, owner)
}

// GetOwnerFromContext returns the owner stored by [WithOwner]. ok is false
// when it is missing or empty.
func GetOwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(OwnerCtxKey).(string)
	return owner, ok && owner != ""
}

// WithTraceID returns a copy of ctx carrying the trace id.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDCtxKey, traceID)
}

// GetTraceIDFromContext returns the trace id or "".
func GetTraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDCtxKey).(string)
	return traceID
}
