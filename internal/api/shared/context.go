// Package shared holds request context keys and the JSON request and
// response helpers used by handlers and middleware.
package shared

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
)

// ContextKey is the type of the request context keys set by middleware.
type ContextKey string

// Context keys for various values
const (
	// LearnerIDContextKey holds the learner's uuid.UUID
	LearnerIDContextKey ContextKey = "learnerID"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID adds a new random trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	id := uuid.New()
	return context.WithValue(ctx, TraceIDKey, hex.EncodeToString(id[:]))
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithLearnerID stores the caller's learner ID in the context.
func WithLearnerID(ctx context.Context, learnerID uuid.UUID) context.Context {
	return context.WithValue(ctx, LearnerIDContextKey, learnerID)
}

// LearnerIDFromContext returns the learner ID set by the identity middleware.
func LearnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(LearnerIDContextKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}
