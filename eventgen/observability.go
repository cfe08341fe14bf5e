package eventgen

import (
	"context"
	"time"
)

// Logger interface for operational logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. It follows the same dependency-free pattern as MetricsCollector,
// allowing users to integrate with any logging backend (OpenTelemetry,
// structured loggers, etc.) that supports context-based correlation.
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting generation performance and
// operational metrics. Implement it to integrate with any metrics backend.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Metric names emitted by a running session.
const (
	MetricEventsEmitted       = "eventgen.events_emitted"
	MetricCandidatesDiscarded = "eventgen.candidates_discarded"
	MetricUsersCreated        = "eventgen.users_created"
	MetricSessionDuration     = "eventgen.session_duration"
)
