package eventgen

// Option defines a functional option for configuring a Session.
type Option func(*Session) error

// WithLogger sets the logger for the session.
//
// Debug level: per-event scheduling details (development use)
// Info level: session lifecycle, emitted/discarded counts (production-safe)
// Warn level: discarded candidates that were regenerated successfully
// Error level: fatal generation failures.
func WithLogger(logger Logger) Option {
	return func(s *Session) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the session. Messages
// carry the run context, enabling automatic trace/span correlation when the
// backend supports it.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Session) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the session. The collector
// receives counters for emitted events, discarded candidates, and created
// users, and the total session runtime as a duration.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Session) error {
		s.metricsCollector = collector
		return nil
	}
}
