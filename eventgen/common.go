package eventgen

import (
	"errors"
)

// Session configuration errors, all fatal at session start before any event is produced.
var (
	ErrInvalidSessionConfig  = errors.New("invalid session config")
	ErrNonPositiveUserCount  = errors.New("user count must be positive")
	ErrEmptyTimeRange        = errors.New("time range is empty or inverted")
	ErrNoEventBudget         = errors.New("either events per user or event rate must be set")
	ErrAllZeroTypeWeights    = errors.New("all event type weights are zero")
	ErrNegativeTypeWeight    = errors.New("event type weights must not be negative")
	ErrNonNumericUserAddSpec = errors.New("user_add property specs must sample numeric values")
	ErrReservedCustomName    = errors.New("custom property name collides with the reserved namespace")
)

// Resource exhaustion errors, fatal for the running session.
var (
	ErrEmptyChoicePool  = errors.New("choice distribution has no values")
	ErrZeroWeightSum    = errors.New("weighted choice distribution weights sum to zero")
	ErrEmptyProfilePool = errors.New("profile pool has no entries to sample from")
)

// ErrGenerationFailed is surfaced when a candidate event fails validation and
// its single bounded regeneration attempt fails as well.
var ErrGenerationFailed = errors.New("event generation failed for user/time slot")

// ErrNilSink is returned when a session is run without an emission sink.
var ErrNilSink = errors.New("nil sink supplied")
