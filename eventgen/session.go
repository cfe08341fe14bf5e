package eventgen

import (
	"errors"
	"time"
)

// DefaultEventNames is the track event name pool used when a session does not
// configure its own.
var DefaultEventNames = []string{"page_view", "click", "signup", "purchase"}

// SessionConfig is the recognized configuration surface of a generation session.
type SessionConfig struct {
	// UserCount is the synthetic user population size, must be positive.
	UserCount int

	// TimeRangeStart and TimeRangeEnd bound the session window, start must be
	// before end.
	TimeRangeStart time.Time
	TimeRangeEnd   time.Time

	// EventsPerUser caps each user's event budget. EventRate is the mean number
	// of events per user per second and drives interarrival sampling. At least
	// one of the two must be set; with only EventsPerUser the interarrival mean
	// is derived from the window length.
	EventsPerUser int
	EventRate     float64

	// EventTypeWeights is the event-type mix, normalized internally. A nil map
	// defaults to track-only. track is always legal; user_set/user_add draws
	// require configured property specs and fall back to track otherwise.
	EventTypeWeights map[EventType]float64

	// PropertySpecs configures custom property distributions per event type.
	PropertySpecs map[EventType][]PropertySpec

	// EventNames is the pool track event names are drawn from,
	// DefaultEventNames when empty.
	EventNames []string

	// ProfilePool is the preset profile sampling pool, DefaultProfilePool when
	// zero-valued.
	ProfilePool ProfilePool

	// ProfileRotationChance enables the optional profile rotation extension:
	// the per-event probability of resampling the user's preset profile.
	// Zero (the default) keeps profiles immutable for the user's lifetime.
	ProfileRotationChance float64

	// Workers is the number of generation goroutines users are sharded across,
	// 1 when zero.
	Workers int

	// Seed makes generation deterministic when non-zero (uuid-derived IDs stay
	// random). A zero seed derives one from the wall clock.
	Seed uint64
}

// Validate checks the configuration surface. It is fatal at session start,
// before any event is produced.
//
//nolint:gocognit // one check per config rule
func (c SessionConfig) Validate() error {
	if c.UserCount <= 0 {
		return errors.Join(ErrInvalidSessionConfig, ErrNonPositiveUserCount)
	}

	if c.TimeRangeStart.IsZero() || c.TimeRangeEnd.IsZero() || !c.TimeRangeEnd.After(c.TimeRangeStart) {
		return errors.Join(ErrInvalidSessionConfig, ErrEmptyTimeRange)
	}

	if c.EventsPerUser <= 0 && c.EventRate <= 0 {
		return errors.Join(ErrInvalidSessionConfig, ErrNoEventBudget)
	}

	if c.EventTypeWeights != nil {
		total := 0.0
		for eventType, weight := range c.EventTypeWeights {
			if !eventType.IsValid() {
				return errors.Join(ErrInvalidSessionConfig, ErrUnknownEventType)
			}
			if weight < 0 {
				return errors.Join(ErrInvalidSessionConfig, ErrNegativeTypeWeight)
			}
			total += weight
		}

		if total == 0 {
			return errors.Join(ErrInvalidSessionConfig, ErrAllZeroTypeWeights)
		}
	}

	for eventType, specs := range c.PropertySpecs {
		if !eventType.IsValid() {
			return errors.Join(ErrInvalidSessionConfig, ErrUnknownEventType)
		}

		for _, spec := range specs {
			if IsReservedName(spec.Name) {
				return errors.Join(ErrInvalidSessionConfig, ErrReservedCustomName)
			}

			if eventType == EventTypeUserAdd && !spec.Dist.Numeric() {
				return errors.Join(ErrInvalidSessionConfig, ErrNonNumericUserAddSpec)
			}
		}
	}

	if !c.profilePoolConfigured() {
		return nil
	}

	if err := c.ProfilePool.Validate(); err != nil {
		return errors.Join(ErrInvalidSessionConfig, err)
	}

	return nil
}

func (c SessionConfig) profilePoolConfigured() bool {
	return len(c.ProfilePool.Devices) > 0 || len(c.ProfilePool.Carriers) > 0 ||
		len(c.ProfilePool.NetworkTypes) > 0 || len(c.ProfilePool.AppVersions) > 0 ||
		len(c.ProfilePool.Locations) > 0
}

// Stats summarizes one session run. Every discarded candidate is counted here
// (and on the metrics collector), nothing is silently swallowed.
type Stats struct {
	EventsEmitted       int64
	EventsByType        map[EventType]int64
	CandidatesDiscarded int64
	UsersCreated        int
}

func (s *Stats) merge(other Stats) {
	s.EventsEmitted += other.EventsEmitted
	s.CandidatesDiscarded += other.CandidatesDiscarded
	for eventType, count := range other.EventsByType {
		s.EventsByType[eventType] += count
	}
}
