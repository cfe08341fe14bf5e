package eventgen

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeRegression is returned when an event would move a user's time watermark backwards.
	ErrTimeRegression = errors.New("event time is before the user's last event time")

	// ErrForeignUser is returned when an event is applied to a user it does not belong to.
	ErrForeignUser = errors.New("event identity does not match the user")
)

// ProfileSampler supplies a freshly sampled PresetProfile for a new user.
type ProfileSampler func() (PresetProfile, error)

// SyntheticUser owns the mutable state of one synthetic user: its stable
// identity, preset profile, current property snapshot, cumulative counters,
// and the monotonic time watermark of its emitted events.
//
// State is mutated only through Registry.Apply after the event has passed
// validation. Concurrent events for the same user must be serialized by the
// caller (the sequencer shards users across workers for exactly this reason).
type SyntheticUser struct {
	accountID     string
	distinctID    string
	profile       PresetProfile
	properties    map[string]PropertyValue
	counters      map[string]float64
	lastEventTime time.Time
}

// AccountID returns the user's stable account identifier.
func (u *SyntheticUser) AccountID() string {
	return u.accountID
}

// DistinctID returns the user's stable distinct identifier.
func (u *SyntheticUser) DistinctID() string {
	return u.distinctID
}

// LastEventTime returns the user's monotonic time watermark.
func (u *SyntheticUser) LastEventTime() time.Time {
	return u.lastEventTime
}

// UserSnapshot is a read-only copy of a user's current state for the property
// generator and for external consumers.
type UserSnapshot struct {
	Profile    PresetProfile
	Properties map[string]PropertyValue
	Counters   map[string]float64
}

// Registry owns all synthetic users of one generation session. It is created at
// session start and discarded at session end, nothing is persisted.
//
// The map of users is guarded for concurrent creation, but each user's state
// must be touched by exactly one worker at a time (single writer per user).
type Registry struct {
	mu    sync.RWMutex
	users map[string]*SyntheticUser
}

// NewRegistry creates an empty session-scoped registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[string]*SyntheticUser),
	}
}

// GetOrCreate returns the user identified by (accountID, distinctID), creating
// it with a freshly sampled preset profile and empty snapshot/counters when it
// is referenced for the first time. Idempotent per identity within a session.
func (r *Registry) GetOrCreate(accountID string, distinctID string, sample ProfileSampler) (*SyntheticUser, error) {
	key := accountID + "\x00" + distinctID

	r.mu.RLock()
	user, found := r.users[key]
	r.mu.RUnlock()

	if found {
		return user, nil
	}

	profile, err := sample()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another worker may have won the race for this identity
	if user, found = r.users[key]; found {
		return user, nil
	}

	user = &SyntheticUser{
		accountID:  accountID,
		distinctID: distinctID,
		profile:    profile,
		properties: make(map[string]PropertyValue),
		counters:   make(map[string]float64),
	}
	r.users[key] = user

	return user, nil
}

// Apply folds a validated event into the user's state:
//   - user_set overwrites property snapshot entries (last write wins), counters untouched
//   - user_add increments counters, creating absent ones at the delta, snapshot untouched
//   - track mutates nothing beyond the time watermark
//
// Apply is atomic per event: it rejects the event fully or applies it fully.
// It must only be called with events that passed Validate.
func (r *Registry) Apply(user *SyntheticUser, event Event) error {
	if event.AccountID != user.accountID || event.DistinctID != user.distinctID {
		return ErrForeignUser
	}

	if event.Time.Before(user.lastEventTime) {
		return ErrTimeRegression
	}

	switch event.Type {
	case EventTypeUserSet:
		for name, value := range event.Properties {
			user.properties[name] = value
		}

	case EventTypeUserAdd:
		for name, value := range event.Properties {
			if !value.IsNumeric() {
				return newSchemaViolation(name, ErrNonNumericUserAddValue)
			}
		}
		for name, value := range event.Properties {
			user.counters[name] += value.AsNumber()
		}

	case EventTypeTrack:
		// watermark only

	default:
		return ErrUnknownEventType
	}

	user.lastEventTime = event.Time

	return nil
}

// RotateProfile replaces the user's preset profile with a freshly sampled one.
// Profile rotation is an optional, off-by-default session extension, a session
// that does not enable it never calls this.
func (r *Registry) RotateProfile(user *SyntheticUser, sample ProfileSampler) error {
	profile, err := sample()
	if err != nil {
		return err
	}

	user.profile = profile

	return nil
}

// Snapshot returns a read-only copy of the user's current state.
func (r *Registry) Snapshot(user *SyntheticUser) UserSnapshot {
	properties := make(map[string]PropertyValue, len(user.properties))
	for name, value := range user.properties {
		properties[name] = value
	}

	counters := make(map[string]float64, len(user.counters))
	for name, value := range user.counters {
		counters[name] = value
	}

	return UserSnapshot{
		Profile:    user.profile,
		Properties: properties,
		Counters:   counters,
	}
}

// Len returns the number of users created so far.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}
