package eventgen

import (
	"time"
)

// Event is the tagged structure behind all three ingestion event forms: a fixed
// reserved-field envelope plus an explicitly typed custom property map. The two
// namespaces are disjoint, the validator enforces that no custom key starts
// with the reserved sentinel.
//
// Events are immutable once constructed and validated, they are never mutated
// after emission. Construct them with the factory functions:
//   - BuildTrackEvent
//   - BuildUserSetEvent
//   - BuildUserAddEvent
type Event struct {
	AccountID  string
	DistinctID string
	Time       time.Time
	Type       EventType
	EventName  string // track events only
	Profile    PresetProfile
	Properties map[string]PropertyValue
}

// BuildTrackEvent builds a track event, a discrete user action record.
// The custom property map is copied, the caller keeps ownership of its map.
func BuildTrackEvent(
	accountID string,
	distinctID string,
	at time.Time,
	eventName string,
	profile PresetProfile,
	properties map[string]PropertyValue,
) Event {

	return Event{
		AccountID:  accountID,
		DistinctID: distinctID,
		Time:       at,
		Type:       EventTypeTrack,
		EventName:  eventName,
		Profile:    profile,
		Properties: copyProperties(properties),
	}
}

// BuildUserSetEvent builds a user_set event whose custom properties are
// interpreted as overwrite assignments on the user's property snapshot.
func BuildUserSetEvent(
	accountID string,
	distinctID string,
	at time.Time,
	profile PresetProfile,
	properties map[string]PropertyValue,
) Event {

	return Event{
		AccountID:  accountID,
		DistinctID: distinctID,
		Time:       at,
		Type:       EventTypeUserSet,
		Profile:    profile,
		Properties: copyProperties(properties),
	}
}

// BuildUserAddEvent builds a user_add event whose custom properties are
// interpreted as delta increments on the user's cumulative counters.
// Values must be numeric, which the validator enforces.
func BuildUserAddEvent(
	accountID string,
	distinctID string,
	at time.Time,
	profile PresetProfile,
	properties map[string]PropertyValue,
) Event {

	return Event{
		AccountID:  accountID,
		DistinctID: distinctID,
		Time:       at,
		Type:       EventTypeUserAdd,
		Profile:    profile,
		Properties: copyProperties(properties),
	}
}

func copyProperties(properties map[string]PropertyValue) map[string]PropertyValue {
	copied := make(map[string]PropertyValue, len(properties))
	for name, value := range properties {
		copied[name] = value
	}

	return copied
}
