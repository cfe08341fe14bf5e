package eventgen

import (
	"errors"
	"strings"
)

// ErrUnknownEventType is returned when an event type outside the fixed schema is used.
var ErrUnknownEventType = errors.New("unknown event type")

// ReservedPrefix is the sentinel marker for reserved wire record keys.
// Custom property names must never start with it.
const ReservedPrefix = "#"

// EventType identifies one of the three fixed ingestion event forms.
type EventType string

const (
	// EventTypeTrack is a discrete user action record, carrying an event name.
	EventTypeTrack EventType = "track"

	// EventTypeUserSet overwrites named user properties (last write wins).
	EventTypeUserSet EventType = "user_set"

	// EventTypeUserAdd increments named numeric user counters by a delta.
	EventTypeUserAdd EventType = "user_add"
)

// IsValid reports whether the event type is one of the three schema forms.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeTrack, EventTypeUserSet, EventTypeUserAdd:
		return true
	default:
		return false
	}
}

// Reserved wire record field names.
const (
	FieldAccountID    = ReservedPrefix + "account_id"
	FieldDistinctID   = ReservedPrefix + "distinct_id"
	FieldTime         = ReservedPrefix + "time"
	FieldType         = ReservedPrefix + "type"
	FieldEventName    = ReservedPrefix + "event_name"
	FieldIP           = ReservedPrefix + "ip"
	FieldCountry      = ReservedPrefix + "country"
	FieldProvince     = ReservedPrefix + "province"
	FieldCity         = ReservedPrefix + "city"
	FieldOS           = ReservedPrefix + "os"
	FieldOSVersion    = ReservedPrefix + "os_version"
	FieldModel        = ReservedPrefix + "model"
	FieldDeviceID     = ReservedPrefix + "device_id"
	FieldCarrier      = ReservedPrefix + "carrier"
	FieldNetworkType  = ReservedPrefix + "network_type"
	FieldAppVersion   = ReservedPrefix + "app_version"
	FieldManufacturer = ReservedPrefix + "manufacturer"
	FieldScreenWidth  = ReservedPrefix + "screen_width"
	FieldScreenHeight = ReservedPrefix + "screen_height"
)

// presetFields are the optional reserved fields sampled once per user as its preset profile.
var presetFields = []string{
	FieldIP, FieldCountry, FieldProvince, FieldCity,
	FieldOS, FieldOSVersion, FieldModel, FieldDeviceID,
	FieldCarrier, FieldNetworkType, FieldAppVersion, FieldManufacturer,
	FieldScreenWidth, FieldScreenHeight,
}

// FieldSpec describes the reserved field contract and the custom property value
// constraint for one event type.
type FieldSpec struct {
	Required []string
	Optional []string

	// RequiresEventName holds for track events only, event_name must be absent otherwise.
	RequiresEventName bool

	// NumericCustomOnly restricts custom property values to the Number kind (user_add).
	NumericCustomOnly bool
}

// Describe returns the field contract for the given event type.
// It is a pure lookup with no side effects.
func Describe(t EventType) (FieldSpec, error) {
	base := []string{FieldAccountID, FieldDistinctID, FieldTime, FieldType}

	switch t {
	case EventTypeTrack:
		return FieldSpec{
			Required:          append(base, FieldEventName),
			Optional:          presetFields,
			RequiresEventName: true,
		}, nil

	case EventTypeUserSet:
		return FieldSpec{
			Required: base,
			Optional: presetFields,
		}, nil

	case EventTypeUserAdd:
		return FieldSpec{
			Required:          base,
			Optional:          presetFields,
			NumericCustomOnly: true,
		}, nil

	default:
		return FieldSpec{}, ErrUnknownEventType
	}
}

// IsReservedName reports whether the given key lives in the reserved namespace.
// Any key starting with the sentinel marker is reserved, custom properties may
// never reuse it.
func IsReservedName(name string) bool {
	return strings.HasPrefix(name, ReservedPrefix)
}
