package eventgen_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventforge/eventgen-go/eventgen"
)

func validTrackEvent() eventgen.Event {
	return eventgen.BuildTrackEvent(
		"acct-000001",
		"d-1",
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		"page_view",
		eventgen.PresetProfile{Country: "US", OS: "iOS"},
		map[string]eventgen.PropertyValue{"plan": eventgen.TextValue("pro")},
	)
}

func Test_Validate_AcceptsWellFormedEvents(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event eventgen.Event
	}{
		{name: "track with properties", event: validTrackEvent()},
		{
			name: "user_set with mixed value kinds",
			event: eventgen.BuildUserSetEvent("acct-000001", "d-1", at, eventgen.PresetProfile{},
				map[string]eventgen.PropertyValue{
					"plan":   eventgen.TextValue("pro"),
					"active": eventgen.BoolValue(true),
					"age":    eventgen.NumberValue(33),
				}),
		},
		{
			name: "user_add with numeric deltas",
			event: eventgen.BuildUserAddEvent("acct-000001", "d-1", at, eventgen.PresetProfile{},
				map[string]eventgen.PropertyValue{
					"total_spend": eventgen.NumberValue(19.99),
					"login_count": eventgen.NumberValue(-2),
				}),
		},
		{
			name: "user_set with no custom properties",
			event: eventgen.BuildUserSetEvent("acct-000001", "d-1", at, eventgen.PresetProfile{}, nil),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, eventgen.Validate(tc.event))
		})
	}
}

func Test_Validate_RejectsViolations(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(*eventgen.Event)
		reason error
		field  string
	}{
		{
			name:   "missing account id",
			mutate: func(e *eventgen.Event) { e.AccountID = "" },
			reason: eventgen.ErrMissingAccountID,
			field:  eventgen.FieldAccountID,
		},
		{
			name:   "missing distinct id",
			mutate: func(e *eventgen.Event) { e.DistinctID = "" },
			reason: eventgen.ErrMissingDistinctID,
			field:  eventgen.FieldDistinctID,
		},
		{
			name:   "missing event time",
			mutate: func(e *eventgen.Event) { e.Time = time.Time{} },
			reason: eventgen.ErrMissingEventTime,
			field:  eventgen.FieldTime,
		},
		{
			name:   "track without event name",
			mutate: func(e *eventgen.Event) { e.EventName = "" },
			reason: eventgen.ErrEventNameRequired,
			field:  eventgen.FieldEventName,
		},
		{
			name: "event name on user_set",
			mutate: func(e *eventgen.Event) {
				e.Type = eventgen.EventTypeUserSet
			},
			reason: eventgen.ErrEventNameForbidden,
			field:  eventgen.FieldEventName,
		},
		{
			name:   "unknown event type",
			mutate: func(e *eventgen.Event) { e.Type = eventgen.EventType("bogus") },
			reason: eventgen.ErrUnknownEventType,
			field:  eventgen.FieldType,
		},
		{
			name: "reserved custom property name",
			mutate: func(e *eventgen.Event) {
				e.Properties["#country"] = eventgen.TextValue("DE")
			},
			reason: eventgen.ErrReservedCustomName,
			field:  "#country",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event := validTrackEvent()
			tc.mutate(&event)

			err := eventgen.Validate(event)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.reason)

			var violation *eventgen.SchemaViolation
			require.True(t, errors.As(err, &violation))
			assert.Equal(t, tc.field, violation.Field)
		})
	}

	t.Run("non-numeric user_add value", func(t *testing.T) {
		event := eventgen.BuildUserAddEvent("acct-000001", "d-1", at, eventgen.PresetProfile{},
			map[string]eventgen.PropertyValue{"total_spend": eventgen.TextValue("a lot")})

		err := eventgen.Validate(event)
		require.Error(t, err)
		assert.ErrorIs(t, err, eventgen.ErrNonNumericUserAddValue)

		var violation *eventgen.SchemaViolation
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, "total_spend", violation.Field)
	})
}

func Test_SchemaViolation_ErrorMessageNamesField(t *testing.T) {
	event := validTrackEvent()
	event.AccountID = ""

	err := eventgen.Validate(event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), eventgen.FieldAccountID)
}

func Test_BuildEvents_CopyPropertyMap(t *testing.T) {
	properties := map[string]eventgen.PropertyValue{"plan": eventgen.TextValue("pro")}
	event := eventgen.BuildTrackEvent("acct-000001", "d-1",
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		"click", eventgen.PresetProfile{}, properties)

	properties["plan"] = eventgen.TextValue("free")

	assert.Equal(t, eventgen.TextValue("pro"), event.Properties["plan"],
		"caller mutations after construction must not leak into the event")
}
