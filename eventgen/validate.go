package eventgen

import (
	"errors"
	"fmt"
)

// Schema violation reasons. A SchemaViolation wraps one of these, so callers
// can match with errors.Is while still seeing the offending field.
var (
	ErrMissingAccountID       = errors.New("missing required reserved field #account_id")
	ErrMissingDistinctID      = errors.New("missing required reserved field #distinct_id")
	ErrMissingEventTime       = errors.New("missing required reserved field #time")
	ErrEventNameRequired      = errors.New("#event_name is required for track events")
	ErrEventNameForbidden     = errors.New("#event_name is only legal on track events")
	ErrNonNumericUserAddValue = errors.New("user_add custom property value is not numeric")
)

// SchemaViolation is the typed rejection of a candidate event. The validator
// never silently drops or coerces, a failed check always surfaces as one of
// these.
type SchemaViolation struct {
	Field string
	Err   error
}

func newSchemaViolation(field string, err error) *SchemaViolation {
	return &SchemaViolation{Field: field, Err: err}
}

// Error implements the error interface.
func (v *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation on %q: %v", v.Field, v.Err)
}

// Unwrap exposes the sentinel reason for errors.Is matching.
func (v *SchemaViolation) Unwrap() error {
	return v.Err
}

// Validate checks a constructed event against the schema model:
// required reserved fields, a legal #type value, presence/absence of
// #event_name, the numeric-only constraint for user_add custom values, and
// namespace disjointness of custom keys. Returns nil for a valid event and a
// *SchemaViolation for the first violated rule.
func Validate(event Event) error {
	spec, err := Describe(event.Type)
	if err != nil {
		return newSchemaViolation(FieldType, err)
	}

	if event.AccountID == "" {
		return newSchemaViolation(FieldAccountID, ErrMissingAccountID)
	}

	if event.DistinctID == "" {
		return newSchemaViolation(FieldDistinctID, ErrMissingDistinctID)
	}

	if event.Time.IsZero() {
		return newSchemaViolation(FieldTime, ErrMissingEventTime)
	}

	if spec.RequiresEventName && event.EventName == "" {
		return newSchemaViolation(FieldEventName, ErrEventNameRequired)
	}

	if !spec.RequiresEventName && event.EventName != "" {
		return newSchemaViolation(FieldEventName, ErrEventNameForbidden)
	}

	for name, value := range event.Properties {
		if IsReservedName(name) {
			return newSchemaViolation(name, ErrReservedCustomName)
		}

		if spec.NumericCustomOnly && !value.IsNumeric() {
			return newSchemaViolation(name, ErrNonNumericUserAddValue)
		}
	}

	return nil
}
