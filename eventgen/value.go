package eventgen

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedJSONValue is returned when a JSON value cannot be represented
// as one of the closed property value kinds.
var ErrUnsupportedJSONValue = errors.New("json value is not a supported property value")

// ValueKind enumerates the closed set of kinds a custom property value can have.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindNumber
	KindText
	KindBool
)

// String provides a string representation of ValueKind for logging and debugging.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// PropertyValue is a closed variant over the JSON scalars a custom property may
// carry: Number | Text | Bool | Null. It replaces loose any-typed property maps
// with an explicitly typed value, so the numeric-only rule for user_add events
// can be checked statically by the validator instead of being left to callers.
//
// The zero value is the null value. PropertyValue is comparable, two values are
// equal iff kind and payload are equal.
type PropertyValue struct {
	kind ValueKind
	num  float64
	text string
	b    bool
}

// NumberValue builds a numeric PropertyValue.
func NumberValue(v float64) PropertyValue {
	return PropertyValue{kind: KindNumber, num: v}
}

// TextValue builds a text PropertyValue.
func TextValue(v string) PropertyValue {
	return PropertyValue{kind: KindText, text: v}
}

// BoolValue builds a boolean PropertyValue.
func BoolValue(v bool) PropertyValue {
	return PropertyValue{kind: KindBool, b: v}
}

// NullValue builds a null PropertyValue.
func NullValue() PropertyValue {
	return PropertyValue{kind: KindNull}
}

// Kind returns the kind of the value.
func (v PropertyValue) Kind() ValueKind {
	return v.kind
}

// IsNumeric reports whether the value is legal under a user_add event.
func (v PropertyValue) IsNumeric() bool {
	return v.kind == KindNumber
}

// AsNumber returns the numeric payload, or 0 for non-numeric values.
func (v PropertyValue) AsNumber() float64 {
	return v.num
}

// AsText returns the text payload, or "" for non-text values.
func (v PropertyValue) AsText() string {
	return v.text
}

// AsBool returns the boolean payload, or false for non-boolean values.
func (v PropertyValue) AsBool() bool {
	return v.b
}

// String provides a string representation for logging and debugging.
func (v PropertyValue) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}

// jsonValue maps the PropertyValue to the value the JSON encoder should see.
func (v PropertyValue) jsonValue() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindBool:
		return v.b
	default:
		return nil
	}
}

// PropertyValueFromJSON maps a decoded JSON value onto the closed variant.
// Returns ErrUnsupportedJSONValue for arrays, objects, and other non-scalars.
func PropertyValueFromJSON(raw any) (PropertyValue, error) {
	switch typed := raw.(type) {
	case nil:
		return NullValue(), nil
	case float64:
		return NumberValue(typed), nil
	case string:
		return TextValue(typed), nil
	case bool:
		return BoolValue(typed), nil
	default:
		return PropertyValue{}, fmt.Errorf("%w: %T", ErrUnsupportedJSONValue, raw)
	}
}
