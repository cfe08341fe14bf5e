package eventgen

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var (
	// ErrInvalidWireJSON is returned when wire record bytes are not valid JSON.
	ErrInvalidWireJSON = errors.New("wire record json is not valid")

	// ErrMalformedWireRecord is returned when a wire record decodes but its
	// reserved fields do not match the schema.
	ErrMalformedWireRecord = errors.New("malformed wire record")
)

// WireTimeLayout is the canonical timestamp format of the #time field.
const WireTimeLayout = time.RFC3339Nano

var wireJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Serialize renders the event as its flat wire record: reserved fields under
// their #-prefixed names, custom properties inlined alongside them (no nested
// sub-object). Zero-valued optional preset fields are omitted.
//
// Serialize assumes the event has passed Validate, it does not re-check.
func Serialize(event Event) ([]byte, error) {
	record := make(map[string]any, len(event.Properties)+18)

	record[FieldAccountID] = event.AccountID
	record[FieldDistinctID] = event.DistinctID
	record[FieldTime] = event.Time.Format(WireTimeLayout)
	record[FieldType] = string(event.Type)

	if event.Type == EventTypeTrack {
		record[FieldEventName] = event.EventName
	}

	putNonEmpty(record, FieldIP, event.Profile.IP)
	putNonEmpty(record, FieldCountry, event.Profile.Country)
	putNonEmpty(record, FieldProvince, event.Profile.Province)
	putNonEmpty(record, FieldCity, event.Profile.City)
	putNonEmpty(record, FieldOS, event.Profile.OS)
	putNonEmpty(record, FieldOSVersion, event.Profile.OSVersion)
	putNonEmpty(record, FieldModel, event.Profile.Model)
	putNonEmpty(record, FieldDeviceID, event.Profile.DeviceID)
	putNonEmpty(record, FieldCarrier, event.Profile.Carrier)
	putNonEmpty(record, FieldNetworkType, event.Profile.NetworkType)
	putNonEmpty(record, FieldAppVersion, event.Profile.AppVersion)
	putNonEmpty(record, FieldManufacturer, event.Profile.Manufacturer)

	if event.Profile.ScreenWidth != 0 {
		record[FieldScreenWidth] = event.Profile.ScreenWidth
	}
	if event.Profile.ScreenHeight != 0 {
		record[FieldScreenHeight] = event.Profile.ScreenHeight
	}

	for name, value := range event.Properties {
		record[name] = value.jsonValue()
	}

	return wireJSON.Marshal(record)
}

func putNonEmpty(record map[string]any, field string, value string) {
	if value != "" {
		record[field] = value
	}
}

// Deserialize parses a flat wire record back into an Event. Reserved keys are
// mapped onto the envelope, every other key becomes a custom property. The
// result round-trips: Deserialize(Serialize(e)) equals e in all field values.
func Deserialize(data []byte) (Event, error) {
	if !wireJSON.Valid(data) {
		return Event{}, ErrInvalidWireJSON
	}

	var record map[string]any
	if err := wireJSON.Unmarshal(data, &record); err != nil {
		return Event{}, errors.Join(ErrInvalidWireJSON, err)
	}

	event := Event{
		Properties: make(map[string]PropertyValue),
	}

	for key, raw := range record {
		if !IsReservedName(key) {
			value, err := PropertyValueFromJSON(raw)
			if err != nil {
				return Event{}, errors.Join(ErrMalformedWireRecord, err)
			}
			event.Properties[key] = value

			continue
		}

		if err := assignReservedField(&event, key, raw); err != nil {
			return Event{}, err
		}
	}

	if !event.Type.IsValid() {
		return Event{}, fmt.Errorf("%w: bad or missing %s", ErrMalformedWireRecord, FieldType)
	}

	return event, nil
}

//nolint:funlen // one case per reserved field
func assignReservedField(event *Event, key string, raw any) error {
	badType := func() error {
		return fmt.Errorf("%w: unexpected value type %T for %s", ErrMalformedWireRecord, raw, key)
	}

	switch key {
	case FieldTime:
		text, ok := raw.(string)
		if !ok {
			return badType()
		}
		at, err := time.Parse(WireTimeLayout, text)
		if err != nil {
			return errors.Join(ErrMalformedWireRecord, err)
		}
		event.Time = at

		return nil

	case FieldScreenWidth, FieldScreenHeight:
		number, ok := raw.(float64)
		if !ok {
			return badType()
		}
		if key == FieldScreenWidth {
			event.Profile.ScreenWidth = int(number)
		} else {
			event.Profile.ScreenHeight = int(number)
		}

		return nil
	}

	text, ok := raw.(string)
	if !ok {
		return badType()
	}

	switch key {
	case FieldAccountID:
		event.AccountID = text
	case FieldDistinctID:
		event.DistinctID = text
	case FieldType:
		event.Type = EventType(text)
	case FieldEventName:
		event.EventName = text
	case FieldIP:
		event.Profile.IP = text
	case FieldCountry:
		event.Profile.Country = text
	case FieldProvince:
		event.Profile.Province = text
	case FieldCity:
		event.Profile.City = text
	case FieldOS:
		event.Profile.OS = text
	case FieldOSVersion:
		event.Profile.OSVersion = text
	case FieldModel:
		event.Profile.Model = text
	case FieldDeviceID:
		event.Profile.DeviceID = text
	case FieldCarrier:
		event.Profile.Carrier = text
	case FieldNetworkType:
		event.Profile.NetworkType = text
	case FieldAppVersion:
		event.Profile.AppVersion = text
	case FieldManufacturer:
		event.Profile.Manufacturer = text
	default:
		return fmt.Errorf("%w: unknown reserved field %q", ErrMalformedWireRecord, key)
	}

	return nil
}
