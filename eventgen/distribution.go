package eventgen

import (
	"math/rand/v2"
)

// Distribution samples one custom property value. Implementations may condition
// on the user's current snapshot (the geo-correlated sampler keys on the
// profile's country).
type Distribution interface {
	Sample(r *rand.Rand, snapshot UserSnapshot) (PropertyValue, error)

	// Numeric reports whether every sampled value is of the Number kind,
	// which makes the distribution legal for user_add properties.
	Numeric() bool
}

// PropertySpec binds a custom property name to the distribution its values are
// drawn from. Property names and cardinality per event are configuration
// driven, the generator is schema-agnostic beyond the reserved envelope.
type PropertySpec struct {
	Name string
	Dist Distribution
}

/***** weighted categorical choice *****/

// WeightedValue is one entry of a weighted categorical choice.
type WeightedValue struct {
	Value  PropertyValue
	Weight float64
}

type weightedChoice struct {
	entries []WeightedValue
	numeric bool
}

// ChoiceOf builds a uniform categorical distribution over the given values.
func ChoiceOf(values ...PropertyValue) Distribution {
	entries := make([]WeightedValue, len(values))
	for i, value := range values {
		entries[i] = WeightedValue{Value: value, Weight: 1}
	}

	return buildWeightedChoice(entries)
}

// WeightedChoiceOf builds a weighted categorical distribution.
func WeightedChoiceOf(entries ...WeightedValue) Distribution {
	return buildWeightedChoice(entries)
}

func buildWeightedChoice(entries []WeightedValue) Distribution {
	numeric := len(entries) > 0
	for _, entry := range entries {
		if !entry.Value.IsNumeric() {
			numeric = false
		}
	}

	return &weightedChoice{entries: entries, numeric: numeric}
}

func (c *weightedChoice) Sample(r *rand.Rand, _ UserSnapshot) (PropertyValue, error) {
	return drawWeighted(r, c.entries)
}

func (c *weightedChoice) Numeric() bool {
	return c.numeric
}

func drawWeighted(r *rand.Rand, entries []WeightedValue) (PropertyValue, error) {
	if len(entries) == 0 {
		return PropertyValue{}, ErrEmptyChoicePool
	}

	total := 0.0
	for _, entry := range entries {
		if entry.Weight > 0 {
			total += entry.Weight
		}
	}

	if total == 0 {
		return PropertyValue{}, ErrZeroWeightSum
	}

	target := r.Float64() * total
	for _, entry := range entries {
		if entry.Weight <= 0 {
			continue
		}

		target -= entry.Weight
		if target < 0 {
			return entry.Value, nil
		}
	}

	// float underflow on the last subtraction
	return entries[len(entries)-1].Value, nil
}

/***** numeric ranges *****/

type numberRange struct {
	min     float64
	max     float64
	integer bool
}

// NumberRange builds a uniform distribution over [min, max).
// Deltas for user_add may be signed, a negative min is legal.
func NumberRange(minVal float64, maxVal float64) Distribution {
	return &numberRange{min: minVal, max: maxVal}
}

// IntRange builds a uniform distribution over whole numbers in [min, max].
func IntRange(minVal int64, maxVal int64) Distribution {
	return &numberRange{min: float64(minVal), max: float64(maxVal), integer: true}
}

func (n *numberRange) Sample(r *rand.Rand, _ UserSnapshot) (PropertyValue, error) {
	if n.integer {
		span := int64(n.max) - int64(n.min) + 1
		if span <= 0 {
			return NumberValue(n.min), nil
		}

		return NumberValue(n.min + float64(r.Int64N(span))), nil
	}

	return NumberValue(n.min + r.Float64()*(n.max-n.min)), nil
}

func (n *numberRange) Numeric() bool {
	return true
}

/***** geo-correlated choice *****/

type geoChoice struct {
	byCountry map[string][]WeightedValue
	fallback  []WeightedValue
}

// GeoChoiceOf builds a categorical distribution keyed on the user's country.
// Users from a country without its own value pool sample from the fallback.
func GeoChoiceOf(byCountry map[string][]WeightedValue, fallback ...WeightedValue) Distribution {
	return &geoChoice{byCountry: byCountry, fallback: fallback}
}

func (g *geoChoice) Sample(r *rand.Rand, snapshot UserSnapshot) (PropertyValue, error) {
	if entries, found := g.byCountry[snapshot.Profile.Country]; found {
		return drawWeighted(r, entries)
	}

	return drawWeighted(r, g.fallback)
}

func (g *geoChoice) Numeric() bool {
	entries := make([]WeightedValue, 0, len(g.fallback))
	entries = append(entries, g.fallback...)
	for _, pool := range g.byCountry {
		entries = append(entries, pool...)
	}

	if len(entries) == 0 {
		return false
	}

	for _, entry := range entries {
		if !entry.Value.IsNumeric() {
			return false
		}
	}

	return true
}

/***** property generator *****/

// PropertyGenerator produces randomized, schema-valid custom property maps per
// event type from the session's distribution specs.
type PropertyGenerator struct {
	specs map[EventType][]PropertySpec
}

// NewPropertyGenerator creates a generator over the given per-type specs.
// A nil or empty spec map is legal, Generate then returns empty maps.
func NewPropertyGenerator(specs map[EventType][]PropertySpec) *PropertyGenerator {
	return &PropertyGenerator{specs: specs}
}

// HasSpecs reports whether custom properties are configured for the event type.
// The sequencer only schedules user_set/user_add events when they are.
func (g *PropertyGenerator) HasSpecs(eventType EventType) bool {
	return len(g.specs[eventType]) > 0
}

// Generate samples one value per configured property for the event type,
// conditioned on the user's current snapshot.
func (g *PropertyGenerator) Generate(
	r *rand.Rand,
	eventType EventType,
	snapshot UserSnapshot,
) (map[string]PropertyValue, error) {

	specs := g.specs[eventType]
	properties := make(map[string]PropertyValue, len(specs))

	for _, spec := range specs {
		value, err := spec.Dist.Sample(r, snapshot)
		if err != nil {
			return nil, err
		}

		properties[spec.Name] = value
	}

	return properties, nil
}
