package protocol

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/xiaot623/gogo/unitlink/bag"
)

func propertyParams() *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	return params
}

func genItem() gopter.Gen {
	return gen.Struct(reflect.TypeOf(ResultItem{}), map[string]gopter.Gen{
		"ID":                  gen.PtrOf(gen.AlphaString()),
		"Completed":           gen.PtrOf(gen.Bool()),
		"Challenge":           gen.PtrOf(gen.AlphaString()),
		"GivenResponse":       gen.PtrOf(gen.AlphaString()),
		"CorrectResponse":     gen.PtrOf(gen.AlphaString()),
		"Score":               gen.PtrOf(gen.Float32Range(0, 1)),
		"DurationMs":          gen.PtrOf(gen.Int64Range(0, 1<<40)),
		"TimeToFirstActionMs": gen.PtrOf(gen.Int64Range(0, 1<<40)),
	})
}

// genItems yields nil as often as a populated list so both item states are
// exercised.
func genItems() gopter.Gen {
	return gen.Bool().FlatMap(func(v interface{}) gopter.Gen {
		if v.(bool) {
			return gen.Const([]ResultItem(nil))
		}
		return gen.SliceOf(genItem())
	}, reflect.TypeOf([]ResultItem(nil)))
}

func TestRequestRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("decode(encode(r)) == r", prop.ForAll(
		func(unitID, runID, learnerID, ownerID, stage string, remaining, inactivity *int64, locator *string) bool {
			req := NewRunUnitRequest(unitID, runID, learnerID, ownerID, stage, remaining, inactivity, locator)
			got, err := DecodeRunUnitRequest(req.Encode())
			return err == nil && reflect.DeepEqual(req, got)
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
		gen.Identifier(),
		gen.OneConstOf("test", "prod"),
		gen.PtrOf(gen.Int64Range(0, 1<<40)),
		gen.PtrOf(gen.Int64Range(0, 1<<40)),
		gen.PtrOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func TestResultRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("decode(encode(r)) == r, also through the JSON bag codec", prop.ForAll(
		func(outcome Outcome, score *float32, duration int64, additional *string, items []ResultItem) bool {
			var res RunUnitResult
			switch outcome {
			case OutcomeError:
				res = ResultOfError(duration, "failed", additional, items)
			default:
				res = newResult(outcome, score, duration, additional, nil, items)
			}

			b, err := res.Encode()
			if err != nil {
				return false
			}
			got, err := DecodeRunUnitResult(b)
			if err != nil || !reflect.DeepEqual(res, got) {
				return false
			}

			data, err := b.MarshalJSON()
			if err != nil {
				return false
			}
			wire, err := bag.Unmarshal(data)
			if err != nil {
				return false
			}
			got, err = DecodeRunUnitResult(wire)
			return err == nil && reflect.DeepEqual(res, got)
		},
		gen.OneConstOf(OutcomeSuccess, OutcomeAbort, OutcomeError, OutcomeTimeoutInactivity, OutcomeTimeUp),
		gen.PtrOf(gen.Float32Range(0, 1)),
		gen.Int64Range(0, 1<<40),
		gen.PtrOf(gen.AlphaString()),
		genItems(),
	))

	properties.TestingRun(t)
}

func TestDiscoveryRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("unit IDs survive encode and decode in order", prop.ForAll(
		func(ids []string) bool {
			got, err := DecodeDiscoveryResult(NewDiscoveryResult(ids).Encode())
			return err == nil && reflect.DeepEqual(NewDiscoveryResult(ids), got)
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}

func TestDataEventRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("events survive the CBOR bag codec with their segmentation", prop.ForAll(
		func(id string, segs map[string]string, timeMs, durationMs int64) bool {
			m := make(map[string]any, len(segs))
			for k, v := range segs {
				m[k] = v
			}
			ev, err := NewDataEvent(id, m, timeMs, durationMs)
			if err != nil {
				return false
			}
			data, err := ev.Encode().MarshalCBOR()
			if err != nil {
				return false
			}
			wire, err := bag.Unmarshal(data)
			if err != nil {
				return false
			}
			got, err := DecodeDataEvent(wire)
			if err != nil || got != ev {
				return false
			}
			back, err := got.Segments()
			return err == nil && reflect.DeepEqual(m, back)
		},
		gen.Identifier(),
		gen.MapOf(gen.Identifier(), gen.AlphaString()),
		gen.Int64Range(0, 1<<42),
		gen.Int64Range(0, 1<<32),
	))

	properties.TestingRun(t)
}

func TestUnknownOutcomeProperty(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("unlisted names decode to Unknown", prop.ForAll(
		func(name string) bool {
			o := ParseOutcome(name)
			if o.Known() {
				return string(o) == name
			}
			return o == OutcomeUnknown
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
