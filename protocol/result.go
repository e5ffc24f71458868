package protocol

import (
	"math"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

// ResultVersion is the result envelope version written by this build.
// Version 1 results carried no item list; they decode with nil Items.
const ResultVersion = 2

// itemsSinceVersion is the first result version with an items key.
const itemsSinceVersion = 2

// RunUnitResult reports how a run ended.
type RunUnitResult struct {
	Version int     `json:"version"`
	Outcome Outcome `json:"outcome"`
	// Score lies in [0, 1]. Producers send 1 for units that have no notion
	// of a wrong answer, and leave it out when it cannot be computed.
	Score *float32 `json:"score,omitempty"`
	// ForegroundDurationMs excludes time spent in the background.
	ForegroundDurationMs int64 `json:"foreground_duration_ms"`
	// AdditionalData is surfaced to the receiver's own analytics. It must
	// not carry device identifiers or other sensitive data.
	AdditionalData *string `json:"additional_data,omitempty"`
	ErrorDetails   *string `json:"error_details,omitempty"`
	// Items is nil when no structured account is available and empty when
	// one is available but recorded nothing.
	Items []ResultItem `json:"items"`
}

func newResult(outcome Outcome, score *float32, foregroundDurationMs int64, additionalData, errorDetails *string, items []ResultItem) RunUnitResult {
	return RunUnitResult{
		Version:              ResultVersion,
		Outcome:              outcome,
		Score:                score,
		ForegroundDurationMs: foregroundDurationMs,
		AdditionalData:       additionalData,
		ErrorDetails:         errorDetails,
		Items:                items,
	}
}

func ResultOfSuccess(score *float32, foregroundDurationMs int64, additionalData *string, items []ResultItem) RunUnitResult {
	return newResult(OutcomeSuccess, score, foregroundDurationMs, additionalData, nil, items)
}

func ResultOfAbort(score *float32, foregroundDurationMs int64, additionalData *string, items []ResultItem) RunUnitResult {
	return newResult(OutcomeAbort, score, foregroundDurationMs, additionalData, nil, items)
}

func ResultOfTimeoutInactivity(score *float32, foregroundDurationMs int64, additionalData *string, items []ResultItem) RunUnitResult {
	return newResult(OutcomeTimeoutInactivity, score, foregroundDurationMs, additionalData, nil, items)
}

func ResultOfTimeUp(score *float32, foregroundDurationMs int64, additionalData *string, items []ResultItem) RunUnitResult {
	return newResult(OutcomeTimeUp, score, foregroundDurationMs, additionalData, nil, items)
}

// ResultOfError builds an Error result. It never carries a score.
func ResultOfError(foregroundDurationMs int64, errorDetails string, additionalData *string, items []ResultItem) RunUnitResult {
	return newResult(OutcomeError, nil, foregroundDurationMs, additionalData, &errorDetails, items)
}

// Encode writes the result into a bag routed back to the sender. The only
// failure is an item that cannot be rendered as JSON, such as a NaN score.
func (r RunUnitResult) Encode() (*bag.Bag, error) {
	items, err := EncodeItems(r.Items)
	if err != nil {
		return nil, err
	}
	b := bag.New("")
	envelope.StampVersion(b, r.Version)
	envelope.PutRequired(b, KeyResultType, bag.String(string(r.Outcome)))
	envelope.PutOptional(b, KeyScore, r.Score, bag.Float, envelope.OmitAbsent)
	envelope.PutRequired(b, KeyForegroundDurationMs, bag.Long(r.ForegroundDurationMs))
	envelope.PutOptional(b, KeyAdditionalData, r.AdditionalData, bag.String, envelope.NullAbsent)
	envelope.PutOptional(b, KeyErrorDetails, r.ErrorDetails, bag.String, envelope.NullAbsent)
	if r.Version >= itemsSinceVersion {
		envelope.PutRequired(b, KeyItems, bag.String(items))
	}
	return b, nil
}

// DecodeRunUnitResult reads a result from b. An outcome name this build does
// not know decodes to OutcomeUnknown; a missing outcome, a missing or
// non-numeric duration, and a malformed item list are reported together in
// one *envelope.ValidationError.
func DecodeRunUnitResult(b *bag.Bag) (RunUnitResult, error) {
	if b == nil {
		return RunUnitResult{}, envelope.ErrNotApplicable
	}

	d := envelope.NewDecoder("result", b)
	r := RunUnitResult{Version: d.Version(ResultVersion)}

	if name := d.RequiredString(KeyResultType); name != "" {
		r.Outcome = ParseOutcome(name)
	}
	r.Score = d.OptionalFloat(KeyScore)
	if r.Score != nil && (math.IsNaN(float64(*r.Score)) || *r.Score < 0 || *r.Score > 1) {
		d.Add(&envelope.FieldError{Key: KeyScore, Reason: envelope.ReasonOutOfRange, Raw: *r.Score})
	}
	r.ForegroundDurationMs = d.RequiredLong(KeyForegroundDurationMs)
	if r.ForegroundDurationMs < 0 {
		d.Add(&envelope.FieldError{Key: KeyForegroundDurationMs, Reason: envelope.ReasonNegative, Raw: r.ForegroundDurationMs})
	}
	r.AdditionalData = d.OptionalString(KeyAdditionalData)
	r.ErrorDetails = d.OptionalString(KeyErrorDetails)

	// Version 1 senders never wrote items, so such a key is not theirs.
	if r.Version >= itemsSinceVersion {
		if text := d.OptionalString(KeyItems); text != nil {
			items, err := DecodeItems(*text)
			if err != nil {
				d.Add(&envelope.FieldError{Key: KeyItems, Reason: envelope.ReasonMalformed, Raw: *text, Cause: err})
			}
			r.Items = items
		}
	}

	if err := d.Err(); err != nil {
		return RunUnitResult{}, err
	}
	return r, nil
}
