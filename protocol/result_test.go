package protocol

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

func mustEncode(t *testing.T, r RunUnitResult) *bag.Bag {
	t.Helper()
	b, err := r.Encode()
	require.NoError(t, err)
	return b
}

func TestResultOfErrorScenario(t *testing.T) {
	res := ResultOfError(5000, "boom", nil, nil)
	b := mustEncode(t, res)

	v, ok := b.Get(KeyResultType)
	require.True(t, ok)
	name, _ := v.AsString()
	assert.Equal(t, "Error", name)

	assert.False(t, b.Has(KeyScore))

	v, ok = b.Get(KeyItems)
	require.True(t, ok)
	items, _ := v.AsString()
	assert.Equal(t, "null", items)

	got, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeError, got.Outcome)
	assert.Nil(t, got.Score)
	assert.Nil(t, got.Items)
	require.NotNil(t, got.ErrorDetails)
	assert.Equal(t, "boom", *got.ErrorDetails)
	assert.Equal(t, res, got)
}

func TestResultConstructors(t *testing.T) {
	score := Ptr(float32(0.5))
	cases := []struct {
		name    string
		result  RunUnitResult
		outcome Outcome
	}{
		{"success", ResultOfSuccess(score, 10, nil, nil), OutcomeSuccess},
		{"abort", ResultOfAbort(score, 10, nil, nil), OutcomeAbort},
		{"inactivity", ResultOfTimeoutInactivity(score, 10, nil, nil), OutcomeTimeoutInactivity},
		{"time up", ResultOfTimeUp(score, 10, nil, nil), OutcomeTimeUp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.outcome, tc.result.Outcome)
			assert.Equal(t, ResultVersion, tc.result.Version)
			assert.Nil(t, tc.result.ErrorDetails)

			got, err := DecodeRunUnitResult(mustEncode(t, tc.result))
			require.NoError(t, err)
			assert.Equal(t, tc.result, got)
		})
	}
}

func TestResultNullMarkersForOptionalStrings(t *testing.T) {
	b := mustEncode(t, ResultOfSuccess(Ptr(float32(1)), 10, nil, nil))

	v, ok := b.Get(KeyAdditionalData)
	require.True(t, ok)
	assert.True(t, v.IsNull())
	v, ok = b.Get(KeyErrorDetails)
	require.True(t, ok)
	assert.True(t, v.IsNull())

	// plain omission decodes the same way
	b.Delete(KeyAdditionalData)
	b.Delete(KeyErrorDetails)
	got, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.Nil(t, got.AdditionalData)
	assert.Nil(t, got.ErrorDetails)
}

func TestResultItemsAbsentVersusEmpty(t *testing.T) {
	absent, err := DecodeRunUnitResult(mustEncode(t, ResultOfSuccess(nil, 1, nil, nil)))
	require.NoError(t, err)
	assert.Nil(t, absent.Items)

	b := mustEncode(t, ResultOfSuccess(nil, 1, nil, []ResultItem{}))
	v, _ := b.Get(KeyItems)
	text, _ := v.AsString()
	assert.Equal(t, "[]", text)

	empty, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)

	assert.NotEqual(t, absent, empty)
}

func TestResultWithItemsRoundTrip(t *testing.T) {
	items := []ResultItem{
		{ID: Ptr("q1"), Score: Ptr(float32(1))},
		{ID: Ptr("q2"), Completed: Ptr(false), Challenge: Ptr("2+2"), GivenResponse: Ptr("5"), CorrectResponse: Ptr("4"), Score: Ptr(float32(0)), DurationMs: Ptr(int64(1200)), TimeToFirstActionMs: Ptr(int64(300))},
	}
	res := ResultOfSuccess(Ptr(float32(0.5)), 90000, Ptr(`{"level":3}`), items)

	got, err := DecodeRunUnitResult(mustEncode(t, res))
	require.NoError(t, err)
	assert.Equal(t, res, got)
}

func TestResultUnknownOutcomeIsTolerated(t *testing.T) {
	b := mustEncode(t, ResultOfSuccess(nil, 1, nil, nil))
	b.Put(KeyResultType, bag.String("PartialCredit"))

	got, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.Equal(t, OutcomeUnknown, got.Outcome)
	assert.False(t, got.Outcome.Known())
}

func TestResultMissingRequiredFields(t *testing.T) {
	b := bag.New("")
	b.Put(KeyResultType, bag.String(""))
	b.Put(KeyForegroundDurationMs, bag.String("5000"))

	_, err := DecodeRunUnitResult(b)
	var verr *envelope.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{KeyResultType, KeyForegroundDurationMs}, verr.Keys())

	f, _ := verr.Field(KeyForegroundDurationMs)
	assert.Equal(t, envelope.ReasonWrongType, f.Reason)
}

func TestResultRejectsOutOfRangeScore(t *testing.T) {
	for _, s := range []float32{-0.1, 1.5, float32(math.NaN())} {
		b := mustEncode(t, ResultOfSuccess(nil, 1, nil, nil))
		b.Put(KeyScore, bag.Float(s))

		_, err := DecodeRunUnitResult(b)
		var verr *envelope.ValidationError
		require.True(t, errors.As(err, &verr), "score %v", s)
		f, _ := verr.Field(KeyScore)
		assert.Equal(t, envelope.ReasonOutOfRange, f.Reason)
	}
}

func TestResultRejectsNegativeDuration(t *testing.T) {
	b := mustEncode(t, ResultOfAbort(nil, 1, nil, nil))
	b.Put(KeyForegroundDurationMs, bag.Long(-5))

	_, err := DecodeRunUnitResult(b)
	var verr *envelope.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{KeyForegroundDurationMs}, verr.Keys())
}

func TestResultMalformedItems(t *testing.T) {
	b := mustEncode(t, ResultOfSuccess(nil, 1, nil, nil))
	b.Put(KeyItems, bag.String("[{"))

	_, err := DecodeRunUnitResult(b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, envelope.ErrMalformedItemList))
	assert.True(t, errors.Is(err, envelope.ErrMissingOrInvalidField))
}

func TestResultVersionOneHasNoItems(t *testing.T) {
	b := bag.New("")
	envelope.StampVersion(b, 1)
	b.Put("contentId", bag.String("legacy-unit"))
	b.Put(KeyResultType, bag.String("Success"))
	b.Put(KeyScore, bag.Float(1))
	b.Put(KeyForegroundDurationMs, bag.Long(42))
	b.Put(KeyItems, bag.String(`[{"id":"q1"}]`))

	got, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, OutcomeSuccess, got.Outcome)
	assert.Nil(t, got.Items)
}

func TestResultVersionOneIgnoresMalformedItems(t *testing.T) {
	b := mustEncode(t, ResultOfAbort(nil, 7, nil, nil))
	envelope.StampVersion(b, 1)
	b.Put(KeyItems, bag.String("not json"))

	got, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.Nil(t, got.Items)
}

func TestResultVersionOneEncodesWithoutItems(t *testing.T) {
	res := ResultOfSuccess(Ptr(float32(1)), 42, nil, []ResultItem{{ID: Ptr("q1")}})
	res.Version = 1

	b := mustEncode(t, res)
	assert.False(t, b.Has(KeyItems))
}

func TestResultUnversionedDefaults(t *testing.T) {
	b := mustEncode(t, ResultOfTimeUp(nil, 1, nil, nil))
	b.Delete(KeyVersion)

	got, err := DecodeRunUnitResult(b)
	require.NoError(t, err)
	assert.Equal(t, ResultVersion, got.Version)
}

func TestResultEncodeRejectsNaNItemScore(t *testing.T) {
	res := ResultOfSuccess(nil, 1, nil, []ResultItem{{Score: Ptr(float32(math.NaN()))}})
	_, err := res.Encode()
	assert.Error(t, err)
}

func TestParseOutcome(t *testing.T) {
	for _, o := range Outcomes {
		assert.Equal(t, o, ParseOutcome(o.String()))
		assert.True(t, o.Known())
	}
	assert.Equal(t, OutcomeUnknown, ParseOutcome("success"))
	assert.False(t, Outcome("Whatever").Known())
}
