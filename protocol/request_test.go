package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

func fullRequest() RunUnitRequest {
	return NewRunUnitRequest("u1", "r1", "l1", "s1", "prod", Ptr(int64(60000)), Ptr(int64(30000)), nil)
}

func TestRequestScenarioEncodesEightKeys(t *testing.T) {
	req := fullRequest()
	b := req.Encode()

	assert.Equal(t, LaunchUnitAction, b.Action())
	assert.Equal(t, 8, b.Len())
	assert.ElementsMatch(t, []string{
		KeyVersion, KeyUnitID, KeyRunID, KeyLearnerID, KeyOwnerID, KeyStage,
		KeyRemainingForegroundTimeMs, KeyInactivityTimeoutMs,
	}, b.Keys())

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestRequestOptionalFieldsOmitted(t *testing.T) {
	req := NewRunUnitRequest("u1", "r1", "l1", "s1", "test", nil, nil, nil)
	b := req.Encode()

	assert.Equal(t, 6, b.Len())
	assert.False(t, b.Has(KeyRemainingForegroundTimeMs))
	assert.False(t, b.Has(KeyInactivityTimeoutMs))
	_, ok := b.Data()
	assert.False(t, ok)

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Nil(t, got.RemainingForegroundTimeMs)
	assert.Nil(t, got.InactivityTimeoutMs)
	assert.Nil(t, got.AssetsBaseLocator)
	assert.Equal(t, req, got)
}

func TestRequestLocatorTravelsInDataSlot(t *testing.T) {
	req := NewRunUnitRequest("u1", "r1", "l1", "s1", "prod", nil, nil, Ptr("content://com.example.host/assets/u1"))
	b := req.Encode()

	data, ok := b.Data()
	require.True(t, ok)
	assert.Equal(t, "content://com.example.host/assets/u1", data)
	assert.Equal(t, 6, b.Len(), "locator is not stored under a key")

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Equal(t, req, got)
}

func TestRequestEncodeForSetsTarget(t *testing.T) {
	target := bag.Target{Package: "com.example.units", Class: "com.example.units.RunActivity"}
	b := fullRequest().EncodeFor(target)

	got, ok := b.Target()
	require.True(t, ok)
	assert.Equal(t, target, got)

	_, ok = fullRequest().Encode().Target()
	assert.False(t, ok)
}

func TestRequestMissingUnitID(t *testing.T) {
	req := fullRequest()
	req.UnitID = ""

	_, err := DecodeRunUnitRequest(req.Encode())
	require.Error(t, err)
	assert.True(t, errors.Is(err, envelope.ErrMissingOrInvalidField))

	var verr *envelope.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{KeyUnitID}, verr.Keys())
}

func TestRequestReportsEveryMissingField(t *testing.T) {
	b := bag.New(LaunchUnitAction)
	b.Put(KeyRunID, bag.String("r1"))
	b.Put(KeyStage, bag.String(""))

	_, err := DecodeRunUnitRequest(b)
	var verr *envelope.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{KeyUnitID, KeyLearnerID, KeyOwnerID, KeyStage}, verr.Keys())

	f, ok := verr.Field(KeyStage)
	require.True(t, ok)
	assert.Equal(t, envelope.ReasonEmpty, f.Reason)
}

func TestRequestOptionalLongValidation(t *testing.T) {
	b := fullRequest().Encode()
	b.Put(KeyRemainingForegroundTimeMs, bag.String("60000"))
	b.Put(KeyInactivityTimeoutMs, bag.Long(-1))

	_, err := DecodeRunUnitRequest(b)
	var verr *envelope.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{KeyRemainingForegroundTimeMs, KeyInactivityTimeoutMs}, verr.Keys())

	f, _ := verr.Field(KeyRemainingForegroundTimeMs)
	assert.Equal(t, envelope.ReasonWrongType, f.Reason)
	assert.Equal(t, "60000", f.Raw)

	f, _ = verr.Field(KeyInactivityTimeoutMs)
	assert.Equal(t, envelope.ReasonNegative, f.Reason)
}

func TestRequestNullMarkerIsAbsent(t *testing.T) {
	b := fullRequest().Encode()
	b.Put(KeyInactivityTimeoutMs, bag.Null())

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Nil(t, got.InactivityTimeoutMs)
	require.NotNil(t, got.RemainingForegroundTimeMs, "neighbouring field is untouched")
	assert.Equal(t, int64(60000), *got.RemainingForegroundTimeMs)
}

func TestRequestIntWidensToLong(t *testing.T) {
	b := fullRequest().Encode()
	b.Put(KeyRemainingForegroundTimeMs, bag.Int(1000))

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), *got.RemainingForegroundTimeMs)
}

func TestRequestVersionDefault(t *testing.T) {
	b := fullRequest().Encode()
	b.Delete(KeyVersion)

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Equal(t, RequestVersion, got.Version)
}

func TestRequestNewerVersionAccepted(t *testing.T) {
	b := fullRequest().Encode()
	envelope.StampVersion(b, RequestVersion+5)
	b.Put("someFutureKey", bag.String("ignored"))

	got, err := DecodeRunUnitRequest(b)
	require.NoError(t, err)
	assert.Equal(t, RequestVersion+5, got.Version)
}

func TestRequestWrongDiscriminator(t *testing.T) {
	b := fullRequest().Encode()
	b.SetAction("com.example.OTHER")

	_, err := DecodeRunUnitRequest(b)
	assert.ErrorIs(t, err, envelope.ErrNotApplicable)
	assert.False(t, errors.Is(err, envelope.ErrMissingOrInvalidField))

	_, err = DecodeRunUnitRequest(nil)
	assert.ErrorIs(t, err, envelope.ErrNotApplicable)
}

func TestAssetLocator(t *testing.T) {
	req := NewRunUnitRequest("u1", "r1", "l1", "s1", "prod", nil, nil, Ptr("content://com.example.host/assets/run-1"))

	got, err := req.AssetLocator("intro.mp3")
	require.NoError(t, err)
	assert.Equal(t, "content://com.example.host/assets/run-1/intro.mp3", got)

	got, err = req.AssetLocator("img/a b.png")
	require.NoError(t, err)
	assert.Equal(t, "content://com.example.host/assets/run-1/img%2Fa%20b.png", got)

	req.AssetsBaseLocator = Ptr("content://com.example.host/")
	got, err = req.AssetLocator("x")
	require.NoError(t, err)
	assert.Equal(t, "content://com.example.host/x", got)

	req.AssetsBaseLocator = nil
	_, err = req.AssetLocator("x")
	assert.ErrorIs(t, err, ErrNoAssets)
}
