package protocol

import (
	"errors"
	"net/url"
	"strings"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

// RequestVersion is the request envelope version written by this build.
const RequestVersion = 1

// ErrNoAssets is returned when a request carries no assets base locator.
var ErrNoAssets = errors.New("request has no assets base locator")

// RunUnitRequest asks the receiving application to run one unit for a learner.
type RunUnitRequest struct {
	Version   int    `json:"version"`
	UnitID    string `json:"unit_id"`
	RunID     string `json:"run_id"`
	LearnerID string `json:"learner_id"`
	OwnerID   string `json:"owner_id"`
	Stage     string `json:"stage"`
	// RemainingForegroundTimeMs is the budget after which the run must end
	// with OutcomeTimeUp.
	RemainingForegroundTimeMs *int64 `json:"remaining_foreground_time_ms,omitempty"`
	// InactivityTimeoutMs is the budget after which the run must end with
	// OutcomeTimeoutInactivity.
	InactivityTimeoutMs *int64 `json:"inactivity_timeout_ms,omitempty"`
	// AssetsBaseLocator travels in the bag's data slot, not under a key.
	AssetsBaseLocator *string `json:"assets_base_locator,omitempty"`
}

// NewRunUnitRequest builds a request stamped with RequestVersion.
func NewRunUnitRequest(
	unitID, runID, learnerID, ownerID, stage string,
	remainingForegroundTimeMs, inactivityTimeoutMs *int64,
	assetsBaseLocator *string,
) RunUnitRequest {
	return RunUnitRequest{
		Version:                   RequestVersion,
		UnitID:                    unitID,
		RunID:                     runID,
		LearnerID:                 learnerID,
		OwnerID:                   ownerID,
		Stage:                     stage,
		RemainingForegroundTimeMs: remainingForegroundTimeMs,
		InactivityTimeoutMs:       inactivityTimeoutMs,
		AssetsBaseLocator:         assetsBaseLocator,
	}
}

// Encode writes the request into a new bag for broadcast-style dispatch.
// Absent optional fields are omitted.
func (r RunUnitRequest) Encode() *bag.Bag {
	b := bag.New(LaunchUnitAction)
	envelope.StampVersion(b, r.Version)
	envelope.PutRequired(b, KeyUnitID, bag.String(r.UnitID))
	envelope.PutRequired(b, KeyRunID, bag.String(r.RunID))
	envelope.PutRequired(b, KeyLearnerID, bag.String(r.LearnerID))
	envelope.PutRequired(b, KeyOwnerID, bag.String(r.OwnerID))
	envelope.PutRequired(b, KeyStage, bag.String(r.Stage))
	envelope.PutOptional(b, KeyRemainingForegroundTimeMs, r.RemainingForegroundTimeMs, bag.Long, envelope.OmitAbsent)
	envelope.PutOptional(b, KeyInactivityTimeoutMs, r.InactivityTimeoutMs, bag.Long, envelope.OmitAbsent)
	if r.AssetsBaseLocator != nil {
		b.SetData(*r.AssetsBaseLocator)
	}
	return b
}

// EncodeFor writes the request addressed to an explicit receiver.
func (r RunUnitRequest) EncodeFor(target bag.Target) *bag.Bag {
	b := r.Encode()
	b.SetTarget(target)
	return b
}

// DecodeRunUnitRequest reads a request from b. It returns
// envelope.ErrNotApplicable when b is routed to another schema, and a
// *envelope.ValidationError naming every missing or invalid field otherwise.
func DecodeRunUnitRequest(b *bag.Bag) (RunUnitRequest, error) {
	if b == nil || b.Action() != LaunchUnitAction {
		return RunUnitRequest{}, envelope.ErrNotApplicable
	}

	d := envelope.NewDecoder("request", b)
	r := RunUnitRequest{
		Version:                   d.Version(RequestVersion),
		UnitID:                    d.RequiredString(KeyUnitID),
		RunID:                     d.RequiredString(KeyRunID),
		LearnerID:                 d.RequiredString(KeyLearnerID),
		OwnerID:                   d.RequiredString(KeyOwnerID),
		Stage:                     d.RequiredString(KeyStage),
		RemainingForegroundTimeMs: d.OptionalLong(KeyRemainingForegroundTimeMs),
		InactivityTimeoutMs:       d.OptionalLong(KeyInactivityTimeoutMs),
	}
	d.Add(envelope.NonNegative(KeyRemainingForegroundTimeMs, r.RemainingForegroundTimeMs))
	d.Add(envelope.NonNegative(KeyInactivityTimeoutMs, r.InactivityTimeoutMs))
	if err := d.Err(); err != nil {
		return RunUnitRequest{}, err
	}

	if locator, ok := b.Data(); ok {
		r.AssetsBaseLocator = &locator
	}
	return r, nil
}

// AssetLocator appends path to the assets base locator as a single encoded
// segment, so "img/a.png" becomes ".../img%2Fa.png".
func (r RunUnitRequest) AssetLocator(path string) (string, error) {
	if r.AssetsBaseLocator == nil {
		return "", ErrNoAssets
	}
	u, err := url.Parse(*r.AssetsBaseLocator)
	if err != nil {
		return "", err
	}
	escaped := strings.TrimSuffix(u.EscapedPath(), "/") + "/" + url.PathEscape(path)
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + path
	u.RawPath = escaped
	return u.String(), nil
}
