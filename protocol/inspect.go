package protocol

import (
	"errors"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

// EnvelopeKind names the schema a bag was decoded with.
type EnvelopeKind string

const (
	KindRunRequest      EnvelopeKind = "run_request"
	KindRunResult       EnvelopeKind = "run_result"
	KindDiscoveryQuery  EnvelopeKind = "discovery_query"
	KindDiscoveryResult EnvelopeKind = "discovery_result"
	KindDataEvent       EnvelopeKind = "data_event"
)

// ErrUnrecognizedBag is returned by Inspect when no schema claims the bag.
var ErrUnrecognizedBag = errors.New("bag matches no known envelope")

// Envelope is a decoded bag of any kind.
type Envelope struct {
	Kind      EnvelopeKind     `json:"kind"`
	Request   *RunUnitRequest  `json:"request,omitempty"`
	Result    *RunUnitResult   `json:"result,omitempty"`
	Discovery *DiscoveryResult `json:"discovery,omitempty"`
	Event     *DataEvent       `json:"event,omitempty"`
}

// Inspect tries each schema in turn. Routed bags are matched by their
// discriminator; bags returned to the sender carry no discriminator and are
// matched by their keys. When a schema claims the bag but validation fails,
// the kind is still reported alongside the error.
func Inspect(b *bag.Bag) (Envelope, error) {
	if b == nil {
		return Envelope{}, ErrUnrecognizedBag
	}

	req, err := DecodeRunUnitRequest(b)
	switch {
	case err == nil:
		return Envelope{Kind: KindRunRequest, Request: &req}, nil
	case !errors.Is(err, envelope.ErrNotApplicable):
		return Envelope{Kind: KindRunRequest}, err
	}

	ev, err := DecodeDataEvent(b)
	switch {
	case err == nil:
		return Envelope{Kind: KindDataEvent, Event: &ev}, nil
	case !errors.Is(err, envelope.ErrNotApplicable):
		return Envelope{Kind: KindDataEvent}, err
	}

	if IsDiscoveryQuery(b) {
		return Envelope{Kind: KindDiscoveryQuery}, nil
	}

	if b.Has(KeyUnitIDs) {
		res, err := DecodeDiscoveryResult(b)
		if err != nil {
			return Envelope{Kind: KindDiscoveryResult}, err
		}
		return Envelope{Kind: KindDiscoveryResult, Discovery: &res}, nil
	}

	if b.Has(KeyResultType) || b.Has(KeyForegroundDurationMs) {
		res, err := DecodeRunUnitResult(b)
		if err != nil {
			return Envelope{Kind: KindRunResult}, err
		}
		return Envelope{Kind: KindRunResult, Result: &res}, nil
	}

	return Envelope{}, ErrUnrecognizedBag
}
