package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

// RecordEventAction routes a data event to the application that stores
// analytics for running units.
const RecordEventAction = "com.eidu.integration.dataservice.RECORD_EVENT"

// EventVersion is the data event envelope version written by this build.
const EventVersion = 1

// Data event keys
const (
	KeyEventID           = "id"
	KeyEventSegmentation = "segmentation"
	KeyEventTime         = "time"
	KeyEventDuration     = "duration"
)

// errSegmentationNotObject is the cause recorded when the segmentation text
// parses but is not a JSON object.
var errSegmentationNotObject = errors.New("segmentation is not a JSON object")

// DataEvent is one analytics event reported by a running unit.
type DataEvent struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	// Segmentation is the JSON object text describing the event.
	Segmentation string `json:"segmentation"`
	// TimeMs is when the event happened, in milliseconds since the epoch.
	TimeMs     int64 `json:"time_ms"`
	DurationMs int64 `json:"duration_ms"`
}

// NewDataEvent renders segmentation as JSON object text. A nil map becomes
// "{}". Values that encoding/json cannot render are an error.
func NewDataEvent(id string, segmentation map[string]any, timeMs, durationMs int64) (DataEvent, error) {
	if segmentation == nil {
		segmentation = map[string]any{}
	}
	data, err := json.Marshal(segmentation)
	if err != nil {
		return DataEvent{}, fmt.Errorf("encode segmentation: %w", err)
	}
	return DataEvent{
		Version:      EventVersion,
		ID:           id,
		Segmentation: string(data),
		TimeMs:       timeMs,
		DurationMs:   durationMs,
	}, nil
}

// Segments parses the segmentation text back into a map.
func (e DataEvent) Segments() (map[string]any, error) {
	return parseSegmentation(e.Segmentation)
}

// Encode writes the event into a new bag routed by RecordEventAction.
func (e DataEvent) Encode() *bag.Bag {
	b := bag.New(RecordEventAction)
	envelope.StampVersion(b, e.Version)
	envelope.PutRequired(b, KeyEventID, bag.String(e.ID))
	envelope.PutRequired(b, KeyEventSegmentation, bag.String(e.Segmentation))
	envelope.PutRequired(b, KeyEventTime, bag.Long(e.TimeMs))
	envelope.PutRequired(b, KeyEventDuration, bag.Long(e.DurationMs))
	return b
}

// DecodeDataEvent reads an event from b. It returns envelope.ErrNotApplicable
// when b is routed elsewhere. Every missing or invalid field, including a
// segmentation that is not a JSON object, is reported in one
// *envelope.ValidationError.
func DecodeDataEvent(b *bag.Bag) (DataEvent, error) {
	if b == nil || b.Action() != RecordEventAction {
		return DataEvent{}, envelope.ErrNotApplicable
	}

	d := envelope.NewDecoder("data event", b)
	e := DataEvent{
		Version:      d.Version(EventVersion),
		ID:           d.RequiredString(KeyEventID),
		Segmentation: d.RequiredString(KeyEventSegmentation),
		TimeMs:       d.RequiredLong(KeyEventTime),
		DurationMs:   d.RequiredLong(KeyEventDuration),
	}
	if e.Segmentation != "" {
		if _, err := parseSegmentation(e.Segmentation); err != nil {
			d.Add(&envelope.FieldError{Key: KeyEventSegmentation, Reason: envelope.ReasonMalformed, Raw: e.Segmentation, Cause: err})
		}
	}
	d.Add(envelope.NonNegative(KeyEventTime, &e.TimeMs))
	d.Add(envelope.NonNegative(KeyEventDuration, &e.DurationMs))
	if err := d.Err(); err != nil {
		return DataEvent{}, err
	}
	return e, nil
}

func parseSegmentation(text string) (map[string]any, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errSegmentationNotObject
	}
	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, err
	}
	return m, nil
}
