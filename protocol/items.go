package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xiaot623/gogo/unitlink/envelope"
)

// itemsNull is written when a result carries no item list at all.
const itemsNull = "null"

// ResultItem is one interaction within a run. Every field is optional
// because not every kind of unit can fill every field.
type ResultItem struct {
	ID                  *string  `json:"id,omitempty"`
	Completed           *bool    `json:"completed,omitempty"`
	Challenge           *string  `json:"challenge,omitempty"`
	GivenResponse       *string  `json:"givenResponse,omitempty"`
	CorrectResponse     *string  `json:"correctResponse,omitempty"`
	Score               *float32 `json:"score,omitempty"`
	DurationMs          *int64   `json:"durationInMs,omitempty"`
	TimeToFirstActionMs *int64   `json:"timeToFirstActionInMs,omitempty"`
}

// EncodeItems renders items for the items key. A nil slice becomes the
// literal "null"; an empty slice becomes "[]". Absent item fields are left
// out of each object rather than written as JSON null.
func EncodeItems(items []ResultItem) (string, error) {
	if items == nil {
		return itemsNull, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(data), nil
}

// DecodeItems parses the items key. The empty string and "null" decode to a
// nil slice. Anything that is not a JSON array of objects wraps
// envelope.ErrMalformedItemList. Object keys match byte for byte; keys that
// differ only in case, like any other unknown key, are ignored.
func DecodeItems(text string) ([]ResultItem, error) {
	if text == "" || text == itemsNull {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", envelope.ErrMalformedItemList, err)
	}
	if raw == nil {
		// a padded "null" literal
		return nil, nil
	}
	items := make([]ResultItem, 0, len(raw))
	for i, elem := range raw {
		if isNull(elem) {
			return nil, fmt.Errorf("%w: item %d is null", envelope.ErrMalformedItemList, i)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", envelope.ErrMalformedItemList, i, err)
		}
		item, err := decodeItem(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", envelope.ErrMalformedItemList, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeItem reads the item keys from obj. encoding/json folds case when
// matching struct tags, so the object is read key by key instead.
func decodeItem(obj map[string]json.RawMessage) (ResultItem, error) {
	var (
		item ResultItem
		err  error
	)
	if item.ID, err = itemField[string](obj, "id"); err != nil {
		return item, err
	}
	if item.Completed, err = itemField[bool](obj, "completed"); err != nil {
		return item, err
	}
	if item.Challenge, err = itemField[string](obj, "challenge"); err != nil {
		return item, err
	}
	if item.GivenResponse, err = itemField[string](obj, "givenResponse"); err != nil {
		return item, err
	}
	if item.CorrectResponse, err = itemField[string](obj, "correctResponse"); err != nil {
		return item, err
	}
	if item.Score, err = itemField[float32](obj, "score"); err != nil {
		return item, err
	}
	if item.DurationMs, err = itemField[int64](obj, "durationInMs"); err != nil {
		return item, err
	}
	if item.TimeToFirstActionMs, err = itemField[int64](obj, "timeToFirstActionInMs"); err != nil {
		return item, err
	}
	return item, nil
}

// itemField returns nil for a missing key or a JSON null.
func itemField[T any](obj map[string]json.RawMessage, key string) (*T, error) {
	raw, ok := obj[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%s: %v", key, err)
	}
	return &v, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte(itemsNull))
}
