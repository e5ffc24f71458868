package envelope

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingOrInvalidField is matched by every ValidationError.
	ErrMissingOrInvalidField = errors.New("missing or invalid field")

	// ErrMalformedItemList is matched by a ValidationError whose item list
	// could not be parsed.
	ErrMalformedItemList = errors.New("malformed item list")

	// ErrNotApplicable means the bag's discriminator belongs to a different
	// schema. Callers use it to try the next schema on the same bag.
	ErrNotApplicable = errors.New("bag discriminator does not match schema")
)

// Reason classifies a field failure.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonWrongType  Reason = "wrong_type"
	ReasonEmpty      Reason = "empty"
	ReasonNegative   Reason = "negative"
	ReasonOutOfRange Reason = "out_of_range"
	ReasonMalformed  Reason = "malformed"
)

// FieldError describes one offending field.
type FieldError struct {
	Key    string `json:"key"`
	Reason Reason `json:"reason"`
	// Raw is the offending value, nil when the field was absent.
	Raw any `json:"raw,omitempty"`
	// Cause is the underlying parse error, if any.
	Cause error `json:"-"`
}

func (e *FieldError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Key)
	sb.WriteString(" (")
	sb.WriteString(string(e.Reason))
	if e.Raw != nil {
		fmt.Fprintf(&sb, ": %v", e.Raw)
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	sb.WriteString(")")
	return sb.String()
}

func (e *FieldError) Unwrap() error { return e.Cause }

// ValidationError aggregates every field failure found while decoding one bag.
type ValidationError struct {
	Schema string       `json:"schema"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i := range e.Fields {
		parts[i] = e.Fields[i].Error()
	}
	return fmt.Sprintf("invalid %s envelope: %s", e.Schema, strings.Join(parts, ", "))
}

// Is matches ErrMissingOrInvalidField always and ErrMalformedItemList when
// one of the fields failed to parse as an item list.
func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrMissingOrInvalidField:
		return true
	case ErrMalformedItemList:
		for _, f := range e.Fields {
			if f.Reason == ReasonMalformed && errors.Is(f.Cause, ErrMalformedItemList) {
				return true
			}
		}
	}
	return false
}

// Keys lists the offending field keys in the order they were found.
func (e *ValidationError) Keys() []string {
	keys := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Field returns the failure recorded for key, if any.
func (e *ValidationError) Field(key string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldError{}, false
}
