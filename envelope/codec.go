// Package envelope holds the schema-independent encode/decode primitives used
// by every envelope carried in a bag.
//
// Getters never fail the whole decode on their own. Each returns a per-field
// *FieldError so that a schema can collect every problem in one pass and
// report them together.
package envelope

import (
	"math"

	"github.com/xiaot623/gogo/unitlink/bag"
)

// KeyVersion is stamped into every envelope.
const KeyVersion = "version"

// AbsentPolicy decides what PutOptional writes for an absent value.
type AbsentPolicy int

const (
	// OmitAbsent leaves the key out of the bag.
	OmitAbsent AbsentPolicy = iota
	// NullAbsent writes the null marker under the key.
	NullAbsent
)

// PutRequired writes v unconditionally.
func PutRequired(b *bag.Bag, key string, v bag.Value) {
	b.Put(key, v)
}

// PutOptional writes wrap(*v) when v is present and applies policy otherwise.
func PutOptional[T any](b *bag.Bag, key string, v *T, wrap func(T) bag.Value, policy AbsentPolicy) {
	if v != nil {
		b.Put(key, wrap(*v))
		return
	}
	if policy == NullAbsent {
		b.Put(key, bag.Null())
	}
}

// StampVersion writes the envelope version.
func StampVersion(b *bag.Bag, version int) {
	b.Put(KeyVersion, bag.Int(int32(version)))
}

// Version returns the stamped version, or current when the bag predates
// versioning. Newer versions are returned as-is, never rejected.
func Version(b *bag.Bag, current int) (int, *FieldError) {
	v, ok := present(b, KeyVersion)
	if !ok {
		return current, nil
	}
	n, ok := v.AsLong()
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return current, wrongType(KeyVersion, v)
	}
	return int(n), nil
}

func RequiredString(b *bag.Bag, key string) (string, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return "", &FieldError{Key: key, Reason: ReasonMissing}
	}
	s, ok := v.AsString()
	if !ok {
		return "", wrongType(key, v)
	}
	if s == "" {
		return "", &FieldError{Key: key, Reason: ReasonEmpty, Raw: s}
	}
	return s, nil
}

func RequiredLong(b *bag.Bag, key string) (int64, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return 0, &FieldError{Key: key, Reason: ReasonMissing}
	}
	n, ok := v.AsLong()
	if !ok {
		return 0, wrongType(key, v)
	}
	return n, nil
}

func RequiredFloat(b *bag.Bag, key string) (float32, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return 0, &FieldError{Key: key, Reason: ReasonMissing}
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, wrongType(key, v)
	}
	return f, nil
}

// OptionalString returns nil for an absent key or a null marker. An empty
// string is a present value.
func OptionalString(b *bag.Bag, key string) (*string, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return nil, nil
	}
	s, ok := v.AsString()
	if !ok {
		return nil, wrongType(key, v)
	}
	return &s, nil
}

func OptionalLong(b *bag.Bag, key string) (*int64, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return nil, nil
	}
	n, ok := v.AsLong()
	if !ok {
		return nil, wrongType(key, v)
	}
	return &n, nil
}

func OptionalFloat(b *bag.Bag, key string) (*float32, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return nil, nil
	}
	f, ok := v.AsFloat()
	if !ok {
		return nil, wrongType(key, v)
	}
	return &f, nil
}

// OptionalStringList returns nil for an absent key or a null marker.
func OptionalStringList(b *bag.Bag, key string) ([]string, *FieldError) {
	v, ok := present(b, key)
	if !ok {
		return nil, nil
	}
	list, ok := v.AsStringList()
	if !ok {
		return nil, wrongType(key, v)
	}
	return list, nil
}

// DecodeEnum maps raw onto one of values by exact name. Names this build does
// not know decode to unknown rather than failing, so older receivers keep
// working when a newer sender adds variants.
func DecodeEnum[E ~string](raw string, unknown E, values ...E) E {
	for _, v := range values {
		if string(v) == raw {
			return v
		}
	}
	return unknown
}

// NonNegative reports a failure when a present value is below zero.
func NonNegative(key string, n *int64) *FieldError {
	if n != nil && *n < 0 {
		return &FieldError{Key: key, Reason: ReasonNegative, Raw: *n}
	}
	return nil
}

// present treats a stored null marker exactly like a missing key.
func present(b *bag.Bag, key string) (bag.Value, bool) {
	v, ok := b.Get(key)
	if !ok || v.IsNull() {
		return bag.Value{}, false
	}
	return v, true
}

func wrongType(key string, v bag.Value) *FieldError {
	return &FieldError{Key: key, Reason: ReasonWrongType, Raw: v.Raw()}
}
