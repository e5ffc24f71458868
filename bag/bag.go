// Package bag provides the typed key-value container that carries envelopes
// between applications.
//
// A Bag mirrors what the host platform hands across an application boundary:
// an action and a set of categories used for routing, an optional side-channel
// data locator, an optional explicit target for direct dispatch, and a map of
// named, typed values. A Bag is not safe for concurrent mutation; it is filled
// by one writer and then handed off.
package bag

import "sort"

// Target names an explicit receiver for direct dispatch.
type Target struct {
	Package string `json:"package" cbor:"package"`
	Class   string `json:"class" cbor:"class"`
}

// Bag is a routed set of typed values.
type Bag struct {
	action     string
	categories []string
	data       *string
	target     *Target
	values     map[string]Value
}

// New returns an empty bag with the given action. An empty action is valid
// for bags routed back to the sender.
func New(action string) *Bag {
	return &Bag{action: action, values: make(map[string]Value)}
}

func (b *Bag) Action() string { return b.action }

func (b *Bag) SetAction(action string) { b.action = action }

// Categories returns a copy of the bag's categories in insertion order.
func (b *Bag) Categories() []string {
	if len(b.categories) == 0 {
		return nil
	}
	cp := make([]string, len(b.categories))
	copy(cp, b.categories)
	return cp
}

// AddCategory adds category unless it is already present.
func (b *Bag) AddCategory(category string) {
	if b.HasCategory(category) {
		return
	}
	b.categories = append(b.categories, category)
}

func (b *Bag) HasCategory(category string) bool {
	for _, c := range b.categories {
		if c == category {
			return true
		}
	}
	return false
}

// Data returns the side-channel locator, if any.
func (b *Bag) Data() (string, bool) {
	if b.data == nil {
		return "", false
	}
	return *b.data, true
}

func (b *Bag) SetData(locator string) { b.data = &locator }

func (b *Bag) ClearData() { b.data = nil }

// Target returns the explicit receiver, if any.
func (b *Bag) Target() (Target, bool) {
	if b.target == nil {
		return Target{}, false
	}
	return *b.target, true
}

func (b *Bag) SetTarget(t Target) { b.target = &t }

// Put stores v under key, replacing any previous value.
func (b *Bag) Put(key string, v Value) {
	if b.values == nil {
		b.values = make(map[string]Value)
	}
	b.values[key] = v
}

// Get returns the value stored under key. A stored null marker is returned
// with ok set; callers decide how to interpret it.
func (b *Bag) Get(key string) (Value, bool) {
	v, ok := b.values[key]
	return v, ok
}

func (b *Bag) Has(key string) bool {
	_, ok := b.values[key]
	return ok
}

func (b *Bag) Delete(key string) { delete(b.values, key) }

// Keys returns the stored keys in sorted order.
func (b *Bag) Keys() []string {
	keys := make([]string, 0, len(b.values))
	for k := range b.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Bag) Len() int { return len(b.values) }

// Clone returns a deep copy of the bag.
func (b *Bag) Clone() *Bag {
	out := New(b.action)
	out.categories = b.Categories()
	if b.data != nil {
		out.SetData(*b.data)
	}
	if b.target != nil {
		out.SetTarget(*b.target)
	}
	for k, v := range b.values {
		if v.kind == KindStringList {
			v = StringList(v.list)
		}
		out.values[k] = v
	}
	return out
}

// Equal reports whether two bags carry the same routing and values.
func (b *Bag) Equal(o *Bag) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.action != o.action || len(b.categories) != len(o.categories) || len(b.values) != len(o.values) {
		return false
	}
	for i := range b.categories {
		if b.categories[i] != o.categories[i] {
			return false
		}
	}
	bd, bok := b.Data()
	od, ook := o.Data()
	if bok != ook || bd != od {
		return false
	}
	bt, bok := b.Target()
	ot, ook := o.Target()
	if bok != ook || bt != ot {
		return false
	}
	for k, v := range b.values {
		ov, ok := o.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}
