package protocol

import (
	"github.com/xiaot623/gogo/unitlink/bag"
	"github.com/xiaot623/gogo/unitlink/envelope"
)

// NewDiscoveryQuery builds a query asking the application registered for
// action which units it can run. The query carries no payload.
func NewDiscoveryQuery(action string) *bag.Bag {
	b := bag.New(action)
	b.AddCategory(QueryUnitIDsCategory)
	return b
}

// IsDiscoveryQuery reports whether b carries the discovery category.
func IsDiscoveryQuery(b *bag.Bag) bool {
	return b != nil && b.HasCategory(QueryUnitIDsCategory)
}

// DiscoveryResult lists the units an application can run. The wire form has
// no nil list, so the zero value encodes as an empty list and decodes back
// with a non-nil, empty UnitIDs. Build values with NewDiscoveryResult to keep
// that normal form in memory too.
type DiscoveryResult struct {
	UnitIDs []string `json:"unit_ids"`
}

// NewDiscoveryResult copies ids; a nil slice becomes an empty list.
func NewDiscoveryResult(ids []string) DiscoveryResult {
	cp := make([]string, len(ids))
	copy(cp, ids)
	return DiscoveryResult{UnitIDs: cp}
}

// Encode always writes the list key, even for an empty or nil list.
func (r DiscoveryResult) Encode() *bag.Bag {
	b := bag.New("")
	envelope.PutRequired(b, KeyUnitIDs, bag.StringList(r.UnitIDs))
	return b
}

// DecodeDiscoveryResult returns the listed IDs, or an empty list when the
// key is absent. Unlike result items there is no separate "no list" state.
func DecodeDiscoveryResult(b *bag.Bag) (DiscoveryResult, error) {
	if b == nil {
		return DiscoveryResult{}, envelope.ErrNotApplicable
	}
	d := envelope.NewDecoder("discovery result", b)
	ids := d.OptionalStringList(KeyUnitIDs)
	if err := d.Err(); err != nil {
		return DiscoveryResult{}, err
	}
	return NewDiscoveryResult(ids), nil
}
