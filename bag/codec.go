package bag

import (
	"bytes"
	"encoding/json"
	"fmt"

	cbor "github.com/fxamacker/cbor/v2"
)

// Content types understood by Unmarshal.
const (
	ContentJSON = "application/json"
	ContentCBOR = "application/cbor"
)

var (
	cborEnc cbor.EncMode
	cborDec cbor.DecMode
)

func init() {
	var err error
	if cborEnc, err = cbor.CanonicalEncOptions().EncMode(); err != nil {
		panic(fmt.Sprintf("bag: cbor encoder: %v", err))
	}
	if cborDec, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(fmt.Sprintf("bag: cbor decoder: %v", err))
	}
}

// wireBag is the serialized form shared by the JSON and CBOR encodings.
type wireBag struct {
	Action     string           `json:"action,omitempty" cbor:"action,omitempty"`
	Categories []string         `json:"categories,omitempty" cbor:"categories,omitempty"`
	Data       *string          `json:"data,omitempty" cbor:"data,omitempty"`
	Target     *Target          `json:"target,omitempty" cbor:"target,omitempty"`
	Extras     map[string]Value `json:"extras" cbor:"extras"`
}

type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type cborValue struct {
	Type  string          `cbor:"type"`
	Value cbor.RawMessage `cbor:"value,omitempty"`
}

func (b *Bag) wire() wireBag {
	w := wireBag{
		Action:     b.action,
		Categories: b.Categories(),
		Data:       b.data,
		Target:     b.target,
		Extras:     b.values,
	}
	if w.Extras == nil {
		w.Extras = map[string]Value{}
	}
	return w
}

func (b *Bag) fromWire(w wireBag) {
	b.action = w.Action
	b.categories = w.Categories
	b.data = w.Data
	b.target = w.Target
	b.values = w.Extras
	if b.values == nil {
		b.values = make(map[string]Value)
	}
}

// MarshalJSON encodes the bag with explicitly tagged values so that int, long
// and float survive a JSON round trip.
func (b *Bag) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.wire())
}

func (b *Bag) UnmarshalJSON(data []byte) error {
	var w wireBag
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	b.fromWire(w)
	return nil
}

// MarshalCBOR encodes the bag using canonical CBOR.
func (b *Bag) MarshalCBOR() ([]byte, error) {
	return cborEnc.Marshal(b.wire())
}

func (b *Bag) UnmarshalCBOR(data []byte) error {
	var w wireBag
	if err := cborDec.Unmarshal(data, &w); err != nil {
		return err
	}
	b.fromWire(w)
	return nil
}

// Unmarshal decodes a serialized bag, detecting JSON by its leading brace and
// treating anything else as CBOR.
func Unmarshal(data []byte) (*Bag, error) {
	b := New("")
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := b.UnmarshalJSON(trimmed); err != nil {
			return nil, fmt.Errorf("decode json bag: %w", err)
		}
		return b, nil
	}
	if err := b.UnmarshalCBOR(data); err != nil {
		return nil, fmt.Errorf("decode cbor bag: %w", err)
	}
	return b, nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	out := jsonValue{Type: v.kind.String()}
	if v.kind != KindNull {
		raw, err := json.Marshal(v.Raw())
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return json.Marshal(out)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var in jsonValue
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	return v.decode(in.Type, len(in.Value) > 0, func(dst any) error {
		return json.Unmarshal(in.Value, dst)
	})
}

func (v Value) MarshalCBOR() ([]byte, error) {
	out := cborValue{Type: v.kind.String()}
	if v.kind != KindNull {
		raw, err := cborEnc.Marshal(v.Raw())
		if err != nil {
			return nil, err
		}
		out.Value = raw
	}
	return cborEnc.Marshal(out)
}

func (v *Value) UnmarshalCBOR(data []byte) error {
	var in cborValue
	if err := cborDec.Unmarshal(data, &in); err != nil {
		return err
	}
	return v.decode(in.Type, len(in.Value) > 0, func(dst any) error {
		return cborDec.Unmarshal(in.Value, dst)
	})
}

func (v *Value) decode(typ string, hasValue bool, unmarshal func(any) error) error {
	kind, ok := ParseKind(typ)
	if !ok {
		return fmt.Errorf("bag: unknown value type %q", typ)
	}
	if kind == KindNull {
		*v = Null()
		return nil
	}
	if !hasValue {
		return fmt.Errorf("bag: %s value is missing", kind)
	}
	var err error
	switch kind {
	case KindString:
		var s string
		if err = unmarshal(&s); err == nil {
			*v = String(s)
		}
	case KindInt:
		var i int32
		if err = unmarshal(&i); err == nil {
			*v = Int(i)
		}
	case KindLong:
		var i int64
		if err = unmarshal(&i); err == nil {
			*v = Long(i)
		}
	case KindFloat:
		var f float32
		if err = unmarshal(&f); err == nil {
			*v = Float(f)
		}
	case KindBool:
		var f bool
		if err = unmarshal(&f); err == nil {
			*v = Bool(f)
		}
	case KindStringList:
		var list []string
		if err = unmarshal(&list); err == nil {
			*v = StringList(list)
		}
	}
	if err != nil {
		return fmt.Errorf("bag: decode %s value: %w", kind, err)
	}
	return nil
}
