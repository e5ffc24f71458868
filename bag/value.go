package bag

// Kind identifies the type carried by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindLong
	KindFloat
	KindBool
	KindStringList
)

var kindNames = map[Kind]string{
	KindNull:       "null",
	KindString:     "string",
	KindInt:        "int",
	KindLong:       "long",
	KindFloat:      "float",
	KindBool:       "bool",
	KindStringList: "string_list",
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return KindNull, false
}

// Value is a single typed entry in a Bag. The zero Value is the null marker.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float32
	flag bool
	list []string
}

// Null returns the null marker used to distinguish "written as absent" from a
// missing key. Readers treat both the same way.
func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, str: s} }

// Int stores a 32-bit integer.
func Int(i int32) Value { return Value{kind: KindInt, num: int64(i)} }

// Long stores a 64-bit integer.
func Long(i int64) Value { return Value{kind: KindLong, num: i} }

func Float(f float32) Value { return Value{kind: KindFloat, flt: f} }

func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// StringList stores a copy of list. A nil list is stored as an empty list.
func StringList(list []string) Value {
	cp := make([]string, len(list))
	copy(cp, list)
	return Value{kind: KindStringList, list: cp}
}

// Kind reports the type of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

func (v Value) AsInt() (int32, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return int32(v.num), true
}

// AsLong reads a 64-bit integer. Int values widen losslessly.
func (v Value) AsLong() (int64, bool) {
	if v.kind != KindLong && v.kind != KindInt {
		return 0, false
	}
	return v.num, true
}

func (v Value) AsFloat() (float32, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.flt, true
}

func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.flag, true
}

// AsStringList returns a copy of the list so callers cannot mutate the bag.
func (v Value) AsStringList() ([]string, bool) {
	if v.kind != KindStringList {
		return nil, false
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp, true
}

// Equal reports structural equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInt, KindLong:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt
	case KindBool:
		return v.flag == o.flag
	case KindStringList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	}
	return true
}

// Raw returns the value as a plain Go value for diagnostics.
func (v Value) Raw() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return int32(v.num)
	case KindLong:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.flag
	case KindStringList:
		list, _ := v.AsStringList()
		return list
	}
	return nil
}
