package envelope

import "github.com/xiaot623/gogo/unitlink/bag"

// Decoder reads fields from one bag and collects their failures.
type Decoder struct {
	bag    *bag.Bag
	schema string
	fields []FieldError
}

// NewDecoder returns a decoder whose aggregated error names schema.
func NewDecoder(schema string, b *bag.Bag) *Decoder {
	return &Decoder{bag: b, schema: schema}
}

// Bag returns the bag being decoded.
func (d *Decoder) Bag() *bag.Bag { return d.bag }

// Add records fe unless it is nil.
func (d *Decoder) Add(fe *FieldError) {
	if fe != nil {
		d.fields = append(d.fields, *fe)
	}
}

func (d *Decoder) Version(current int) int {
	v, fe := Version(d.bag, current)
	d.Add(fe)
	return v
}

func (d *Decoder) RequiredString(key string) string {
	s, fe := RequiredString(d.bag, key)
	d.Add(fe)
	return s
}

func (d *Decoder) RequiredLong(key string) int64 {
	n, fe := RequiredLong(d.bag, key)
	d.Add(fe)
	return n
}

func (d *Decoder) RequiredFloat(key string) float32 {
	f, fe := RequiredFloat(d.bag, key)
	d.Add(fe)
	return f
}

func (d *Decoder) OptionalString(key string) *string {
	s, fe := OptionalString(d.bag, key)
	d.Add(fe)
	return s
}

func (d *Decoder) OptionalLong(key string) *int64 {
	n, fe := OptionalLong(d.bag, key)
	d.Add(fe)
	return n
}

func (d *Decoder) OptionalFloat(key string) *float32 {
	f, fe := OptionalFloat(d.bag, key)
	d.Add(fe)
	return f
}

func (d *Decoder) OptionalStringList(key string) []string {
	list, fe := OptionalStringList(d.bag, key)
	d.Add(fe)
	return list
}

// Failed reports whether any failure has been recorded so far.
func (d *Decoder) Failed() bool { return len(d.fields) > 0 }

// Err returns a *ValidationError listing every recorded failure, or nil.
func (d *Decoder) Err() error {
	if len(d.fields) == 0 {
		return nil
	}
	fields := make([]FieldError, len(d.fields))
	copy(fields, d.fields)
	return &ValidationError{Schema: d.schema, Fields: fields}
}
