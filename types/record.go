package types //nolint:revive // types is a valid package name

import (
	"fmt"
	"strconv"
)

// ValueKind discriminates the scalar held by a Value.
type ValueKind uint8

// Value kinds.
const (
	ValueFloat ValueKind = iota
	ValueInt
	ValueString
)

// String returns the lowercase kind name.
func (k ValueKind) String() string {
	switch k {
	case ValueFloat:
		return "float"
	case ValueInt:
		return "int"
	case ValueString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a single scalar attribute.
type Value struct {
	Kind ValueKind
	F    float64
	I    int64
	S    string
}

// Float returns a float Value.
func Float(v float64) Value { return Value{Kind: ValueFloat, F: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{Kind: ValueInt, I: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: ValueString, S: v} }

// Format renders the value as text. Floats use the shortest decimal
// representation that parses back to the identical float64.
func (v Value) Format() string {
	switch v.Kind {
	case ValueFloat:
		return strconv.FormatFloat(v.F, 'f', -1, 64)
	case ValueInt:
		return strconv.FormatInt(v.I, 10)
	case ValueString:
		return v.S
	default:
		return fmt.Sprintf("<invalid kind %d>", v.Kind)
	}
}

// Any returns the value as a plain Go scalar for encoders.
func (v Value) Any() any {
	switch v.Kind {
	case ValueFloat:
		return v.F
	case ValueInt:
		return v.I
	default:
		return v.S
	}
}

// Field is one named column of a schema.
type Field struct {
	Name string
	Kind ValueKind
}

// KeyFields is the number of key fields (run, event, index) leading every schema.
const KeyFields = 3

// Schema is the ordered field list produced by one analyzer.
type Schema struct {
	// Analyzer is the name of the analyzer that owns the schema.
	Analyzer string
	// Fields are the columns in emission order, key fields first.
	Fields []Field
}

// NewSchema builds a schema whose first fields are run, event and index,
// followed by attrs in order.
func NewSchema(analyzer string, attrs ...Field) Schema {
	fields := make([]Field, 0, KeyFields+len(attrs))
	fields = append(fields,
		Field{Name: "run", Kind: ValueInt},
		Field{Name: "event", Kind: ValueInt},
		Field{Name: "index", Kind: ValueInt},
	)
	fields = append(fields, attrs...)
	return Schema{Analyzer: analyzer, Fields: fields}
}

// Names returns all field names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Attributes returns the non-key fields.
func (s Schema) Attributes() []Field {
	if len(s.Fields) <= KeyFields {
		return nil
	}
	return s.Fields[KeyFields:]
}

// AttributeRecord is the flat, fixed-schema projection of one object.
// Values has one entry per schema field, key fields included.
// Records are immutable once produced.
type AttributeRecord struct {
	Run    uint64
	Event  uint64
	Index  int
	Values []Value

	// Seq is the 1-based position of the record's event in the job,
	// stamped by the driver. Zero means unassigned.
	Seq uint64
}

// Attr returns the i-th non-key value.
func (r AttributeRecord) Attr(i int) Value {
	return r.Values[KeyFields+i]
}

// Map returns the record as a name→value map using the schema's names.
func (r AttributeRecord) Map(s Schema) map[string]any {
	m := make(map[string]any, len(s.Fields))
	for i, f := range s.Fields {
		if i < len(r.Values) {
			m[f.Name] = r.Values[i].Any()
		}
	}
	return m
}
