package warehouse

import "github.com/ClusterCockpit/cc-pipeline/internal/cclog"

// FieldType is the scalar (or struct) type a schema field carries, modeled
// on the BigQuery table-field types the original mapper translated into
// protobuf field types.
type FieldType int

const (
	// TypeUnspecified marks a field whose type this schema does not know
	// how to encode. NewSchema drops fields of this type with a warning
	// rather than assigning them a tag.
	TypeUnspecified FieldType = iota
	TypeInt64
	TypeDouble
	TypeBool
	TypeBytes
	// TypeString and the date/time/decimal/geography/JSON family below
	// all serialise as strings on the wire (spec.md §4.B).
	TypeString
	TypeDate
	TypeTime
	TypeDatetime
	TypeTimestamp
	TypeNumeric
	TypeBignumeric
	TypeGeography
	TypeJSON
	// TypeInterval has no wire representation yet; fields of this type
	// are accepted by the schema but contribute nothing at encode time.
	TypeInterval
	// TypeStruct fields are encoded as a length-delimited sub-message
	// produced by recursively encoding Sub.
	TypeStruct
)

// known reports whether t is a type NewSchema will accept.
func known(t FieldType) bool {
	return t >= TypeInt64 && t <= TypeStruct
}

// FieldDef describes one field of a schema as declared by the caller,
// before tag assignment. Fields is only meaningful when Type is
// TypeStruct.
type FieldDef struct {
	Name   string
	Type   FieldType
	Fields []FieldDef
}

// Field is a built schema field: its wire tag (assigned 1..N in schema
// declaration order among the fields NewSchema keeps) and, for TypeStruct,
// the nested Schema describing its sub-message.
type Field struct {
	Name string
	Type FieldType
	Tag  int
	Sub  *Schema
}

// Schema is the binary descriptor plus field table NewSchema builds from a
// field-definition tree: a name, the ordered list of kept fields (tags
// 1..N), and a lookup by field name for the encoder.
type Schema struct {
	Name   string
	Fields []Field
	byName map[string]*Field
}

// NewSchema builds a Schema from name and defs. Fields whose type NewSchema
// does not recognise are logged and skipped entirely — they are not written
// to the descriptor and are not reachable at encode time, even if the input
// record later carries a matching key. Tags are assigned 1..N in
// declaration order counting only the fields that are kept, matching
// spec.md §4.B and §6.
func NewSchema(name string, defs []FieldDef) *Schema {
	s := &Schema{Name: name, byName: map[string]*Field{}}
	tag := 1
	for _, def := range defs {
		if !known(def.Type) {
			cclog.Warnf("[WAREHOUSE]> schema %q: field %q has unknown type, skipping", name, def.Name)
			continue
		}
		f := Field{Name: def.Name, Type: def.Type, Tag: tag}
		if def.Type == TypeStruct {
			f.Sub = NewSchema(def.Name, def.Fields)
		}
		s.Fields = append(s.Fields, f)
		tag++
	}
	for i := range s.Fields {
		s.byName[s.Fields[i].Name] = &s.Fields[i]
	}
	return s
}

// Field looks up a field by name, reporting ok=false for a name the schema
// does not carry (either never declared, or declared with an unknown type
// and dropped at build time).
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}
