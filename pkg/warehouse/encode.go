package warehouse

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

// Wire types, following the protobuf-flavoured framing the original
// GBQ sink's encode_field built on top of (prost's wire encoding), without
// pulling in a full protobuf codec: a scalar field is a (tag, wiretype)
// varint key followed by either a fixed 8-byte payload (double), a varint
// payload (int64, bool), or a varint-length-prefixed payload (everything
// serialised as a string, plus raw bytes and nested struct messages).
const (
	wireVarint          = 0
	wireFixed64         = 1
	wireLengthDelimited = 2
)

// Encode maps rec against s: for every (key, value) pair in rec whose key
// names a field s knows, the field is written tagged by its schema-assigned
// wire tag. Keys in rec that s does not recognise are dropped silently,
// matching spec.md §4.B. Fields are visited in schema declaration order
// (ascending tag) rather than map iteration order, so the output is
// deterministic for a given schema and record.
func Encode(s *Schema, rec value.Record) ([]byte, error) {
	var buf bytes.Buffer
	for _, f := range s.Fields {
		v, present := rec[f.Name]
		if !present {
			continue
		}
		if err := encodeField(&buf, &f, v); err != nil {
			return nil, &EncodeError{Field: f.Name, Err: err}
		}
	}
	return buf.Bytes(), nil
}

func encodeField(buf *bytes.Buffer, f *Field, v value.Value) error {
	switch f.Type {
	case TypeDouble:
		n, ok := v.Float()
		if !ok {
			return fmt.Errorf("expected a float value")
		}
		writeKey(buf, f.Tag, wireFixed64)
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(n))
		buf.Write(b[:])
	case TypeInt64:
		n, ok := v.Int()
		if !ok {
			return fmt.Errorf("expected an integer value")
		}
		writeKey(buf, f.Tag, wireVarint)
		writeVarint(buf, uint64(n))
	case TypeBool:
		b, ok := v.Bool()
		if !ok {
			return fmt.Errorf("expected a bool value")
		}
		writeKey(buf, f.Tag, wireVarint)
		if b {
			writeVarint(buf, 1)
		} else {
			writeVarint(buf, 0)
		}
	case TypeBytes:
		b, ok := v.Bytes()
		if !ok {
			return fmt.Errorf("expected a bytes value")
		}
		writeKey(buf, f.Tag, wireLengthDelimited)
		writeVarint(buf, uint64(len(b)))
		buf.Write(b)
	case TypeString, TypeDate, TypeTime, TypeDatetime, TypeTimestamp,
		TypeNumeric, TypeBignumeric, TypeGeography, TypeJSON:
		str, ok := v.String()
		if !ok {
			return fmt.Errorf("expected a string value")
		}
		writeKey(buf, f.Tag, wireLengthDelimited)
		writeVarint(buf, uint64(len(str)))
		buf.WriteString(str)
	case TypeStruct:
		obj, ok := v.Object()
		if !ok {
			return fmt.Errorf("expected an object value")
		}
		sub, err := Encode(f.Sub, obj)
		if err != nil {
			return err
		}
		writeKey(buf, f.Tag, wireLengthDelimited)
		writeVarint(buf, uint64(len(sub)))
		buf.Write(sub)
	case TypeInterval:
		// No wire representation defined yet; the original left this
		// unimplemented too (see pkg/warehouse's original_source
		// grounding). Nothing is written.
	default:
		return fmt.Errorf("unreachable: field has unknown type %d past schema build", f.Type)
	}
	return nil
}

func writeKey(buf *bytes.Buffer, tag int, wireType int) {
	writeVarint(buf, uint64(tag)<<3|uint64(wireType))
}

func writeVarint(buf *bytes.Buffer, v uint64) {
	for v >= 0x80 {
		buf.WriteByte(byte(v) | 0x80)
		v >>= 7
	}
	buf.WriteByte(byte(v))
}
