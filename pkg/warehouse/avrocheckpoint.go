package warehouse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/linkedin/goavro/v2"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

// avroField mirrors the teacher's AvroField (internal/avro/avroStruct.go):
// a minimal {name, type, default} triple sufficient to round-trip through
// goavro.
type avroField struct {
	Name    string `json:"name"`
	Type    any    `json:"type"`
	Default any    `json:"default,omitempty"`
}

type avroRecordSchema struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// avroType maps a warehouse FieldType to the Avro primitive (or nested
// record) type used when deriving a schema for the checkpoint codec.
// Date/time/decimal/geography/JSON fields serialise as Avro "string",
// matching how they serialise on the primary wire encoding (schema.go).
func avroType(f *Field) any {
	switch f.Type {
	case TypeInt64:
		return "long"
	case TypeDouble:
		return "double"
	case TypeBool:
		return "boolean"
	case TypeBytes:
		return "bytes"
	case TypeStruct:
		return deriveAvroSchema(f.Sub)
	default:
		return "string"
	}
}

// deriveAvroSchema builds an Avro record schema for s, recursively
// expanding TypeStruct fields into nested Avro records. The result is
// marshaled to the JSON string goavro.NewCodec expects.
func deriveAvroSchema(s *Schema) avroRecordSchema {
	out := avroRecordSchema{Type: "record", Name: s.Name}
	for i := range s.Fields {
		out.Fields = append(out.Fields, avroField{
			Name: s.Fields[i].Name,
			Type: avroType(&s.Fields[i]),
		})
	}
	return out
}

// Checkpointer periodically snapshots buffered warehouse-bound records to
// Avro binary, grounded on internal/avro's DataStaging select-loop
// (buffer-on-channel, flush-on-tick) and internal/memorystore's
// avroCheckpoint.go ToCheckpoint (OCF-file-per-interval-with-deflate
// compression). Unlike the teacher's leveled, selector-keyed store, a
// Checkpointer buffers the flat records a warehouse sink already encodes
// with Encode — the schema the two share is the same *Schema.
type Checkpointer struct {
	schema *Schema
	dir    string

	in       chan value.Record
	interval time.Duration
}

// NewCheckpointer builds a Checkpointer that writes Avro OCF files under
// dir, deriving its Avro schema from s. bufferSize is the capacity of the
// channel between Submit and Run; Submit drops a record when that channel
// is full. Records Run has already taken off the channel are held until the
// next flush with no bound on their number.
func NewCheckpointer(s *Schema, dir string, interval time.Duration, bufferSize int) (*Checkpointer, error) {
	schemaJSON, err := json.Marshal(deriveAvroSchema(s))
	if err != nil {
		return nil, fmt.Errorf("warehouse: deriving avro schema for %q: %w", s.Name, err)
	}
	if _, err := goavro.NewCodec(string(schemaJSON)); err != nil {
		return nil, fmt.Errorf("warehouse: avro schema for %q is not valid: %w", s.Name, err)
	}
	return &Checkpointer{
		schema:   s,
		dir:      dir,
		in:       make(chan value.Record, bufferSize),
		interval: interval,
	}, nil
}

// Submit enqueues rec for the next flush. A full buffer drops the record
// and logs a warning rather than blocking the caller — this is a
// best-effort checkpoint path, not the primary delivery guarantee.
func (c *Checkpointer) Submit(rec value.Record) {
	select {
	case c.in <- rec:
	default:
		cclog.Warnf("[WAREHOUSE]> checkpointer %q: buffer full, dropping record", c.schema.Name)
	}
}

// Run drives the flush loop until ctx is cancelled, matching
// internal/avro's DataStaging shape: a select over a ticker and an input
// channel, buffering records between ticks.
func (c *Checkpointer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var buffered []value.Record
	for {
		select {
		case <-ctx.Done():
			if len(buffered) > 0 {
				if err := c.flush(buffered); err != nil {
					cclog.Errorf("[WAREHOUSE]> checkpointer %q: final flush: %v", c.schema.Name, err)
				}
			}
			return
		case rec := <-c.in:
			buffered = append(buffered, rec)
		case <-ticker.C:
			if len(buffered) == 0 {
				continue
			}
			if err := c.flush(buffered); err != nil {
				cclog.Errorf("[WAREHOUSE]> checkpointer %q: flush: %v", c.schema.Name, err)
			}
			buffered = nil
		}
	}
}

func (c *Checkpointer) flush(records []value.Record) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint dir: %w", err)
	}
	path := filepath.Join(c.dir, fmt.Sprintf("%s_%d.avro", c.schema.Name, time.Now().UnixNano()))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("opening checkpoint file: %w", err)
	}
	defer f.Close()

	schemaJSON, err := json.Marshal(deriveAvroSchema(c.schema))
	if err != nil {
		return fmt.Errorf("marshaling avro schema: %w", err)
	}
	codec, err := goavro.NewCodec(string(schemaJSON))
	if err != nil {
		return fmt.Errorf("building avro codec: %w", err)
	}

	w := bufio.NewWriter(f)
	writer, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:               w,
		Codec:           codec,
		CompressionName: goavro.CompressionDeflateLabel,
	})
	if err != nil {
		return fmt.Errorf("building OCF writer: %w", err)
	}

	native := make([]any, 0, len(records))
	for _, rec := range records {
		native = append(native, toAvroNative(c.schema, rec))
	}
	if err := writer.Append(native); err != nil {
		return fmt.Errorf("appending records: %w", err)
	}
	return w.Flush()
}

// toAvroNative converts a value.Record into the map[string]any shape
// goavro expects, limited to the fields s declares (mirroring Encode's
// "unknown input keys are dropped silently" rule).
func toAvroNative(s *Schema, rec value.Record) map[string]any {
	out := make(map[string]any, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		v, ok := rec[f.Name]
		if !ok {
			continue
		}
		switch f.Type {
		case TypeStruct:
			if obj, ok := v.Object(); ok {
				out[f.Name] = toAvroNative(f.Sub, obj)
			}
		case TypeInt64:
			if n, ok := v.Int(); ok {
				out[f.Name] = n
			}
		case TypeDouble:
			if n, ok := v.Float(); ok {
				out[f.Name] = n
			}
		case TypeBool:
			if b, ok := v.Bool(); ok {
				out[f.Name] = b
			}
		case TypeBytes:
			if b, ok := v.Bytes(); ok {
				out[f.Name] = b
			}
		default:
			if str, ok := v.String(); ok {
				out[f.Name] = str
			}
		}
	}
	return out
}
