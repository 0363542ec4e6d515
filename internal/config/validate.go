package config

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate compiles schema and checks instance against it, mirroring the
// teacher's internal/config/validate.go. Unlike the teacher, which calls
// cclog.Fatalf on any failure (config errors are always startup-fatal
// there), this returns an error: a library-shaped API should let its
// caller decide whether a bad config is fatal.
func Validate(schema string, instance json.RawMessage) error {
	sch, err := jsonschema.CompileString("schema.json", schema)
	if err != nil {
		return fmt.Errorf("config: compiling schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(instance, &v); err != nil {
		return fmt.Errorf("config: parsing instance: %w", err)
	}

	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("config: validating instance: %w", err)
	}
	return nil
}
