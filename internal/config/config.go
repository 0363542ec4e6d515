// Package config loads and validates the JSON configuration for the
// pipeline manager and its connectors, modeled on the teacher's
// internal/config (read-file-then-validate-then-decode, §internal/config/
// config.go), with config.Validate's jsonschema.CompileString pattern kept
// intact (validate.go).
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
)

// Subscription names one NATS subject the line-protocol connector
// subscribes to, and the cluster tag to apply to points that don't carry
// their own "cluster" tag — mirroring the teacher's per-subscription
// cluster-tag default in internal/memorystore/lineprotocol.go.
type Subscription struct {
	SubscribeTo string `json:"subscribe-to"`
	ClusterTag  string `json:"cluster-tag"`
}

// NatsConfig configures the NATS connection backing the line-protocol
// connector, kept field-compatible with the teacher's pkg/nats/config.go.
type NatsConfig struct {
	Address       string         `json:"address"`
	Username      string         `json:"username,omitempty"`
	Password      string         `json:"password,omitempty"`
	CredsFilePath string         `json:"creds-file-path,omitempty"`
	Subscriptions []Subscription `json:"subscriptions,omitempty"`
}

// WarehouseConfig points the schema-driven encoder at a schema source and
// configures its Avro checkpoint cadence.
type WarehouseConfig struct {
	SchemaFile         string `json:"schema-file,omitempty"`
	CheckpointDir      string `json:"checkpoint-dir,omitempty"`
	CheckpointInterval string `json:"checkpoint-interval,omitempty"`
}

// Keys is the process-wide configuration, loaded by Init. ManagerDepth and
// TickIntervalMs start out at 64 and 1000ms and keep those values when the
// config file omits them. TickIntervalMs is validated, decoded and returned
// by TickInterval, but the manager does not read it: pipelines always tick
// at pipeline.DefaultTickInterval.
var Keys = struct {
	ManagerDepth     int             `json:"manager-depth,omitempty"`
	PipelineDepth    int             `json:"pipeline-depth,omitempty"`
	TickIntervalMs   int             `json:"tick-interval-ms,omitempty"`
	CreateRatePerSec float64         `json:"create-rate-per-sec,omitempty"`
	CreateBurst      int             `json:"create-burst,omitempty"`
	Nats             NatsConfig      `json:"nats,omitempty"`
	Warehouse        WarehouseConfig `json:"warehouse,omitempty"`
	MetricsAddr      string          `json:"metrics-addr,omitempty"`
}{
	ManagerDepth:     64,
	PipelineDepth:    64,
	TickIntervalMs:   1000,
	CreateRatePerSec: 10,
	CreateBurst:      5,
	MetricsAddr:      ":9090",
}

// Init reads flagConfigFile, validates it against Schema, and decodes it
// over Keys's defaults. A missing file is not an error — Keys keeps its
// compiled-in defaults, matching the teacher's "no config file, carry on
// with defaults" behaviour for its own optional settings.
func Init(flagConfigFile string) error {
	if flagConfigFile == "" {
		return nil
	}
	raw, err := os.ReadFile(flagConfigFile)
	if err != nil {
		if os.IsNotExist(err) {
			cclog.Warnf("[CONFIG]> %s not found, using defaults", flagConfigFile)
			return nil
		}
		return err
	}
	if err := Validate(Schema, raw); err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&Keys); err != nil {
		return err
	}
	return nil
}

// TickInterval returns the configured tick cadence as a time.Duration.
func TickInterval() time.Duration {
	return time.Duration(Keys.TickIntervalMs) * time.Millisecond
}
