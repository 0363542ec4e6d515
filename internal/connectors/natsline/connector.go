package natsline

import (
	"fmt"
	"time"

	"github.com/influxdata/line-protocol/v2/lineprotocol"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
	"github.com/ClusterCockpit/cc-pipeline/internal/config"
	"github.com/ClusterCockpit/cc-pipeline/internal/pipeline"
	"github.com/ClusterCockpit/cc-pipeline/pkg/value"
)

// Connector feeds a single pipeline's forward channel from one or more
// NATS subjects carrying InfluxDB line-protocol points, each line-protocol
// point becoming one pipeline.Event submitted via TrySendSafe — the
// non-blocking, overflow-buffered path (spec.md §5 "Producers call
// try_send_safe").
type Connector struct {
	client *Client
	addr   *pipeline.Address
	port   string
}

// NewConnector dials cfg and returns a Connector that will deliver decoded
// points into addr's port input port.
func NewConnector(cfg config.NatsConfig, addr *pipeline.Address, port string) (*Connector, error) {
	client, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Connector{client: client, addr: addr, port: port}, nil
}

// Start subscribes to every configured subscription. Each message is
// decoded and forwarded synchronously within the NATS client's own
// dispatch goroutine — TrySendSafe never blocks it, so a slow pipeline
// cannot stall NATS message delivery for other subjects.
func (c *Connector) Start(subs []config.Subscription) error {
	for _, sc := range subs {
		clusterTag := sc.ClusterTag
		subject := sc.SubscribeTo
		err := c.client.Subscribe(subject, func(_ string, data []byte) {
			dec := lineprotocol.NewDecoderWithBytes(data)
			if err := c.decodeAndForward(dec, clusterTag); err != nil {
				cclog.Errorf("[NATSLINE]> decode error on %q: %v", subject, err)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close tears down the underlying NATS connection.
func (c *Connector) Close() {
	c.client.Close()
}

// decodeAndForward walks every line-protocol point in dec, builds a
// pipeline.Event per point, and submits it via TrySendSafe. Grounded on
// internal/memorystore/lineprotocol.go's DecodeLine loop structure,
// trimmed of the Level-tree write path (this connector has no storage
// concern of its own — the executable graph downstream decides what to do
// with the event).
func (c *Connector) decodeAndForward(dec *lineprotocol.Decoder, clusterDefault string) error {
	t := time.Now()
	for dec.Next() {
		rawMeasurement, err := dec.Measurement()
		if err != nil {
			return err
		}
		measurement := string(rawMeasurement)

		tags := value.Record{}
		cluster, host := clusterDefault, ""
		for {
			key, val, err := dec.NextTag()
			if err != nil {
				return err
			}
			if key == nil {
				break
			}
			sk, sv := string(key), string(val)
			tags.Set(sk, sv)
			switch sk {
			case "cluster":
				cluster = sv
			case "hostname", "host":
				host = sv
			}
		}

		fields := value.Record{}
		for {
			key, val, err := dec.NextField()
			if err != nil {
				return err
			}
			if key == nil {
				break
			}
			switch val.Kind() {
			case lineprotocol.Float:
				fields.Set(string(key), val.FloatV())
			case lineprotocol.Int:
				fields.Set(string(key), val.IntV())
			case lineprotocol.Uint:
				fields.Set(string(key), val.UintV())
			case lineprotocol.String:
				fields.Set(string(key), val.StringV())
			case lineprotocol.Bool:
				fields.Set(string(key), val.BoolV())
			default:
				return fmt.Errorf("host %s: unsupported field value kind: %s", host, val.Kind())
			}
		}

		if nt, err := dec.Time(lineprotocol.Nanosecond, t); err == nil {
			t = nt
		}

		rec := value.Record{}
		rec.Set("measurement", measurement)
		rec.Set("cluster", cluster)
		rec.Set("host", host)
		rec.Set("tags", tags)
		rec.Set("fields", fields)

		ev := pipeline.Event{IngestNs: t.UnixNano(), Payload: rec}
		if err := c.addr.TrySendSafe(c.port, ev); err != nil {
			return fmt.Errorf("host %s: forwarding decoded point: %w", host, err)
		}
	}
	return nil
}
