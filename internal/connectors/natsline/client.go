// Package natsline is the line-protocol-over-NATS ingest connector: it
// subscribes to configured NATS subjects, decodes each message as an
// InfluxDB line-protocol point, and forwards a pipeline.Event built from
// the decoded point onto a pipeline Address's forward channel.
//
// Grounded on the teacher's pkg/nats/client.go (connection/subscription
// management) and internal/memorystore/lineprotocol.go (ReceiveNats's
// worker-pool shape, DecodeLine's byte-oriented decode loop), adapted from
// writing into a MemoryStore to producing pipeline.Event values.
package natsline

import (
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
	"github.com/ClusterCockpit/cc-pipeline/internal/config"
)

// Client wraps a NATS connection with subscription bookkeeping, the same
// surface the teacher's pkg/nats.Client exposes, minus the package-level
// singleton (this connector is constructed explicitly by its caller rather
// than reached for through a global).
type Client struct {
	conn          *nats.Conn
	subscriptions []*nats.Subscription
	mu            sync.Mutex
}

// MessageHandler processes one received message.
type MessageHandler func(subject string, data []byte)

// Dial connects to cfg.Address with the configured auth, matching the
// teacher's NewClient option wiring (user/pass, creds file, reconnect and
// error handlers logged through cclog).
func Dial(cfg config.NatsConfig) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("natsline: NATS address is required")
	}

	var opts []nats.Option
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}
	if cfg.CredsFilePath != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFilePath))
	}
	opts = append(opts,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				cclog.Warnf("[NATSLINE]> disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			cclog.Infof("[NATSLINE]> reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			cclog.Errorf("[NATSLINE]> error: %v", err)
		}),
	)

	nc, err := nats.Connect(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("natsline: connect: %w", err)
	}
	cclog.Infof("[NATSLINE]> connected to %s", cfg.Address)
	return &Client{conn: nc}, nil
}

// Subscribe registers handler for subject.
func (c *Client) Subscribe(subject string, handler MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("natsline: subscribe to %q: %w", subject, err)
	}
	c.subscriptions = append(c.subscriptions, sub)
	cclog.Infof("[NATSLINE]> subscribed to %q", subject)
	return nil
}

// Close unsubscribes everything and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, sub := range c.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			cclog.Warnf("[NATSLINE]> unsubscribe failed: %v", err)
		}
	}
	c.subscriptions = nil
	if c.conn != nil {
		c.conn.Close()
		cclog.Info("[NATSLINE]> connection closed")
	}
}
