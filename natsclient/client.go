// Package natsclient manages the NATS connection backing the syndication
// task queue and the audit log. It wraps connection lifecycle, JetStream
// work-queue streams with explicit acknowledgement, and KV buckets.
package natsclient

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360/syndicate/errors"
)

// ConnectionStatus represents the state of the NATS connection
type ConnectionStatus int

// Possible connection statuses
const (
	StatusDisconnected ConnectionStatus = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
)

// String returns the string representation of ConnectionStatus
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	default:
		return "unknown"
	}
}

// Client manages one NATS connection and its JetStream context.
type Client struct {
	url    string
	status atomic.Value // ConnectionStatus
	logger *slog.Logger

	conn *nats.Conn
	js   jetstream.JetStream

	consumers   map[string]jetstream.ConsumeContext
	consumersMu sync.Mutex

	// Connection options
	name          string
	maxReconnects int
	reconnectWait time.Duration
	timeout       time.Duration
	drainTimeout  time.Duration
	username      string
	password      string
	token         string

	reconnects atomic.Int32

	onHealthChange func(bool)

	mu     sync.RWMutex
	closed atomic.Bool
}

// NewClient creates a NATS client for url with optional configuration.
func NewClient(url string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		url:           url,
		logger:        slog.Default(),
		name:          "syndicate",
		maxReconnects: -1,
		reconnectWait: 2 * time.Second,
		timeout:       5 * time.Second,
		drainTimeout:  30 * time.Second,
		consumers:     make(map[string]jetstream.ConsumeContext),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.WrapInvalid(err, "Client", "NewClient", "apply option")
		}
	}
	c.status.Store(StatusDisconnected)
	return c, nil
}

// URL returns the NATS server URL.
func (c *Client) URL() string {
	return c.url
}

// Status returns the current connection status.
func (c *Client) Status() ConnectionStatus {
	val := c.status.Load()
	if val == nil {
		return StatusDisconnected
	}
	return val.(ConnectionStatus)
}

// IsHealthy returns true if the connection is established.
func (c *Client) IsHealthy() bool {
	return c.Status() == StatusConnected
}

// Reconnects returns the number of reconnects observed so far.
func (c *Client) Reconnects() int32 {
	return c.reconnects.Load()
}

// Connect establishes the NATS connection and JetStream context.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.conn.IsConnected() {
		return nil
	}

	c.status.Store(StatusConnecting)

	opts := []nats.Option{
		nats.Name(c.name),
		nats.MaxReconnects(c.maxReconnects),
		nats.ReconnectWait(c.reconnectWait),
		nats.Timeout(c.timeout),
		nats.DrainTimeout(c.drainTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			c.status.Store(StatusReconnecting)
			if c.onHealthChange != nil {
				c.onHealthChange(false)
			}
			if err != nil {
				c.logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			c.reconnects.Add(1)
			c.status.Store(StatusConnected)
			if c.onHealthChange != nil {
				c.onHealthChange(true)
			}
			c.logger.Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.status.Store(StatusDisconnected)
		}),
	}
	if c.username != "" {
		opts = append(opts, nats.UserInfo(c.username, c.password))
	}
	if c.token != "" {
		opts = append(opts, nats.Token(c.token))
	}

	conn, err := nats.Connect(c.url, opts...)
	if err != nil {
		c.status.Store(StatusDisconnected)
		return errors.WrapTransient(err, "Client", "Connect", "connect to "+c.url)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		c.status.Store(StatusDisconnected)
		return errors.WrapFatal(err, "Client", "Connect", "create JetStream context")
	}

	c.conn = conn
	c.js = js
	c.status.Store(StatusConnected)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	c.logger.Info("connected to NATS", "url", c.url)
	return nil
}

// Close drains the connection and stops all consumers. Safe to call once.
func (c *Client) Close(_ context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.consumersMu.Lock()
	for key, cc := range c.consumers {
		cc.Stop()
		delete(c.consumers, key)
	}
	c.consumersMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
		return errors.WrapTransient(err, "Client", "Close", "drain connection")
	}
	c.status.Store(StatusDisconnected)
	return nil
}

// JetStream returns the JetStream context.
func (c *Client) JetStream() (jetstream.JetStream, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.js == nil {
		return nil, errors.ErrNoConnection
	}
	return c.js, nil
}

// EnsureWorkQueue creates or updates a work-queue retention stream covering
// the given subjects. Work-queue retention removes each task once a consumer
// acknowledges it, which gives the at-least-once, unordered delivery the
// dispatch/worker split relies on.
func (c *Client) EnsureWorkQueue(ctx context.Context, name string, subjects []string) (jetstream.Stream, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      name,
		Subjects:  subjects,
		Retention: jetstream.WorkQueuePolicy,
		Storage:   jetstream.FileStorage,
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "EnsureWorkQueue", "create stream "+name)
	}
	return stream, nil
}

// PublishToStream publishes data to a JetStream subject.
func (c *Client) PublishToStream(ctx context.Context, subject string, data []byte) error {
	js, err := c.JetStream()
	if err != nil {
		return err
	}
	if _, err := js.Publish(ctx, subject, data); err != nil {
		return errors.WrapTransient(err, "Client", "PublishToStream", "publish to "+subject)
	}
	return nil
}

// WorkHandler processes one delivered task. Returning nil acknowledges the
// message; a transient error schedules redelivery; any other error
// terminates the message so the queue does not spin on poison tasks.
type WorkHandler func(ctx context.Context, data []byte) error

// ConsumeWork attaches a durable explicit-ack consumer to the stream and
// dispatches deliveries to handler. Redelivery on transient failure is the
// queue's retry policy; the handler must not implement its own backoff.
func (c *Client) ConsumeWork(
	ctx context.Context,
	streamName, durable string,
	maxDeliver int,
	handler WorkHandler,
) error {
	js, err := c.JetStream()
	if err != nil {
		return err
	}

	if c.closed.Load() {
		return errors.ErrNotStarted
	}

	consumer, err := js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		Durable:    durable,
		AckPolicy:  jetstream.AckExplicitPolicy,
		AckWait:    60 * time.Second,
		MaxDeliver: maxDeliver,
		BackOff:    workBackoff(maxDeliver),
	})
	if err != nil {
		return errors.WrapTransient(err, "Client", "ConsumeWork", "create consumer "+durable)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		msgCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		err := handler(msgCtx, msg.Data())
		switch {
		case err == nil:
			if ackErr := msg.Ack(); ackErr != nil {
				c.logger.Warn("task ack failed", "error", ackErr)
			}
		case errors.IsTransient(err):
			c.logger.Warn("task failed, scheduling redelivery", "error", err)
			if nakErr := msg.Nak(); nakErr != nil {
				c.logger.Warn("task nak failed", "error", nakErr)
			}
		default:
			c.logger.Error("task failed permanently, terminating delivery", "error", err)
			if termErr := msg.Term(); termErr != nil {
				c.logger.Warn("task term failed", "error", termErr)
			}
		}
	})
	if err != nil {
		return errors.WrapTransient(err, "Client", "ConsumeWork", "start consumer "+durable)
	}

	c.consumersMu.Lock()
	defer c.consumersMu.Unlock()

	if c.closed.Load() {
		cc.Stop()
		return errors.ErrNotStarted
	}
	if existing, ok := c.consumers[durable]; ok {
		existing.Stop()
	}
	c.consumers[durable] = cc
	return nil
}

// workBackoff returns the redelivery delay schedule for a consumer. NATS
// requires len(BackOff) <= MaxDeliver, so the schedule is truncated.
func workBackoff(maxDeliver int) []time.Duration {
	schedule := []time.Duration{
		5 * time.Second,
		30 * time.Second,
		2 * time.Minute,
		10 * time.Minute,
	}
	if maxDeliver > 0 && maxDeliver-1 < len(schedule) {
		schedule = schedule[:maxDeliver-1]
	}
	return schedule
}

// EnsureKeyValue creates or opens a KV bucket.
func (c *Client) EnsureKeyValue(ctx context.Context, cfg jetstream.KeyValueConfig) (jetstream.KeyValue, error) {
	js, err := c.JetStream()
	if err != nil {
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, cfg)
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "EnsureKeyValue", "create bucket "+cfg.Bucket)
	}
	return kv, nil
}

// OnHealthChange registers a callback invoked on connect/disconnect
// transitions. Must be set before Connect.
func (c *Client) OnHealthChange(fn func(bool)) {
	c.onHealthChange = fn
}

// IsKVNotFound reports whether err is the KV missing-key condition.
func IsKVNotFound(err error) bool {
	return stderrors.Is(err, jetstream.ErrKeyNotFound)
}
