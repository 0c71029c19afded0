// Package queue publishes job events to the AMQP broker the load-test
// workers consume from.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/multierr"

	"github.com/ws-flare/ws-flare-graphql/internal/domain"
)

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("queue publisher closed")

type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	Channel() (channel, error)
	IsClosed() bool
	Close() error
}

type amqpConnection struct {
	conn *amqp.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (c amqpConnection) IsClosed() bool { return c.conn.IsClosed() }

func (c amqpConnection) Close() error { return c.conn.Close() }

func dialAMQP(uri string) (connection, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn: conn}, nil
}

// Publisher sends JSON messages to durable queues. The broker connection is
// dialled on first use and redialled after it drops; each publish opens its
// own channel.
type Publisher struct {
	mu       sync.Mutex
	uri      string
	jobQueue string
	dial     func(string) (connection, error)
	conn     connection
	closed   bool
	logger   *slog.Logger
	now      func() time.Time
}

// NewPublisher constructs a Publisher for the broker at uri. Job events go
// to jobQueue.
func NewPublisher(uri, jobQueue string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	registerMetrics()
	return &Publisher{
		uri:      uri,
		jobQueue: strings.TrimSpace(jobQueue),
		dial:     dialAMQP,
		logger:   logger.With("component", "queue_publisher"),
		now:      time.Now,
	}
}

// PublishJobCreated announces a new job to the workers.
func (p *Publisher) PublishJobCreated(ctx context.Context, event domain.JobEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode job event: %w", err)
	}
	return p.Publish(ctx, p.jobQueue, body)
}

// Publish declares queue as durable and sends body to it as a persistent
// JSON message. It does not wait for broker confirmation.
func (p *Publisher) Publish(ctx context.Context, queue string, body []byte) (err error) {
	if strings.TrimSpace(queue) == "" {
		return errors.New("queue name required")
	}
	defer func() { observePublish(queue, err) }()

	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		p.reset(conn)
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { err = multierr.Append(err, ch.Close()) }()

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", queue, err)
	}
	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", queue, err)
	}
	p.logger.Debug("message published", "queue", queue, "message_id", msg.MessageId, "bytes", len(body))
	return nil
}

// Ping reports whether the broker is reachable, dialling if needed.
func (p *Publisher) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.connection()
	return err
}

// Close shuts down the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.conn == nil {
		return nil
	}
	err := p.conn.Close()
	p.conn = nil
	if errors.Is(err, amqp.ErrClosed) {
		return nil
	}
	return err
}

func (p *Publisher) connection() (connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := p.dial(p.uri)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	p.conn = conn
	p.logger.Info("broker connected")
	return conn, nil
}

// reset drops conn so the next publish redials.
func (p *Publisher) reset(conn connection) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != conn {
		return
	}
	p.conn = nil
	if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		p.logger.Warn("close broker connection failed", "error", err)
	}
}
