package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-registration/internal/metrics"
)

// Publisher sends a domain event to the named queue. Handlers treat publish
// failures as non-fatal: the request has already been committed.
type Publisher interface {
	Publish(ctx context.Context, queueName string, event any) error
}

// AMQPPublisher publishes persistent JSON messages to durable RabbitMQ queues
// through the default exchange. The connection is opened lazily and reopened
// after the broker drops it.
type AMQPPublisher struct {
	URL string
	Log *slog.Logger

	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url string, log *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Log: log}
}

func (p *AMQPPublisher) connection() (*amqp.Connection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn != nil && !p.conn.IsClosed() {
		return p.conn, nil
	}
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

// Publish declares the queue (idempotent) and publishes event as JSON.
func (p *AMQPPublisher) Publish(ctx context.Context, queueName string, event any) error {
	err := p.publish(ctx, queueName, event)
	result := "ok"
	if err != nil {
		result = "error"
		p.Log.Error("rabbitmq: publish failed", "queue", queueName, "error", err)
	}
	metrics.QueueMessagesTotal.WithLabelValues(queueName, "out", result).Inc()
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, queueName string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	conn, err := p.connection()
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

// InlinePublisher hands events straight to the consumer's handler in the
// calling goroutine. It is used when no broker is configured so that mail is
// still delivered in development.
type InlinePublisher struct {
	Handle func(ctx context.Context, queueName string, body []byte) error
	Log    *slog.Logger
}

func (p InlinePublisher) Publish(ctx context.Context, queueName string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.Handle(ctx, queueName, body); err != nil {
		p.Log.Warn("inline handler failed", "queue", queueName, "error", err)
		return err
	}
	return nil
}

var _ Publisher = (*AMQPPublisher)(nil)
var _ Publisher = InlinePublisher{}
