package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/event-registration/internal/mailer"
	"github.com/iliyamo/event-registration/internal/metrics"
)

// Consumer processes the notification queues: it mails verification and
// password reset links and appends registrations to a log file.
type Consumer struct {
	URL         string
	Mailer      mailer.Mailer
	BaseURL     string // public API URL used for verification links
	FrontendURL string // web client URL used for reset links
	ResetTTL    time.Duration
	LogDir      string
	Log         *slog.Logger

	fileMu sync.Mutex
}

// Start connects to RabbitMQ, declares the durable queues and consumes them
// until ctx is cancelled. Dial failures and dropped connections are retried
// with exponential backoff; a message that cannot be handled is rejected
// without requeue so the loop keeps going.
func (c *Consumer) Start(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("consumer: failed to dial broker", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("consumer: consume loop ended, reconnecting", "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("consumer: set QoS failed", "error", err)
	}

	type delivery struct {
		queue string
		msg   amqp.Delivery
	}
	merged := make(chan delivery)
	var wg sync.WaitGroup
	for _, name := range Queues {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
		msgs, err := ch.Consume(name, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("queue consume %s: %w", name, err)
		}
		wg.Add(1)
		go func(name string, msgs <-chan amqp.Delivery) {
			defer wg.Done()
			for d := range msgs {
				select {
				case merged <- delivery{queue: name, msg: d}:
				case <-ctx.Done():
					return
				}
			}
		}(name, msgs)
	}
	go func() { wg.Wait(); close(merged) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-merged:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.Handle(ctx, d.queue, d.msg.Body); err != nil {
				c.Log.Error("consumer: handle message failed", "queue", d.queue, "error", err)
				metrics.QueueMessagesTotal.WithLabelValues(d.queue, "in", "error").Inc()
				_ = d.msg.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			metrics.QueueMessagesTotal.WithLabelValues(d.queue, "in", "ok").Inc()
			_ = d.msg.Ack(false)
		}
	}
}

// Handle dispatches one message body by queue name.
func (c *Consumer) Handle(ctx context.Context, queueName string, body []byte) error {
	switch queueName {
	case UserRegisteredQueue:
		var ev UserRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		return c.sendVerification(ctx, ev)
	case PasswordResetQueue:
		var ev PasswordResetRequestedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		return c.sendPasswordReset(ctx, ev)
	case ParticipantRegisteredQueue:
		var ev ParticipantRegisteredEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return fmt.Errorf("unmarshal: %w", err)
		}
		return c.logRegistration(ev)
	}
	return fmt.Errorf("unknown queue %q", queueName)
}

func (c *Consumer) sendVerification(ctx context.Context, ev UserRegisteredEvent) error {
	if ev.VerificationToken == "" {
		return errors.New("missing verification token")
	}
	link := c.BaseURL + "/auth/verify/" + ev.VerificationToken
	msg, err := mailer.VerificationEmail(ev.Email, ev.Name, link)
	if err != nil {
		return err
	}
	return c.Mailer.Send(ctx, msg)
}

func (c *Consumer) sendPasswordReset(ctx context.Context, ev PasswordResetRequestedEvent) error {
	if ev.ResetToken == "" {
		return errors.New("missing reset token")
	}
	link := c.FrontendURL + "/reset-password?token=" + ev.ResetToken
	ttl := c.ResetTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	msg, err := mailer.PasswordResetEmail(ev.Email, link, ttl.String())
	if err != nil {
		return err
	}
	return c.Mailer.Send(ctx, msg)
}

func (c *Consumer) logRegistration(ev ParticipantRegisteredEvent) error {
	dir := c.LogDir
	if dir == "" {
		dir = "logs"
	}
	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	// Ensure logs directory exists
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "registrations.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Registration %s | participant_id=%d | user_id=%d | email=%q | event_id=%d | event=%q | category_id=%d | category=%q | amount=%.2f %s\n",
		ev.RegisteredAt, ev.Status, ev.ParticipantID, ev.UserID, ev.Email, ev.EventID, ev.EventName, ev.CategoryID, ev.CategoryName, ev.AmountDue, ev.Currency)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}
