package events

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"alima/internal/infrastructure/metrics"
	"alima/pkg/logger"
)

// Routing keys for domain events.
const (
	MessageSent          = "message.sent"
	MessagesRead         = "message.read"
	NotificationsRead    = "notification.read"
	BookingCreated       = "booking.created"
	BookingStatusChanged = "booking.status_changed"
	PaymentProofSent     = "payment.proof_submitted"
	ReviewCreated        = "review.created"
	UserRegistered       = "user.registered"
)

// Envelope is the body of every published event.
type Envelope struct {
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// Publisher publishes domain events after the corresponding write has
// committed. Publish failures are reported but never undo the write.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
	Close() error
}

// NewPublisher builds an AMQP publisher, or a noop publisher when AMQP is
// disabled or unreachable.
func NewPublisher(amqpURL, exchange string) Publisher {
	if amqpURL == "" {
		logger.Info("Event bus disabled, using noop: empty amqp url")
		return NoopPublisher{}
	}

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		logger.Warn("Event bus disabled, using noop: %v", err)
		return NoopPublisher{}
	}

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn("Event bus disabled, using noop: %v", err)
		_ = conn.Close()
		return NoopPublisher{}
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		logger.Warn("Event bus disabled, using noop: %v", err)
		_ = ch.Close()
		_ = conn.Close()
		return NoopPublisher{}
	}

	logger.Info("Event bus connected, exchange=%s", exchange)
	return &amqpPublisher{conn: conn, ch: ch, exchange: exchange}
}

type amqpPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func (p *amqpPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(Envelope{
		EventType:  routingKey,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return err
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		metrics.IncAMQPPublishError()
		logger.Error("Event publish failed, routing_key=%s: %v", routingKey, err)
	}
	return err
}

func (p *amqpPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	logger.Debug("Noop event publish, routing_key=%s", routingKey)
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// Mode reports the publisher mode for startup logging.
func Mode(p Publisher) string {
	switch p.(type) {
	case *amqpPublisher:
		return "amqp"
	case NoopPublisher:
		return "noop"
	default:
		return "unknown"
	}
}
