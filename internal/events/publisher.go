package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

// EventType represents the type of storefront event.
type EventType string

const (
	EventTypeOrderPlaced      EventType = "order.placed"
	EventTypeOrderCancelled   EventType = "order.cancelled"
	EventTypeOrderPaid        EventType = "order.paid"
	EventTypeCartCountChanged EventType = "cart.count_changed"
)

// StorefrontEvent is the envelope written to the events topic.
type StorefrontEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	Origin        string          `json:"origin"`
	SessionID     string          `json:"session_id"`
	OrderID       int64           `json:"order_id,omitempty"`
	Data          json.RawMessage `json:"data,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

// CartCountData is the payload of cart.count_changed.
type CartCountData struct {
	Count int `json:"count"`
}

// Publisher emits storefront events. Publishing failures are reported to
// the caller, which logs them; they never fail the user action.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, sessionID string, order *models.Order) error
	PublishOrderCancelled(ctx context.Context, sessionID string, orderID int64) error
	PublishOrderPaid(ctx context.Context, sessionID string, orderID int64) error
	PublishCartCountChanged(ctx context.Context, sessionID string, count int) error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes storefront events to Kafka.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	origin string
	logger *logging.Logger
}

// NewKafkaPublisher creates a publisher; origin identifies this instance so
// its own cart broadcasts can be skipped by its consumer.
func NewKafkaPublisher(cfg config.KafkaConfig, origin string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.EventsTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return newPublisher(writer, cfg.EventsTopic, origin)
}

func newPublisher(w messageWriter, topic, origin string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: w,
		topic:  topic,
		origin: origin,
		logger: logging.New("event-publisher"),
	}
}

// PublishOrderPlaced publishes an order placed event.
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, sessionID string, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderPlaced, sessionID, order.ID, data))
}

func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, sessionID string, orderID int64) error {
	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderCancelled, sessionID, orderID, nil))
}

func (p *KafkaPublisher) PublishOrderPaid(ctx context.Context, sessionID string, orderID int64) error {
	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderPaid, sessionID, orderID, nil))
}

func (p *KafkaPublisher) PublishCartCountChanged(ctx context.Context, sessionID string, count int) error {
	data, err := json.Marshal(CartCountData{Count: count})
	if err != nil {
		return err
	}
	return p.publish(ctx, p.createEvent(ctx, EventTypeCartCountChanged, sessionID, 0, data))
}

func (p *KafkaPublisher) createEvent(ctx context.Context, eventType EventType, sessionID string, orderID int64, data []byte) *StorefrontEvent {
	return &StorefrontEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		Origin:        p.origin,
		SessionID:     sessionID,
		OrderID:       orderID,
		Data:          data,
		Timestamp:     time.Now().UTC(),
		CorrelationID: session.RequestID(ctx),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *StorefrontEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keyed by session so a session's events stay ordered on one partition.
	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"session_id": event.SessionID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"session_id": event.SessionID,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// NoopPublisher is used when the events feature is switched off.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, string, *models.Order) error { return nil }
func (NoopPublisher) PublishOrderCancelled(context.Context, string, int64) error      { return nil }
func (NoopPublisher) PublishOrderPaid(context.Context, string, int64) error           { return nil }
func (NoopPublisher) PublishCartCountChanged(context.Context, string, int) error      { return nil }
