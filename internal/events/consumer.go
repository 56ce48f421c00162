package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
)

// CountListener receives cart counts published by other instances.
type CountListener interface {
	Deliver(sessionID string, count int)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer fans cart.count_changed events from other instances out to
// the local listener, so live badges stay in sync across the fleet.
type KafkaConsumer struct {
	reader   messageReader
	origin   string
	listener CountListener
	logger   *logging.Logger
	stopCh   chan struct{}
}

// NewKafkaConsumer creates a consumer. Each instance joins its own group so
// every instance sees every broadcast.
func NewKafkaConsumer(cfg config.KafkaConfig, origin string, listener CountListener) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.EventsTopic,
		GroupID:     cfg.ConsumerGroup + "-" + origin,
		StartOffset: kafka.LastOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     time.Second,
	})

	return newConsumer(reader, origin, listener)
}

func newConsumer(r messageReader, origin string, listener CountListener) *KafkaConsumer {
	return &KafkaConsumer{
		reader:   r,
		origin:   origin,
		listener: listener,
		logger:   logging.New("event-consumer"),
		stopCh:   make(chan struct{}),
	}
}

// Start begins consuming events.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(msg)
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(msg kafka.Message) {
	var event StorefrontEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	switch event.Type {
	case EventTypeCartCountChanged:
		if event.Origin == c.origin {
			return
		}
		var data CartCountData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			c.logger.Error("Malformed cart count event", logging.Fields{
				"event_id": event.ID,
				"error":    err.Error(),
			})
			return
		}
		c.listener.Deliver(event.SessionID, data.Count)
	default:
		c.logger.Debug("Ignoring event", logging.Fields{"type": event.Type})
	}
}
