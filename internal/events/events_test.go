package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/models"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

type memoryWriter struct {
	messages []kafka.Message
	err      error
}

func (w *memoryWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *memoryWriter) Close() error { return nil }

type queueReader struct {
	mu   sync.Mutex
	msgs []kafka.Message
	done chan struct{}
}

func (r *queueReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.msgs) > 0 {
		msg := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	close(r.done)
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *queueReader) Close() error { return nil }

type recordingListener struct {
	mu     sync.Mutex
	counts map[string]int
}

func (l *recordingListener) Deliver(sessionID string, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts[sessionID] = count
}

func decodeEvent(t *testing.T, msg kafka.Message) StorefrontEvent {
	t.Helper()
	var event StorefrontEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return event
}

func TestPublishOrderPlaced(t *testing.T) {
	w := &memoryWriter{}
	p := newPublisher(w, "storefront.events", "instance-a")
	ctx := session.WithRequestID(context.Background(), "req-1")

	order := &models.Order{ID: 42, Status: models.OrderStatusCreated, TotalAmount: decimal.RequireFromString("99.90")}
	require.NoError(t, p.PublishOrderPlaced(ctx, "s-1", order))

	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("s-1"), w.messages[0].Key)

	event := decodeEvent(t, w.messages[0])
	assert.Equal(t, EventTypeOrderPlaced, event.Type)
	assert.Equal(t, int64(42), event.OrderID)
	assert.Equal(t, "instance-a", event.Origin)
	assert.Equal(t, "req-1", event.CorrelationID)
	assert.NotEmpty(t, event.ID)
}

func TestPublishReturnsWriterError(t *testing.T) {
	w := &memoryWriter{err: errors.New("broker down")}
	p := newPublisher(w, "storefront.events", "instance-a")

	err := p.PublishCartCountChanged(context.Background(), "s-1", 3)
	assert.EqualError(t, err, "broker down")
}

func TestConsumerDeliversForeignCartCounts(t *testing.T) {
	w := &memoryWriter{}
	foreign := newPublisher(w, "storefront.events", "instance-b")
	local := newPublisher(w, "storefront.events", "instance-a")

	require.NoError(t, foreign.PublishCartCountChanged(context.Background(), "s-1", 4))
	require.NoError(t, local.PublishCartCountChanged(context.Background(), "s-2", 9))
	require.NoError(t, foreign.PublishOrderPaid(context.Background(), "s-3", 7))

	reader := &queueReader{msgs: w.messages, done: make(chan struct{})}
	listener := &recordingListener{counts: map[string]int{}}
	consumer := newConsumer(reader, "instance-a", listener)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- consumer.Start(ctx) }()

	<-reader.done
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	listener.mu.Lock()
	defer listener.mu.Unlock()
	assert.Equal(t, map[string]int{"s-1": 4}, listener.counts)
}
