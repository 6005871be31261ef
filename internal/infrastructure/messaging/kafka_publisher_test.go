package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stockroom/backend/internal/domain/catalog"
	"github.com/stockroom/backend/internal/domain/order"
	"github.com/stockroom/backend/internal/domain/shared"
	"github.com/stockroom/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
	closed   bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if err := ctx.Err(); err != nil {
		return err
	}
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func sampleEvents() (*catalog.StockLowEvent, *order.OrderStatusChangedEvent) {
	product := &catalog.Product{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Name: "Hallulla", CurrentStock: 2, MinStock: 5, Price: decimal.NewFromInt(990)}
	o := &order.Order{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: order.StatusPreparing}
	return catalog.NewStockLowEvent(product), order.NewOrderStatusChangedEvent(o, order.StatusPending)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := newKafkaPublisher(writer, "stockroom.events", time.Second)
	low, changed := sampleEvents()

	// a cancelled caller context does not stop the write
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, pub.Publish(ctx, low, changed))

	require.Len(t, writer.msgs, 2)
	assert.True(t, writer.deadline)

	msg := writer.msgs[0]
	assert.Equal(t, low.ProductID.String(), string(msg.Key))
	assert.Equal(t, catalog.EventTypeStockLow, header(msg, HeaderEventType))
	assert.Equal(t, low.EventID().String(), header(msg, HeaderEventID))
	assert.Equal(t, catalog.AggregateTypeProduct, header(msg, HeaderAggregateType))

	decoded, err := pub.serializer.Deserialize(header(msg, HeaderEventType), msg.Value)
	require.NoError(t, err)
	got, ok := decoded.(*catalog.StockLowEvent)
	require.True(t, ok)
	assert.Equal(t, "Hallulla", got.ProductName)
	assert.Equal(t, 2, got.CurrentStock)
	assert.Equal(t, low.EventID(), got.EventID())

	decoded, err = pub.serializer.Deserialize(order.EventTypeOrderStatusChanged, writer.msgs[1].Value)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPreparing, decoded.(*order.OrderStatusChangedEvent).NewStatus)

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}

func TestKafkaPublisher_WriteFailure(t *testing.T) {
	pub := newKafkaPublisher(&fakeWriter{err: errors.New("leader not available")}, "t", 0)
	low, _ := sampleEvents()

	err := pub.Publish(context.Background(), low)
	assert.ErrorContains(t, err, "leader not available")
	assert.NoError(t, pub.Publish(context.Background()))
}

func TestNewKafkaPublisher(t *testing.T) {
	_, err := NewKafkaPublisher(config.EventsConfig{})
	assert.Error(t, err)

	pub, err := NewKafkaPublisher(config.EventsConfig{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, pub.topic)
	assert.Equal(t, 5*time.Second, pub.writeTimeout)
	require.NoError(t, pub.Close())
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()
	_, err := s.Deserialize("unknown.event", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")
}
