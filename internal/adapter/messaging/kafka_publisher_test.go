package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

type mockProducer struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (m *mockProducer) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msgs...)
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_WritesKeyedMessage(t *testing.T) {
	producer := &mockProducer{}
	publisher := NewKafkaPublisher(producer)

	err := publisher.PublishInventoryChanged(context.Background(), domain.InventoryChanged{ProductID: 17, Quantity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(producer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if string(msg.Key) != "17" {
		t.Errorf("expected key 17, got %s", msg.Key)
	}

	var decoded domain.InventoryChanged
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("value is not json: %v", err)
	}
	if decoded.ProductID != 17 || decoded.Quantity != 3 {
		t.Errorf("unexpected payload %+v", decoded)
	}
}

func TestKafkaPublisher_PropagatesTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	producer := &mockProducer{}
	if err := NewKafkaPublisher(producer).PublishInventoryChanged(ctx, domain.InventoryChanged{ProductID: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found := false
	for _, h := range producer.messages[0].Headers {
		if h.Key == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Error("expected traceparent header")
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	producer := &mockProducer{err: errors.New("leader not available")}
	publisher := NewKafkaPublisher(producer)

	if err := publisher.PublishInventoryChanged(context.Background(), domain.InventoryChanged{ProductID: 1}); err == nil {
		t.Error("expected error")
	}

	publisher.Close()
	if !producer.closed {
		t.Error("expected producer to be closed")
	}
}
