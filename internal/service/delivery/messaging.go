package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"vegshop/internal/domain"
	"vegshop/internal/observability"
	"vegshop/internal/service/receipt"
)

const ChannelMessaging = "messaging"

// MessageWriter is the part of *kafka.Writer the messenger uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DispatchMessage asks the messaging service to send a receipt to the customer's phone.
type DispatchMessage struct {
	OrderID     string    `json:"orderId"`
	Destination string    `json:"destination"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Body        string    `json:"body"`
	Total       string    `json:"total"`
	PlacedAt    time.Time `json:"placedAt"`
}

// KafkaMessenger publishes dispatch messages keyed by order id.
type KafkaMessenger struct {
	writer MessageWriter
}

func NewKafkaMessenger(brokers []string, topic string, logger *zap.Logger) *KafkaMessenger {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
		ErrorLogger:  observability.NewPrintfAdapter(logger),
	}
	return &KafkaMessenger{writer: writer}
}

func (m *KafkaMessenger) Channel() string { return ChannelMessaging }

func (m *KafkaMessenger) Deliver(ctx context.Context, order domain.Order, doc receipt.Document) (string, error) {
	payload, err := json.Marshal(DispatchMessage{
		OrderID:     order.ID,
		Destination: order.Phone,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Body:        string(doc.Body),
		Total:       domain.FormatMoney(order.GrandTotal),
		PlacedAt:    order.PlacedAt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal dispatch message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(order.ID),
		Value: payload,
		Time:  order.PlacedAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("receipt.dispatch")},
		},
	}
	if err := m.writer.WriteMessages(ctx, message); err != nil {
		return "", fmt.Errorf("failed to write dispatch message to kafka: %w", err)
	}
	return "kafka:" + order.ID, nil
}

func (m *KafkaMessenger) Close() error {
	return m.writer.Close()
}
