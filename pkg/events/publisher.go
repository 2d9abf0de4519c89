package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/storefront/pkg/global"
)

// OrderPlaced is emitted once per persisted order
type OrderPlaced struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	PaymentID string    `json:"paymentId"`
	ItemCount int       `json:"itemCount"`
	Total     float64   `json:"total"`
	PlacedAt  time.Time `json:"placedAt"`
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}

// KafkaPublisher writes order events keyed by order id so that all events of one order share a partition
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	logger = global.LoggerOrNop(logger).With(zap.String("topic", topic))
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		Transport: &kafka.Transport{
			Dial: func(ctx context.Context, network string, address string) (net.Conn, error) {
				dialer := &kafka.Dialer{
					Timeout:   10 * time.Second,
					DualStack: true,
					KeepAlive: 30 * time.Second,
				}
				return dialer.DialContext(ctx, network, address)
			},
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error(fmt.Sprintf(msg, args...))
		}),
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, event OrderPlaced) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", event.OrderID, err)
	}
	p.logger.Debug("order event published", zap.String("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(event OrderPlaced) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
		Time:  event.PlacedAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte("order.placed")},
		},
	}, nil
}

// NopPublisher drops events; used when no brokers are configured
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
