package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// OrderEvent 订单事件
type OrderEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	CustomerID uint      `json:"customer_id"`
	Source     string    `json:"source"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status"`
	Event      string    `json:"event,omitempty"`
	Amount     string    `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher 订单事件发布接口
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher 未启用 Kafka 时使用
type NopPublisher struct{}

// PublishOrderEvent 忽略事件
func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

// Close 无操作
func (NopPublisher) Close() error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 基于 kafka-go 的事件发布
type KafkaPublisher struct {
	w messageWriter
}

// NewPublisher 按配置创建事件发布器
func NewPublisher(cfg config.KafkaConfig) Publisher {
	brokers := splitBrokers(cfg.Brokers)
	if !cfg.Enabled || len(brokers) == 0 || strings.TrimSpace(cfg.Topic) == "" {
		return NopPublisher{}
	}
	return &KafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        strings.TrimSpace(cfg.Topic),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// PublishOrderEvent 以订单号为 key 投递，同一订单的事件落在同一分区
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderNo),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(event.Type)},
		},
	})
}

// Close 关闭 writer
func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
