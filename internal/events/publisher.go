package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic = "storefront-orders"

	EventOrderPlaced = "OrderPlaced"
)

type OrderPlacedItem struct {
	ProductID string  `json:"product_id"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderPlaced struct {
	OrderID     string            `json:"order_id"`
	UserID      string            `json:"user_id"`
	Items       []OrderPlacedItem `json:"items"`
	TotalAmount float64           `json:"total_amount"`
	Mock        bool              `json:"mock"`
	PlacedAt    time.Time         `json:"placed_at"`
}

// NewOrderPlaced builds the event for an order the given user just placed.
func NewOrderPlaced(user *domain.UserInfo, order *domain.Order, at time.Time) OrderPlaced {
	ev := OrderPlaced{
		OrderID:     order.ID,
		TotalAmount: order.TotalPrice,
		Mock:        order.Mock,
		PlacedAt:    at.UTC(),
		Items:       make([]OrderPlacedItem, 0, len(order.OrderItems)),
	}
	if user != nil {
		ev.UserID = user.ID
	}
	for _, it := range order.OrderItems {
		ev.Items = append(ev.Items, OrderPlacedItem{
			ProductID: it.ProductID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Qty,
			Price:     it.Price,
		})
	}
	return ev
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.OrderID), // order id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventOrderPlaced)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event %s: %w", ev.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops events. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlaced) error { return nil }
