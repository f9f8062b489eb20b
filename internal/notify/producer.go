package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"commerce-backoffice/internal/core"
)

// Producer publishes order lifecycle events to Kafka for downstream
// consumers (fulfilment, CRM, messaging). Events are fire-and-forget from
// the orchestrator's point of view.
type Producer interface {
	OrderPlaced(ctx context.Context, o *core.Order) error
	Close() error
}

type producer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewProducer(brokers []string, topic string, log *zap.Logger) Producer {
	return &producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		log: log,
	}
}

// orderPlacedEvent is the wire shape. Totals are serialized as strings so
// consumers never see float rounding.
type orderPlacedEvent struct {
	Event         string    `json:"event"`
	OrderID       int       `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	Channel       string    `json:"channel"`
	CustomerID    int       `json:"customer_id"`
	Total         string    `json:"total"`
	GSTType       string    `json:"gst_type"`
	PaymentMethod string    `json:"payment_method"`
	PlacedAt      time.Time `json:"placed_at"`
}

func (p *producer) OrderPlaced(ctx context.Context, o *core.Order) error {
	ev := orderPlacedEvent{
		Event:         "order.placed",
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		Channel:       string(o.Channel),
		CustomerID:    o.CustomerID,
		Total:         o.Total.StringFixed(2),
		GSTType:       string(o.GSTType),
		PaymentMethod: o.PaymentMethod,
		PlacedAt:      o.CreatedAt,
	}
	if o.InvoiceNumber != nil {
		ev.InvoiceNumber = *o.InvoiceNumber
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.OrderNumber),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	p.log.Debug("published order event",
		zap.String("event", ev.Event),
		zap.String("order_number", o.OrderNumber))
	return nil
}

func (p *producer) Close() error {
	return p.writer.Close()
}
