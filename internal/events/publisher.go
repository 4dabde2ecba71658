// Package events publishes order lifecycle events to a RabbitMQ topic
// exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agrishop-be/internal/logger"
	"agrishop-be/internal/order"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch    Channel
	now   func() time.Time
	newID func() string
}

// NewPublisher declares the events exchange on ch.
func NewPublisher(ch Channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare %s: %w", Exchange, err)
	}
	return &Publisher{
		ch:    ch,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}, nil
}

// Dial connects to the broker and returns a ready publisher. Closing the
// connection also closes the publisher's channel.
func Dial(url string) (*amqp.Connection, *Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	p, err := NewPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, p, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) OrderPlaced(ctx context.Context, o *order.Order) error {
	payload := OrderPlaced{
		OrderID:       o.ID,
		CustomerEmail: o.Customer.Email,
		TotalAmount:   o.TotalAmount,
		Items:         make([]PlacedItem, 0, len(o.Items)),
	}
	for _, li := range o.Items {
		item := PlacedItem{
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			PriceAtTime: li.PriceAtTime,
		}
		if li.ProductID != nil {
			item.ProductID = *li.ProductID
		}
		payload.Items = append(payload.Items, item)
	}
	return publish(ctx, p, OrderPlacedKey, o.ID, payload)
}

func (p *Publisher) OrderStatusChanged(ctx context.Context, o *order.Order, from order.Status) error {
	return publish(ctx, p, OrderStatusChangedKey, o.ID, OrderStatusChanged{
		OrderID: o.ID,
		From:    string(from),
		To:      string(o.Status),
	})
}

func publish[T any](ctx context.Context, p *Publisher, key, partition string, payload T) error {
	env := Envelope[T]{
		EventName:     key,
		EventVersion:  1,
		EventID:       p.newID(),
		CorrelationID: logger.RequestIDFrom(ctx),
		Producer:      Producer,
		PartitionKey:  partition,
		OccurredAt:    p.now(),
		Payload:       payload,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		Exchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     env.EventID,
			CorrelationId: env.CorrelationID,
			Timestamp:     env.OccurredAt,
			Body:          body,
		},
	)
}
