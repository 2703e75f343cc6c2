// Package events publishes front-office domain events to RabbitMQ. Publish
// failures are logged and returned; callers treat them as non-fatal.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const (
	RoutingStayCheckedOut  = "stay.checked_out"
	RoutingPaymentReceived = "payment.received"
)

type Event interface {
	RoutingKey() string
}

type StayCheckedOutEvent struct {
	StayID       string          `json:"stay_id"`
	BranchID     string          `json:"branch_id"`
	RoomNumber   string          `json:"room_number"`
	GuestName    string          `json:"guest_name"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	Total        decimal.Decimal `json:"total"`
	CheckedOutBy string          `json:"checked_out_by"`
	CheckedOutAt time.Time       `json:"checked_out_at"`
}

func (StayCheckedOutEvent) RoutingKey() string { return RoutingStayCheckedOut }

type PaymentReceivedEvent struct {
	PaymentID  string          `json:"payment_id"`
	StayID     string          `json:"stay_id"`
	BranchID   string          `json:"branch_id"`
	Method     string          `json:"method"`
	Amount     decimal.Decimal `json:"amount"`
	ReceiptNo  string          `json:"receipt_no"`
	ReceivedAt time.Time       `json:"received_at"`
}

func (PaymentReceivedEvent) RoutingKey() string { return RoutingPaymentReceived }

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}

// AMQPPublisher keeps one broker connection and opens a short-lived channel
// per message. Queues are durable and named after the routing key.
type AMQPPublisher struct {
	url  string
	mu   sync.Mutex
	conn *amqp.Connection
}

func NewAMQPPublisher(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	return &AMQPPublisher{url: url, conn: conn}, nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil || p.conn.IsClosed() {
		conn, err := amqp.Dial(p.url)
		if err != nil {
			return nil, fmt.Errorf("redial broker: %w", err)
		}
		p.conn = conn
	}
	return p.conn.Channel()
}

func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := Encode(event)
	if err != nil {
		log.Printf("[events] marshal %s failed: %v", event.RoutingKey(), err)
		return err
	}

	ch, err := p.channel()
	if err != nil {
		log.Printf("[events] channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(event.RoutingKey(), true, false, false, false, nil); err != nil {
		log.Printf("[events] queue declare %s failed: %v", event.RoutingKey(), err)
		return err
	}

	if err := ch.PublishWithContext(ctx, "", event.RoutingKey(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}); err != nil {
		log.Printf("[events] publish %s failed: %v", event.RoutingKey(), err)
		return err
	}
	return nil
}

func Encode(event Event) ([]byte, error) {
	return json.Marshal(event)
}
