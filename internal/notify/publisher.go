// Package notify publishes booking lifecycle events to RabbitMQ for the
// downstream notification service (renter and vendor emails).
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/suyogshakya/rentwheels/internal/domain"
)

const routingBookingConfirmed = "booking.confirmed"

// BookingConfirmedEvent is the wire format for a confirmed booking.
type BookingConfirmedEvent struct {
	Event      string `json:"event"` // "booking.confirmed"
	Version    int    `json:"version"`
	OccurredAt string `json:"occurred_at"` // RFC3339
	Data       struct {
		BookingID     string  `json:"booking_id"`
		RequesterID   string  `json:"requester_id"`
		ResourceID    string  `json:"resource_id"`
		StartDate     string  `json:"start_date"`
		EndDate       string  `json:"end_date"`
		TotalAmount   float64 `json:"total_amount"`
		TransactionID string  `json:"transaction_id"`
	} `json:"data"`
}

// Publisher pushes events to a topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// BookingConfirmed publishes a booking.confirmed event.
func (p *Publisher) BookingConfirmed(ctx context.Context, booking *domain.Booking) error {
	evt := BookingConfirmedEvent{
		Event:      routingBookingConfirmed,
		Version:    1,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	evt.Data.BookingID = booking.ID.String()
	evt.Data.RequesterID = booking.RequesterID
	evt.Data.ResourceID = booking.ResourceID
	evt.Data.StartDate = booking.StartDate.Format("2006-01-02")
	evt.Data.EndDate = booking.EndDate.Format("2006-01-02")
	evt.Data.TotalAmount = booking.TotalAmount
	evt.Data.TransactionID = booking.TransactionID

	return p.publishJSON(ctx, routingBookingConfirmed, evt)
}

func (p *Publisher) publishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
