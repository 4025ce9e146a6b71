package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"github.com/aquaclean/carwash-api/internal/ports/out/events"
)

// Publisher sends NotificationSent events to a durable RabbitMQ queue.
// Delivery workers (email, push, SMS) consume from that queue.
type Publisher struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

// Dial connects to url, opens a channel and declares queue as durable.
func Dial(url, queue string, log *zap.Logger) (*Publisher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	q, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	log.Info("connected to rabbitmq", zap.String("queue", q.Name))
	return &Publisher{conn: conn, channel: ch, queue: q.Name, log: log}, nil
}

// message is the wire shape of a NotificationSent event.
type message struct {
	Event          string   `json:"event"`
	NotificationID string   `json:"notificationId"`
	Title          string   `json:"title"`
	Message        string   `json:"message"`
	Type           string   `json:"type"`
	Date           string   `json:"date"`
	Broadcast      bool     `json:"broadcast"`
	Recipients     []string `json:"recipients"`
}

const eventNotificationSent = "notification.sent"

func encode(e events.NotificationSent) ([]byte, error) {
	m := message{
		Event:          eventNotificationSent,
		NotificationID: string(e.Notification.ID),
		Title:          e.Notification.Title,
		Message:        e.Notification.Message,
		Type:           string(e.Notification.Type),
		Date:           e.Notification.Date.Format("2006-01-02"),
		Broadcast:      e.Notification.UserID == nil,
		Recipients:     []string{},
	}
	for _, r := range e.Recipients {
		m.Recipients = append(m.Recipients, string(r))
	}
	return json.Marshal(m)
}

func (p *Publisher) PublishNotificationSent(ctx context.Context, e events.NotificationSent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body, err := encode(e)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel == nil {
		return errors.New("publisher closed")
	}
	err = p.channel.Publish(
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         eventNotificationSent,
			MessageId:    string(e.Notification.ID),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.queue, err)
	}
	p.log.Debug("notification published", zap.String("queue", p.queue), zap.String("notification_id", string(e.Notification.ID)))
	return nil
}

// Close closes the channel and the connection, returning the last error seen.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			lastErr = err
		}
		p.channel = nil
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			lastErr = err
		}
		p.conn = nil
	}
	return lastErr
}
