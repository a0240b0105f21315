package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Kitchen events routed as kitchen.<location_id>.<event>
const (
	EventWaveFired   = "wave_fired"
	EventItemRefired = "item_refired"
	EventWaveDelayed = "wave_delayed"
	EventWaveBumped  = "wave_bumped"
)

type Publisher interface {
	Publish(ctx context.Context, locationID uint, event string, payload any) error
}

// Default is replaced by main when AMQP is configured.
var Default Publisher = Noop{}

type Envelope struct {
	Event      string    `json:"event"`
	LocationID uint      `json:"location_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func RoutingKey(locationID uint, event string) string {
	return fmt.Sprintf("kitchen.%d.%s", locationID, event)
}

type AMQP struct {
	conn     *amqp.Connection
	exchange string
	mu       sync.Mutex
	ch       *amqp.Channel
}

func Dial(url, exchange string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &AMQP{conn: conn, exchange: exchange, ch: ch}, nil
}

func (p *AMQP) Publish(ctx context.Context, locationID uint, event string, payload any) error {
	body, err := json.Marshal(Envelope{
		Event:      event,
		LocationID: locationID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		ch, err := p.conn.Channel()
		if err != nil {
			return fmt.Errorf("failed to open channel: %w", err)
		}
		p.ch = ch
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, RoutingKey(locationID, event), false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (p *AMQP) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		_ = p.ch.Close()
	}
	return p.conn.Close()
}

type Noop struct{}

func (Noop) Publish(context.Context, uint, string, any) error { return nil }
