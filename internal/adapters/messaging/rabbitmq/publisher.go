package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"vet-clinic-api/internal/domain/events"
	"vet-clinic-api/internal/platform/logger"
)

// Publisher publica eventos de turnos en un exchange topic (routing key appointment.<type>).
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      logger.Logger
}

type Config struct {
	URL      string
	Exchange string
}

// message es el payload JSON publicado.
type message struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	Type          string    `json:"type"`
	Status        string    `json:"status"`
	Date          string    `json:"date"`
	Hour          string    `json:"hour"`
	VetID         string    `json:"vet_id"`
	OwnerID       string    `json:"owner_id"`
	PetID         string    `json:"pet_id"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewPublisher(cfg Config, log logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		log.Error("rabbitmq.connect.failed", map[string]any{"error": err})
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		log.Error("rabbitmq.channel.failed", map[string]any{"error": err})
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq exchange declare: %w", err)
	}

	log.Info("rabbitmq.publisher.ready", map[string]any{"exchange": cfg.Exchange})
	return &Publisher{conn: conn, channel: ch, exchange: cfg.Exchange, log: log}, nil
}

func (p *Publisher) Publish(ctx context.Context, e events.AppointmentEvent) error {
	if p == nil || p.channel == nil {
		return errors.New("rabbitmq publisher not initialized")
	}

	body, err := json.Marshal(toMessage(e))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// amqp.Channel no es seguro para publicar concurrentemente.
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		e.RoutingKey(),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Timestamp:    e.OccurredAt,
			Type:         string(e.Type),
			Body:         body,
		},
	)
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.channel != nil {
		errs = append(errs, p.channel.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

func toMessage(e events.AppointmentEvent) message {
	return message{
		ID:            e.ID,
		AppointmentID: e.AppointmentID,
		Type:          string(e.Type),
		Status:        string(e.Status),
		Date:          e.Date.Format("2006-01-02"),
		Hour:          string(e.Hour),
		VetID:         e.VetID,
		OwnerID:       e.OwnerID,
		PetID:         e.PetID,
		ActorID:       e.ActorID,
		OccurredAt:    e.OccurredAt,
	}
}
