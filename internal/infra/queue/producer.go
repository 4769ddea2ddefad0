package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type LeadProducer struct {
	ch      Publisher
	profile string
	now     func() time.Time
}

func NewLeadProducer(ch Publisher, profile string) *LeadProducer {
	return &LeadProducer{ch: ch, profile: profile, now: time.Now}
}

func (p *LeadProducer) Submit(ctx context.Context, lead entity.Lead) error {
	if p.ch == nil {
		return entity.ErrNotConfigured
	}

	event := entity.NewLeadEvent(lead, p.profile, p.now())

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Timestamp:    event.SubmittedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish lead event: %w", err)
	}
	return nil
}
