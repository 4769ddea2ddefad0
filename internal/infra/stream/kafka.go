package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/blackbirdmedia/lead-pipeline/internal/entity"
)

const DefaultTopic = "leads.submitted"

// NewSyncProducer connects an idempotent producer that waits for every
// in-sync replica.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Idempotent = true
	cfg.Net.MaxOpenRequests = 1
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return prod, nil
}

// LeadStreamer publishes lead events keyed by email so every event for
// one contact lands on the same partition.
type LeadStreamer struct {
	prod    sarama.SyncProducer
	topic   string
	profile string
	now     func() time.Time
}

func NewLeadStreamer(prod sarama.SyncProducer, topic, profile string) *LeadStreamer {
	if topic == "" {
		topic = DefaultTopic
	}
	return &LeadStreamer{prod: prod, topic: topic, profile: profile, now: time.Now}
}

func (s *LeadStreamer) Submit(ctx context.Context, lead entity.Lead) error {
	if s.prod == nil {
		return entity.ErrNotConfigured
	}

	event := entity.NewLeadEvent(lead, s.profile, s.now())
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal lead event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(lead.Email),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_id"), Value: []byte(event.EventID)},
			{Key: []byte("content-type"), Value: []byte("application/json")},
		},
		Timestamp: event.SubmittedAt,
	}

	// SendMessage ignores the context; the buffered channel lets the send
	// finish after a timeout without leaking the goroutine.
	done := make(chan error, 1)
	go func() {
		_, _, err := s.prod.SendMessage(msg)
		done <- err
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("publish lead event: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("publish lead event: %w", err)
		}
		return nil
	}
}
