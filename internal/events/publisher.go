// Package events streams dispatch lifecycle events to Kafka for downstream
// analytics. Publishing is fire-and-forget; the dispatch protocol never
// blocks on the broker.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type DispatchEvent struct {
	MissionID string    `json:"mission_id"`
	Type      string    `json:"type"`
	DriverID  string    `json:"driver_id,omitempty"`
	Details   string    `json:"details,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns nil when no brokers are configured; a nil Publisher
// is safe to call and drops everything.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ev DispatchEvent) {
	if p == nil {
		return
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b, err := json.Marshal(ev)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.MissionID),
		Value: b,
	}); err != nil {
		slog.Warn("dispatch event publish failed",
			slog.String("mission_id", ev.MissionID),
			slog.String("type", ev.Type),
			slog.String("error", err.Error()),
		)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
