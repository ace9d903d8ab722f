// Package kafka publishes rollout events as JSON records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ativarub/rollout/internal/notify"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter abstracts *kafka.Writer for tests.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Notifier writes one record per event, keyed by Event.Key.
type Notifier struct {
	writer messageWriter
	topic  string
}

// Opts holds parameters for creating a Kafka Notifier.
type Opts struct {
	Brokers []string
	Topic   string
	// For testing: inject a writer instead of dialling brokers.
	Writer messageWriter
}

// New creates a Kafka Notifier. Brokers are dialled lazily on first write.
func New(opts Opts) (*Notifier, error) {
	if opts.Writer == nil && len(opts.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if opts.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	w := opts.Writer
	if w == nil {
		w = &kafkago.Writer{
			Addr:         kafkago.TCP(opts.Brokers...),
			Topic:        opts.Topic,
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			BatchTimeout: 50 * time.Millisecond,
		}
	}
	return &Notifier{writer: w, topic: opts.Topic}, nil
}

// Name implements notify.Notifier.
func (n *Notifier) Name() string { return "kafka" }

// Notify implements notify.Notifier.
func (n *Notifier) Notify(ctx context.Context, evt notify.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("kafka: encode event: %w", err)
	}
	ts := evt.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	msg := kafkago.Message{
		Key:   []byte(evt.Key),
		Value: payload,
		Time:  ts,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(evt.Kind)},
		},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", n.topic, err)
	}
	return nil
}

// Close flushes pending writes.
func (n *Notifier) Close() error { return n.writer.Close() }
