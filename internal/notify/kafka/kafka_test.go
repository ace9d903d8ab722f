package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ativarub/rollout/internal/notify"
	kafkago "github.com/segmentio/kafka-go"
)

type stubWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (s *stubWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	if s.err != nil {
		return s.err
	}
	s.msgs = append(s.msgs, msgs...)
	return nil
}

func (s *stubWriter) Close() error {
	s.closed = true
	return nil
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Opts{Topic: "t"}); err == nil || !strings.Contains(err.Error(), "broker") {
		t.Errorf("err = %v, want broker error", err)
	}
	if _, err := New(Opts{Brokers: []string{"localhost:9092"}}); err == nil || !strings.Contains(err.Error(), "topic") {
		t.Errorf("err = %v, want topic error", err)
	}
	n, err := New(Opts{Brokers: []string{"localhost:9092"}, Topic: "rollout.plan-status"})
	if err != nil {
		t.Fatalf("New with brokers: %v", err)
	}
	if _, ok := n.writer.(*kafkago.Writer); !ok {
		t.Errorf("writer = %T, want *kafka.Writer", n.writer)
	}
}

func TestNotify_WritesJSON(t *testing.T) {
	w := &stubWriter{}
	n, _ := New(Opts{Topic: "rollout.plan-status", Writer: w})

	evt := notify.Event{
		Kind:      notify.KindPlanStatus,
		Title:     "Plan completed",
		Key:       "plan-7",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := n.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("msgs = %d, want 1", len(w.msgs))
	}
	m := w.msgs[0]
	if string(m.Key) != "plan-7" {
		t.Errorf("Key = %q", m.Key)
	}
	if len(m.Headers) != 1 || string(m.Headers[0].Value) != notify.KindPlanStatus {
		t.Errorf("Headers = %+v", m.Headers)
	}
	var got notify.Event
	if err := json.Unmarshal(m.Value, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Title != "Plan completed" || got.Kind != notify.KindPlanStatus {
		t.Errorf("payload = %+v", got)
	}

	if err := n.Close(); err != nil || !w.closed {
		t.Errorf("Close = %v, closed = %v", err, w.closed)
	}
}

func TestNotify_WriteError(t *testing.T) {
	w := &stubWriter{err: errors.New("leader not available")}
	n, _ := New(Opts{Topic: "t", Writer: w})

	err := n.Notify(context.Background(), notify.Event{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "kafka: write to t") {
		t.Fatalf("err = %v", err)
	}
}
