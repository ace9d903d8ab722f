// Package notify delivers rollout events (plan status changes, digests) to
// chat platforms and event streams.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ativarub/rollout/internal/observability"
)

// Event kinds.
const (
	KindPlanStatus = "plan_status"
	KindDigest     = "digest"
)

// Color constants for event severity.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
)

// Event is a rollout event formatted for display.
type Event struct {
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Color     string    `json:"color"`
	Fields    []Field   `json:"fields"`
	Key       string    `json:"key"` // partition key for streams, e.g. "plan-12"
	Timestamp time.Time `json:"timestamp"`
}

// Field is a key-value pair displayed alongside an event.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Short bool   `json:"short"` // hint: render side-by-side with another field
}

// Notifier delivers events to one destination.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, evt Event) error
	Close() error
}

// Multi fans an event out to every notifier. Failures are counted per sink
// and joined; one failing sink does not stop the others.
type Multi []Notifier

// Name implements Notifier.
func (m Multi) Name() string { return "multi" }

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, evt); err != nil {
			observability.RecordNotifyFailure(n.Name())
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Close implements Notifier.
func (m Multi) Close() error {
	var errs []error
	for _, n := range m {
		if err := n.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Name() string                        { return "nop" }
func (Nop) Notify(context.Context, Event) error { return nil }
func (Nop) Close() error                        { return nil }

// Dispatch delivers events in the background with a bounded timeout and
// logs failures. It never blocks the caller.
func Dispatch(n Notifier, timeout time.Duration, events ...Event) {
	if n == nil || len(events) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		for _, evt := range events {
			if err := n.Notify(ctx, evt); err != nil {
				log.Printf("notify: deliver %q: %v", evt.Title, err)
			}
		}
	}()
}
