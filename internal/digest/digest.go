// Package digest builds the periodic rollout summary and delivers it on a
// cron schedule.
package digest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/notify"
	"github.com/ativarub/rollout/internal/observability"
	"github.com/ativarub/rollout/internal/report"
	"gorm.io/gorm"
)

// Build queries the rollout summary and per-group rollup and renders a
// digest event. It returns nil when there are no plans or checkpoints.
func Build(db *gorm.DB, f report.Filter) (*notify.Event, error) {
	summary, err := report.BuildSummary(db, f)
	if err != nil {
		return nil, fmt.Errorf("digest: summary: %w", err)
	}
	if summary.Plans == 0 && summary.Checkpoints == 0 {
		return nil, nil
	}
	groups, err := report.WorkGroupRollup(db, f)
	if err != nil {
		return nil, fmt.Errorf("digest: work groups: %w", err)
	}
	evt := notify.FormatDigest(summary, groups)
	return &evt, nil
}

// SendOnce builds and delivers one digest. It reports whether a digest was
// sent; an empty rollout is skipped without error.
func SendOnce(ctx context.Context, db *gorm.DB, n notify.Notifier) (bool, error) {
	evt, err := Build(db, report.Filter{})
	if err != nil {
		return false, err
	}
	if evt == nil {
		return false, nil
	}
	if err := n.Notify(ctx, *evt); err != nil {
		return false, fmt.Errorf("digest: send: %w", err)
	}
	observability.RecordDigestSent(evt.Timestamp)
	return true, nil
}

// NextRun returns the first fire time of expr strictly after from.
func NextRun(expr string, from time.Time) (time.Time, error) {
	sched, err := config.ScheduleParser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("digest: parse schedule %q: %w", expr, err)
	}
	return sched.Next(from), nil
}

// Scheduler fires SendOnce at every tick of a cron schedule.
type Scheduler struct {
	db       *gorm.DB
	notifier notify.Notifier
	schedule string
	now      func() time.Time
}

// NewScheduler validates schedule and returns a Scheduler.
func NewScheduler(db *gorm.DB, n notify.Notifier, schedule string) (*Scheduler, error) {
	if n == nil {
		return nil, fmt.Errorf("digest: notifier is required")
	}
	if _, err := NextRun(schedule, time.Now()); err != nil {
		return nil, err
	}
	return &Scheduler{db: db, notifier: n, schedule: schedule, now: time.Now}, nil
}

// untilNext returns the wait before the next tick.
func (s *Scheduler) untilNext() time.Duration {
	now := s.now()
	next, err := NextRun(s.schedule, now)
	if err != nil {
		return 0
	}
	d := next.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Run blocks until ctx is cancelled, sending a digest on each tick.
// Failures are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(s.untilNext())
	defer timer.Stop()

	log.Printf("digest: scheduled %q", s.schedule)
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			sent, err := SendOnce(ctx, s.db, s.notifier)
			switch {
			case err != nil:
				log.Printf("digest: %v", err)
			case !sent:
				log.Printf("digest: nothing to report, skipped")
			}
			timer.Reset(s.untilNext())
		}
	}
}
