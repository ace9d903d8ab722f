package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ativarub/rollout/internal/db"
	"github.com/ativarub/rollout/internal/notify"
	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
	"gorm.io/gorm"
)

type captureNotifier struct {
	events []notify.Event
	err    error
}

func (c *captureNotifier) Name() string { return "capture" }

func (c *captureNotifier) Notify(ctx context.Context, evt notify.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *captureNotifier) Close() error { return nil }

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { db.Close(gdb) })
	return gdb
}

func seed(t *testing.T, gdb *gorm.DB) {
	t.Helper()
	div, err := rollout.CreateDivision(gdb, rollout.DivisionCreate{Name: "Apparel"})
	if err != nil {
		t.Fatal(err)
	}
	wg, err := rollout.CreateWorkGroup(gdb, rollout.WorkGroupCreate{Name: "North"})
	if err != nil {
		t.Fatal(err)
	}
	st, err := rollout.CreateStore(gdb, rollout.StoreCreate{Name: "S1", DivisionID: div.ID, WorkGroupID: &wg.ID, Headcount: 12})
	if err != nil {
		t.Fatal(err)
	}
	act, err := rollout.CreateActivity(gdb, rollout.ActivityCreate{Title: "Visual merchandising"})
	if err != nil {
		t.Fatal(err)
	}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	plan, err := rollout.CreatePlan(gdb, rollout.PlanCreate{Title: "Wave 1", StartDate: start, WorkGroupID: wg.ID, ActivityID: act.ID})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rollout.CreateCheckpoint(gdb, rollout.CheckpointCreate{
		Name: "Window", ActivityID: act.ID, StoreID: st.ID, PlanID: &plan.ID,
		Status: "Completed", StartedAt: start,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_EmptyRolloutSkipped(t *testing.T) {
	gdb := openTestDB(t)
	evt, err := Build(gdb, report.Filter{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if evt != nil {
		t.Errorf("expected nil event for empty rollout, got %+v", evt)
	}
}

func TestSendOnce(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)

	n := &captureNotifier{}
	sent, err := SendOnce(context.Background(), gdb, n)
	if err != nil {
		t.Fatalf("SendOnce: %v", err)
	}
	if !sent || len(n.events) != 1 {
		t.Fatalf("sent = %v, events = %d", sent, len(n.events))
	}
	evt := n.events[0]
	if evt.Kind != notify.KindDigest {
		t.Errorf("Kind = %q", evt.Kind)
	}
	if !strings.Contains(evt.Body, "1/1 plans completed") {
		t.Errorf("Body = %q", evt.Body)
	}
	if len(evt.Fields) != 1 || evt.Fields[0].Name != "North" {
		t.Errorf("Fields = %+v", evt.Fields)
	}
}

func TestSendOnce_NotifyError(t *testing.T) {
	gdb := openTestDB(t)
	seed(t, gdb)

	_, err := SendOnce(context.Background(), gdb, &captureNotifier{err: errors.New("offline")})
	if err == nil || !strings.Contains(err.Error(), "digest: send") {
		t.Fatalf("err = %v", err)
	}
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 3, 4, 7, 30, 0, 0, time.UTC) // Monday
	next, err := NextRun("0 8 * * 1-5", from)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}

	if _, err := NextRun("not a cron expr", from); err == nil {
		t.Error("expected error for invalid expression")
	}
}

func TestNewScheduler(t *testing.T) {
	gdb := openTestDB(t)
	if _, err := NewScheduler(gdb, nil, "@daily"); err == nil {
		t.Error("expected error for nil notifier")
	}
	if _, err := NewScheduler(gdb, notify.Nop{}, "whenever"); err == nil {
		t.Error("expected error for invalid schedule")
	}

	s, err := NewScheduler(gdb, notify.Nop{}, "* * * * *")
	if err != nil {
		t.Fatal(err)
	}
	s.now = func() time.Time { return time.Date(2024, 1, 1, 10, 0, 30, 0, time.UTC) }
	if d := s.untilNext(); d != 30*time.Second {
		t.Errorf("untilNext = %v, want 30s", d)
	}
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	gdb := openTestDB(t)
	s, err := NewScheduler(gdb, notify.Nop{}, "@yearly")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
