package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"github.com/gin-gonic/gin"
)

func TestPlanSnapshotDiff(t *testing.T) {
	snap := planSnapshot{}
	if got := snap.diff([]planState{{ID: 1, Title: "A", Status: models.StatusPending}}); len(got) != 0 {
		t.Fatalf("first sighting should be silent, got %+v", got)
	}
	if got := snap.diff([]planState{{ID: 1, Title: "A", Status: models.StatusPending}}); len(got) != 0 {
		t.Fatalf("unchanged status should be silent, got %+v", got)
	}
	got := snap.diff([]planState{{ID: 1, Title: "A", Status: models.StatusCompleted}})
	if len(got) != 1 || got[0].From != models.StatusPending || got[0].To != models.StatusCompleted {
		t.Errorf("diff = %+v", got)
	}
}

func TestSSE_ConnectedEvent(t *testing.T) {
	ts := newTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := ts.do(req)

	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Errorf("content-type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "event: connected") {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestSSE_StreamsPlanStatus(t *testing.T) {
	ts := newTestServer(t, nil)
	wld := seedWorld(ts)

	s := &server{db: ts.db, pollInterval: 20 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
		router := gin.New()
		router.GET("/api/events", s.handleSSE)
		router.ServeHTTP(w, req)
		close(done)
	}()

	// Let the handler take its snapshot before the plan flips.
	time.Sleep(50 * time.Millisecond)
	if err := ts.db.Model(&models.Plan{}).Where("id = ?", wld.plan).
		Updates(map[string]any{"status": models.StatusCompleted, "updated_at": time.Now().Add(time.Second)}).Error; err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: plan_status") || !strings.Contains(body, `"to":"Completed"`) {
		t.Errorf("body = %q", body)
	}
}
