package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"github.com/ativarub/rollout/internal/notify"
	"github.com/ativarub/rollout/internal/observability"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// plansChanged records and announces derived plan status transitions.
// Delivery is asynchronous and never fails the request.
func (s *server) plansChanged(changes []rollout.PlanChange) {
	if len(changes) == 0 {
		return
	}
	for _, ch := range changes {
		observability.RecordPlanTransition(ch.To)
		log.Printf("dashboard: plan %d %q %s -> %s", ch.PlanID, ch.Title, ch.From, ch.To)
	}
	if s.notifier != nil {
		notify.Dispatch(s.notifier, s.notifyTimeout, notify.FormatPlanChanges(changes)...)
	}
}

// planSnapshot is the last status seen per plan.
type planSnapshot map[uint]models.Status

type planState struct {
	ID        uint
	Title     string
	Status    models.Status
	UpdatedAt time.Time
}

// loadPlanStates reads plans touched at or after since; zero since reads all.
func loadPlanStates(db *gorm.DB, since time.Time) ([]planState, error) {
	q := db.Model(&models.Plan{}).Select("id, title, status, updated_at")
	if !since.IsZero() {
		q = q.Where("updated_at >= ?", since)
	}
	var rows []planState
	if err := q.Order("updated_at ASC, id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("dashboard: load plan states: %w", err)
	}
	return rows, nil
}

// diff updates the snapshot and returns transitions against it. Plans not
// in the snapshot are recorded silently.
func (snap planSnapshot) diff(rows []planState) []rollout.PlanChange {
	var out []rollout.PlanChange
	for _, r := range rows {
		prev, seen := snap[r.ID]
		snap[r.ID] = r.Status
		if seen && prev != r.Status {
			out = append(out, rollout.PlanChange{PlanID: r.ID, Title: r.Title, From: prev, To: r.Status})
		}
	}
	return out
}

// handleSSE streams plan_status events by polling for plans whose derived
// status changed since the client connected.
func (s *server) handleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	rows, err := loadPlanStates(s.db, time.Time{})
	if err != nil {
		abortJSON(c, err)
		return
	}
	snap := planSnapshot{}
	snap.diff(rows)
	since := time.Now()

	writeSSE(c.Writer, "connected", map[string]any{"plans": len(snap)})
	c.Writer.Flush()

	ctx := c.Request.Context()
	ticker := time.NewTicker(s.pollInterval)
	heartbeat := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			// Overlap by one poll so rows committed mid-query are not missed.
			next := time.Now()
			rows, err := loadPlanStates(s.db, since.Add(-s.pollInterval))
			if err != nil {
				log.Printf("dashboard: sse: %v", err)
				continue
			}
			since = next
			for _, ch := range snap.diff(rows) {
				writeSSE(c.Writer, "plan_status", ch)
			}
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
