package notify

import (
	"fmt"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
)

// now is replaced in tests.
var now = time.Now

// statusColor maps a plan status to a sidebar color.
func statusColor(s models.Status) string {
	if s == models.StatusCompleted {
		return ColorSuccess
	}
	return ColorWarning
}

// FormatPlanChange renders a derived plan status change.
func FormatPlanChange(c rollout.PlanChange) Event {
	verb := "reopened"
	if c.To == models.StatusCompleted {
		verb = "completed"
	}
	return Event{
		Kind:  KindPlanStatus,
		Title: fmt.Sprintf("Plan %q %s", c.Title, verb),
		Body:  fmt.Sprintf("Status changed from %s to %s.", c.From, c.To),
		Color: statusColor(c.To),
		Fields: []Field{
			{Name: "Plan", Value: fmt.Sprintf("#%d", c.PlanID), Short: true},
			{Name: "Status", Value: string(c.To), Short: true},
		},
		Key:       fmt.Sprintf("plan-%d", c.PlanID),
		Timestamp: now().UTC(),
	}
}

// FormatPlanChanges renders each change.
func FormatPlanChanges(changes []rollout.PlanChange) []Event {
	out := make([]Event, 0, len(changes))
	for _, c := range changes {
		out = append(out, FormatPlanChange(c))
	}
	return out
}

// FormatDigest renders a rollout summary with one field per work group.
func FormatDigest(s report.Summary, groups []report.GroupRow) Event {
	evt := Event{
		Kind:  KindDigest,
		Title: "Rollout digest",
		Body: fmt.Sprintf("%d/%d plans completed, %d/%d checkpoints completed across %d stores.",
			s.PlansCompleted, s.Plans, s.CheckpointsCompleted, s.Checkpoints, s.Stores),
		Color:     ColorInfo,
		Key:       "digest",
		Timestamp: now().UTC(),
	}
	for _, g := range groups {
		evt.Fields = append(evt.Fields, Field{
			Name:  g.WorkGroupName,
			Value: fmt.Sprintf("%d stores, %d people, %d/%d plans done", g.Stores, g.Headcount, g.PlansCompleted, g.PlansCompleted+g.PlansPending),
			Short: true,
		})
	}
	return evt
}
