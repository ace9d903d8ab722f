package report

import (
	"fmt"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// Summary holds entity counts and status breakdowns for one filter.
type Summary struct {
	Divisions            int64 `json:"divisions"`
	Stores               int64 `json:"stores"`
	WorkGroups           int64 `json:"work_groups"`
	Responsibles         int64 `json:"responsibles"`
	Activities           int64 `json:"activities"`
	Plans                int64 `json:"plans"`
	PlansPending         int64 `json:"plans_pending"`
	PlansCompleted       int64 `json:"plans_completed"`
	Checkpoints          int64 `json:"checkpoints"`
	CheckpointsPending   int64 `json:"checkpoints_pending"`
	CheckpointsCompleted int64 `json:"checkpoints_completed"`
}

// Dashboard is the composite view rendered at "/" and /api/dashboard.
type Dashboard struct {
	Filter            Filter          `json:"filter"`
	Summary           Summary         `json:"summary"`
	Divisions         []Option        `json:"divisions"`
	GroupOptions      []Option        `json:"group_options"`
	Stores            []StoreRow      `json:"stores"`
	WorkGroups        []GroupRow      `json:"work_groups"`
	Activities        []ActivityRow   `json:"activities"`
	Plans             []PlanRow       `json:"plans"`
	Schedule          []PlanRow       `json:"schedule"`
	Checkpoints       []CheckpointRow `json:"checkpoints"`
	PlannedVsExecuted []ComparisonRow `json:"planned_vs_executed"`
}

// BuildSummary counts entities in scope. Divisions and responsibles are
// global; the rest honour the filter.
func BuildSummary(db *gorm.DB, f Filter) (Summary, error) {
	var s Summary
	counts := []struct {
		name string
		q    *gorm.DB
		dst  *int64
	}{
		{"divisions", db.Model(&models.Division{}), &s.Divisions},
		{"responsibles", db.Model(&models.Responsible{}), &s.Responsibles},
		{"stores", storeScope(db.Model(&models.Store{}), f), &s.Stores},
		{"work groups", groupScope(db.Model(&models.WorkGroup{}), db, f), &s.WorkGroups},
	}
	for _, c := range counts {
		if err := c.q.Count(c.dst).Error; err != nil {
			return s, fmt.Errorf("report: count %s: %w", c.name, err)
		}
	}

	acts, err := Activities(db, f)
	if err != nil {
		return s, err
	}
	s.Activities = int64(len(acts))

	var plans []struct {
		Status models.Status
		Count  int64
	}
	pq := planScope(db.Table("plans").Select("plans.status, COUNT(*) AS count"), db, f)
	if err := pq.Group("plans.status").Scan(&plans).Error; err != nil {
		return s, fmt.Errorf("report: count plans: %w", err)
	}
	for _, p := range plans {
		s.Plans += p.Count
		if p.Status == models.StatusCompleted {
			s.PlansCompleted += p.Count
		} else {
			s.PlansPending += p.Count
		}
	}

	var cps []struct {
		Status models.Status
		Count  int64
	}
	cq := checkpointScope(db.Table("checkpoints").Select("checkpoints.status, COUNT(*) AS count"), f, true)
	if err := cq.Group("checkpoints.status").Scan(&cps).Error; err != nil {
		return s, fmt.Errorf("report: count checkpoints: %w", err)
	}
	for _, c := range cps {
		s.Checkpoints += c.Count
		if c.Status == models.StatusCompleted {
			s.CheckpointsCompleted += c.Count
		} else {
			s.CheckpointsPending += c.Count
		}
	}
	return s, nil
}

// Build runs every dashboard query for the filter.
func Build(db *gorm.DB, f Filter) (*Dashboard, error) {
	d := &Dashboard{Filter: f}
	var err error
	if d.Summary, err = BuildSummary(db, f); err != nil {
		return nil, err
	}
	if d.Divisions, err = DivisionOptions(db); err != nil {
		return nil, err
	}
	if d.GroupOptions, err = GroupsForDivision(db, f.DivisionID); err != nil {
		return nil, err
	}
	if d.Stores, err = StoreRollup(db, f); err != nil {
		return nil, err
	}
	if d.WorkGroups, err = WorkGroupRollup(db, f); err != nil {
		return nil, err
	}
	if d.Activities, err = Activities(db, f); err != nil {
		return nil, err
	}
	if d.Plans, err = Plans(db, f); err != nil {
		return nil, err
	}
	if d.Schedule, err = PlanSchedule(db, f); err != nil {
		return nil, err
	}
	if d.Checkpoints, err = Checkpoints(db, f); err != nil {
		return nil, err
	}
	if d.PlannedVsExecuted, err = PlannedVsExecuted(db, f); err != nil {
		return nil, err
	}
	return d, nil
}

func storeScope(q *gorm.DB, f Filter) *gorm.DB {
	if f.DivisionID != 0 {
		q = q.Where("division_id = ?", f.DivisionID)
	}
	if f.WorkGroupID != 0 {
		q = q.Where("work_group_id = ?", f.WorkGroupID)
	}
	return q
}

func groupScope(q, db *gorm.DB, f Filter) *gorm.DB {
	if f.DivisionID != 0 {
		q = q.Where("id IN (?)", groupsInDivision(db, f.DivisionID))
	}
	if f.WorkGroupID != 0 {
		q = q.Where("id = ?", f.WorkGroupID)
	}
	return q
}
