package report

import (
	"fmt"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// ComparisonRow sets a checkpoint's execution time against its plan's
// scheduled window. Durations are nil whenever the relevant end is unset.
type ComparisonRow struct {
	WorkGroupName   *string        `gorm:"column:work_group_name" json:"work_group_name"`
	PlanID          *uint          `gorm:"column:plan_id" json:"plan_id"`
	PlanTitle       *string        `gorm:"column:plan_title" json:"plan_title"`
	PlanStart       *time.Time     `gorm:"column:plan_start" json:"plan_start"`
	PlanEnd         *time.Time     `gorm:"column:plan_end" json:"plan_end"`
	StoreName       string         `gorm:"column:store_name" json:"store_name"`
	ActivityTitle   string         `gorm:"column:activity_title" json:"activity_title"`
	CheckpointID    uint           `gorm:"column:checkpoint_id" json:"checkpoint_id"`
	CheckpointName  string         `gorm:"column:checkpoint_name" json:"checkpoint_name"`
	Status          models.Status  `gorm:"column:status" json:"status"`
	CheckpointStart time.Time      `gorm:"column:checkpoint_start" json:"checkpoint_start"`
	CheckpointEnd   *time.Time     `gorm:"column:checkpoint_end" json:"checkpoint_end"`
	Planned         *time.Duration `gorm:"-" json:"-"`
	Executed        *time.Duration `gorm:"-" json:"-"`
	PlannedSeconds  *float64       `gorm:"-" json:"planned_seconds"`
	ExecutedSeconds *float64       `gorm:"-" json:"executed_seconds"`
}

// PlannedVsExecuted compares planned and executed durations for every
// checkpoint in scope.
func PlannedVsExecuted(db *gorm.DB, f Filter) ([]ComparisonRow, error) {
	q := db.Table("checkpoints").
		Select(`work_groups.name AS work_group_name,
			plans.id AS plan_id, plans.title AS plan_title,
			plans.start_date AS plan_start, plans.end_date AS plan_end,
			stores.name AS store_name, activities.title AS activity_title,
			checkpoints.id AS checkpoint_id, checkpoints.name AS checkpoint_name,
			checkpoints.status, checkpoints.started_at AS checkpoint_start,
			checkpoints.ended_at AS checkpoint_end`).
		Joins("JOIN activities ON activities.id = checkpoints.activity_id").
		Joins("JOIN stores ON stores.id = checkpoints.store_id").
		Joins("LEFT JOIN plans ON plans.id = checkpoints.plan_id").
		Joins("LEFT JOIN work_groups ON work_groups.id = plans.work_group_id")
	q = checkpointScope(q, f, false)

	var rows []ComparisonRow
	err := q.Order("work_groups.name ASC, plans.start_date ASC, stores.name ASC, checkpoints.started_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("report: planned vs executed: %w", err)
	}
	for i := range rows {
		r := &rows[i]
		if r.PlanStart != nil {
			r.Planned = between(*r.PlanStart, r.PlanEnd)
		}
		r.Executed = between(r.CheckpointStart, r.CheckpointEnd)
		r.PlannedSeconds = seconds(r.Planned)
		r.ExecutedSeconds = seconds(r.Executed)
	}
	return rows, nil
}

func between(start time.Time, end *time.Time) *time.Duration {
	if end == nil {
		return nil
	}
	d := end.Sub(start)
	return &d
}

func seconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}

// Hours renders an optional duration as hours with one decimal, or "-".
func Hours(d *time.Duration) string {
	if d == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
