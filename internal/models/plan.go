package models

import "time"

// Plan (planejamento) schedules an activity for a work group over a date range.
// Status is derived from the plan's checkpoints and is never set directly.
type Plan struct {
	ID          uint       `gorm:"primaryKey;autoIncrement"`
	Title       string     `gorm:"size:255;not null"`
	StartDate   time.Time  `gorm:"not null;index"`
	EndDate     *time.Time
	Status      Status     `gorm:"size:16;not null;default:Pending;index"`
	WorkGroupID uint       `gorm:"not null;index"`
	ActivityID  uint       `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	WorkGroup   *WorkGroup   `gorm:"foreignKey:WorkGroupID"`
	Activity    *Activity    `gorm:"foreignKey:ActivityID"`
	Checkpoints []Checkpoint `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// PlannedDuration returns EndDate-StartDate, or nil while the plan is open-ended.
func (p Plan) PlannedDuration() *time.Duration {
	return span(p.StartDate, p.EndDate)
}
