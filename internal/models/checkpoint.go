package models

import "time"

// Checkpoint records one execution of an activity at a store, optionally
// under a plan. (Name, ActivityID, StoreID) is unique.
type Checkpoint struct {
	ID         uint       `gorm:"primaryKey;autoIncrement"`
	Name       string     `gorm:"size:150;not null;uniqueIndex:uq_checkpoint_name_activity_store"`
	ActivityID uint       `gorm:"not null;uniqueIndex:uq_checkpoint_name_activity_store"`
	StoreID    uint       `gorm:"not null;uniqueIndex:uq_checkpoint_name_activity_store;index"`
	PlanID     *uint      `gorm:"index"`
	Status     Status     `gorm:"size:16;not null;default:Pending;index"`
	StartedAt  time.Time  `gorm:"not null;index"`
	EndedAt    *time.Time
	Note       *string    `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Activity *Activity `gorm:"foreignKey:ActivityID"`
	Store    *Store    `gorm:"foreignKey:StoreID"`
	Plan     *Plan     `gorm:"foreignKey:PlanID"`
}

// Elapsed returns EndedAt-StartedAt, or nil while the checkpoint is open.
func (c Checkpoint) Elapsed() *time.Duration {
	return span(c.StartedAt, c.EndedAt)
}

func span(start time.Time, end *time.Time) *time.Duration {
	if end == nil {
		return nil
	}
	d := end.Sub(start)
	return &d
}
