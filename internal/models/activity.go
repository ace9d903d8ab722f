package models

import "time"

// Activity is a kind of rollout task, e.g. "install fixture".
type Activity struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Title       string  `gorm:"size:255;not null"`
	Description *string `gorm:"type:text"`
	Status      Status  `gorm:"size:16;not null;default:Pending"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Plans       []Plan       `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
	Checkpoints []Checkpoint `gorm:"foreignKey:ActivityID;constraint:OnDelete:CASCADE"`
}
