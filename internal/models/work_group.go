package models

import "time"

// WorkGroup is a team that executes activities across a set of stores.
type WorkGroup struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	Name          string `gorm:"size:255;not null;index"`
	ResponsibleID *uint  `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Responsible *Responsible `gorm:"foreignKey:ResponsibleID"`
	Stores      []Store      `gorm:"foreignKey:WorkGroupID;constraint:OnDelete:SET NULL"`
	Plans       []Plan       `gorm:"foreignKey:WorkGroupID;constraint:OnDelete:CASCADE"`
}

// Responsible is the person accountable for one or more work groups.
type Responsible struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"size:255;not null"`
	Contact   *string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	WorkGroups []WorkGroup `gorm:"foreignKey:ResponsibleID;constraint:OnDelete:SET NULL"`
}
