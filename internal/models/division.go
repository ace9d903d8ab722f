package models

import "time"

// Division is a retail banner (brand or division) that owns stores.
type Division struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"size:255;not null;uniqueIndex"`
	Contact   *string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Stores []Store `gorm:"foreignKey:DivisionID;constraint:OnDelete:RESTRICT"`
}
