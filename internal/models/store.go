package models

import "time"

// Store is a single retail location (loja).
type Store struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:255;not null;index"`
	Address     *string `gorm:"type:text"`
	SKUCount    int     `gorm:"column:sku_count;default:0"`
	Headcount   int     `gorm:"default:0"`
	DivisionID  uint    `gorm:"not null;index"`
	WorkGroupID *uint   `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Division    *Division    `gorm:"foreignKey:DivisionID"`
	WorkGroup   *WorkGroup   `gorm:"foreignKey:WorkGroupID"`
	Checkpoints []Checkpoint `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE"`
}
