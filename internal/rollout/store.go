package rollout

import (
	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// StoreCreate holds parameters for creating a store.
type StoreCreate struct {
	Name        string
	Address     string
	SKUCount    int
	Headcount   int
	DivisionID  uint
	WorkGroupID *uint
}

// StoreUpdate holds the fields to change. ClearWorkGroup unassigns the
// store and takes precedence over WorkGroupID.
type StoreUpdate struct {
	Name           *string
	Address        *string
	SKUCount       *int
	Headcount      *int
	DivisionID     *uint
	WorkGroupID    *uint
	ClearWorkGroup bool
}

// StoreFilters holds optional filters for listing stores.
type StoreFilters struct {
	DivisionID  uint
	WorkGroupID uint
}

// CreateStore creates a store in an existing division.
func CreateStore(db *gorm.DB, in StoreCreate) (*models.Store, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	if in.DivisionID == 0 {
		return nil, validationf("division is required")
	}
	if err := nonNegative(in.SKUCount, in.Headcount); err != nil {
		return nil, err
	}
	s := models.Store{
		Name:        name,
		Address:     optional(in.Address),
		SKUCount:    in.SKUCount,
		Headcount:   in.Headcount,
		DivisionID:  in.DivisionID,
		WorkGroupID: in.WorkGroupID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Division{}, "division", in.DivisionID); err != nil {
			return err
		}
		if in.WorkGroupID != nil {
			if err := exists(tx, &models.WorkGroup{}, "work group", *in.WorkGroupID); err != nil {
				return err
			}
		}
		return tx.Create(&s).Error
	})
	if err != nil {
		return nil, wrap("create store", err)
	}
	return GetStore(db, s.ID)
}

// GetStore retrieves a store by ID with its division and work group.
func GetStore(db *gorm.DB, id uint) (*models.Store, error) {
	var s models.Store
	if err := db.Preload("Division").Preload("WorkGroup").First(&s, id).Error; err != nil {
		return nil, notFoundOr(err, "store", id)
	}
	return &s, nil
}

// ListStores returns stores matching the filters ordered by name.
func ListStores(db *gorm.DB, f StoreFilters) ([]models.Store, error) {
	q := db.Model(&models.Store{}).Preload("Division").Preload("WorkGroup")
	if f.DivisionID != 0 {
		q = q.Where("division_id = ?", f.DivisionID)
	}
	if f.WorkGroupID != 0 {
		q = q.Where("work_group_id = ?", f.WorkGroupID)
	}
	var stores []models.Store
	if err := q.Order("name ASC, id ASC").Find(&stores).Error; err != nil {
		return nil, wrap("list stores", err)
	}
	return stores, nil
}

// UpdateStore applies the non-nil fields of in.
func UpdateStore(db *gorm.DB, id uint, in StoreUpdate) (*models.Store, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var s models.Store
		if err := tx.First(&s, id).Error; err != nil {
			return notFoundOr(err, "store", id)
		}
		if in.Name != nil {
			name, err := required("name", *in.Name)
			if err != nil {
				return err
			}
			s.Name = name
		}
		if in.Address != nil {
			s.Address = optional(*in.Address)
		}
		if in.SKUCount != nil {
			s.SKUCount = *in.SKUCount
		}
		if in.Headcount != nil {
			s.Headcount = *in.Headcount
		}
		if err := nonNegative(s.SKUCount, s.Headcount); err != nil {
			return err
		}
		if in.DivisionID != nil {
			if *in.DivisionID == 0 {
				return validationf("division is required")
			}
			if err := exists(tx, &models.Division{}, "division", *in.DivisionID); err != nil {
				return err
			}
			s.DivisionID = *in.DivisionID
		}
		switch {
		case in.ClearWorkGroup:
			s.WorkGroupID = nil
		case in.WorkGroupID != nil:
			if err := exists(tx, &models.WorkGroup{}, "work group", *in.WorkGroupID); err != nil {
				return err
			}
			s.WorkGroupID = in.WorkGroupID
		}
		return tx.Save(&s).Error
	})
	if err != nil {
		return nil, wrap("update store", err)
	}
	return GetStore(db, id)
}

// DeleteStore removes a store and its checkpoints, then recomputes the
// status of every plan those checkpoints belonged to.
func DeleteStore(db *gorm.DB, id uint) ([]PlanChange, error) {
	var changes []PlanChange
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Store{}, "store", id); err != nil {
			return err
		}
		var planIDs []uint
		if err := tx.Model(&models.Checkpoint{}).
			Where("store_id = ? AND plan_id IS NOT NULL", id).
			Distinct().Pluck("plan_id", &planIDs).Error; err != nil {
			return err
		}
		if err := tx.Where("store_id = ?", id).Delete(&models.Checkpoint{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Store{}, id).Error; err != nil {
			return err
		}
		var err error
		changes, err = propagateIDs(tx, planIDs)
		return err
	})
	if err != nil {
		return nil, wrap("delete store", err)
	}
	return changes, nil
}

func nonNegative(skus, headcount int) error {
	if skus < 0 {
		return validationf("sku_count must not be negative")
	}
	if headcount < 0 {
		return validationf("headcount must not be negative")
	}
	return nil
}
