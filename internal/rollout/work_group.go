package rollout

import (
	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// WorkGroupCreate holds parameters for creating a work group.
type WorkGroupCreate struct {
	Name          string
	ResponsibleID *uint
}

// WorkGroupUpdate holds the fields to change. ClearResponsible unsets the
// responsible and takes precedence over ResponsibleID.
type WorkGroupUpdate struct {
	Name             *string
	ResponsibleID    *uint
	ClearResponsible bool
}

// WorkGroupFilters holds optional filters for listing work groups.
type WorkGroupFilters struct {
	ResponsibleID uint
	DivisionID    uint // groups with at least one store in the division
}

// GroupTotals is the derived size of a work group.
type GroupTotals struct {
	Stores    int64
	Headcount int64
	SKUs      int64
}

// CreateWorkGroup creates a work group, optionally led by a responsible.
func CreateWorkGroup(db *gorm.DB, in WorkGroupCreate) (*models.WorkGroup, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	g := models.WorkGroup{Name: name, ResponsibleID: in.ResponsibleID}
	err = db.Transaction(func(tx *gorm.DB) error {
		if in.ResponsibleID != nil {
			if err := exists(tx, &models.Responsible{}, "responsible", *in.ResponsibleID); err != nil {
				return err
			}
		}
		return tx.Create(&g).Error
	})
	if err != nil {
		return nil, wrap("create work group", err)
	}
	return GetWorkGroup(db, g.ID)
}

// GetWorkGroup retrieves a work group by ID with its responsible.
func GetWorkGroup(db *gorm.DB, id uint) (*models.WorkGroup, error) {
	var g models.WorkGroup
	if err := db.Preload("Responsible").First(&g, id).Error; err != nil {
		return nil, notFoundOr(err, "work group", id)
	}
	return &g, nil
}

// ListWorkGroups returns work groups matching the filters ordered by name.
func ListWorkGroups(db *gorm.DB, f WorkGroupFilters) ([]models.WorkGroup, error) {
	q := db.Model(&models.WorkGroup{}).Preload("Responsible")
	if f.ResponsibleID != 0 {
		q = q.Where("work_groups.responsible_id = ?", f.ResponsibleID)
	}
	if f.DivisionID != 0 {
		q = q.Where("work_groups.id IN (?)",
			db.Model(&models.Store{}).Select("work_group_id").Where("division_id = ? AND work_group_id IS NOT NULL", f.DivisionID))
	}
	var groups []models.WorkGroup
	if err := q.Order("work_groups.name ASC, work_groups.id ASC").Find(&groups).Error; err != nil {
		return nil, wrap("list work groups", err)
	}
	return groups, nil
}

// UpdateWorkGroup applies the non-nil fields of in.
func UpdateWorkGroup(db *gorm.DB, id uint, in WorkGroupUpdate) (*models.WorkGroup, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var g models.WorkGroup
		if err := tx.First(&g, id).Error; err != nil {
			return notFoundOr(err, "work group", id)
		}
		if in.Name != nil {
			name, err := required("name", *in.Name)
			if err != nil {
				return err
			}
			g.Name = name
		}
		switch {
		case in.ClearResponsible:
			g.ResponsibleID = nil
		case in.ResponsibleID != nil:
			if err := exists(tx, &models.Responsible{}, "responsible", *in.ResponsibleID); err != nil {
				return err
			}
			g.ResponsibleID = in.ResponsibleID
		}
		return tx.Save(&g).Error
	})
	if err != nil {
		return nil, wrap("update work group", err)
	}
	return GetWorkGroup(db, id)
}

// DeleteWorkGroup removes a work group together with its plans and their
// checkpoints. Its stores are kept, unassigned.
func DeleteWorkGroup(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.WorkGroup{}, "work group", id); err != nil {
			return err
		}
		plans := tx.Model(&models.Plan{}).Select("id").Where("work_group_id = ?", id)
		if err := tx.Where("plan_id IN (?)", plans).Delete(&models.Checkpoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("work_group_id = ?", id).Delete(&models.Plan{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Store{}).
			Where("work_group_id = ?", id).
			Update("work_group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.WorkGroup{}, id).Error
	})
	return wrap("delete work group", err)
}

// WorkGroupTotals returns store count, aggregate headcount and SKU total per
// work group ID. Groups without stores are absent.
func WorkGroupTotals(db *gorm.DB) (map[uint]GroupTotals, error) {
	var rows []struct {
		WorkGroupID uint
		Stores      int64
		Headcount   int64
		SKUs        int64 `gorm:"column:skus"`
	}
	err := db.Model(&models.Store{}).
		Select("work_group_id, COUNT(*) AS stores, COALESCE(SUM(headcount), 0) AS headcount, COALESCE(SUM(sku_count), 0) AS skus").
		Where("work_group_id IS NOT NULL").
		Group("work_group_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("work group totals", err)
	}
	out := make(map[uint]GroupTotals, len(rows))
	for _, r := range rows {
		out[r.WorkGroupID] = GroupTotals{Stores: r.Stores, Headcount: r.Headcount, SKUs: r.SKUs}
	}
	return out, nil
}
