package rollout

import (
	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// ResponsibleCreate holds parameters for creating a responsible party.
type ResponsibleCreate struct {
	Name    string
	Contact string
}

// ResponsibleUpdate holds the fields to change. An empty Contact clears it.
type ResponsibleUpdate struct {
	Name    *string
	Contact *string
}

// CreateResponsible creates a responsible party.
func CreateResponsible(db *gorm.DB, in ResponsibleCreate) (*models.Responsible, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	r := models.Responsible{Name: name, Contact: optional(in.Contact)}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&r).Error
	})
	if err != nil {
		return nil, wrap("create responsible", err)
	}
	return &r, nil
}

// GetResponsible retrieves a responsible party by ID.
func GetResponsible(db *gorm.DB, id uint) (*models.Responsible, error) {
	var r models.Responsible
	if err := db.First(&r, id).Error; err != nil {
		return nil, notFoundOr(err, "responsible", id)
	}
	return &r, nil
}

// ListResponsibles returns all responsible parties ordered by name.
func ListResponsibles(db *gorm.DB) ([]models.Responsible, error) {
	var rs []models.Responsible
	if err := db.Order("name ASC, id ASC").Find(&rs).Error; err != nil {
		return nil, wrap("list responsibles", err)
	}
	return rs, nil
}

// ResponsibleGroups returns the work groups led by a responsible party.
func ResponsibleGroups(db *gorm.DB, id uint) ([]models.WorkGroup, error) {
	if err := exists(db, &models.Responsible{}, "responsible", id); err != nil {
		return nil, err
	}
	return ListWorkGroups(db, WorkGroupFilters{ResponsibleID: id})
}

// UpdateResponsible applies the non-nil fields of in.
func UpdateResponsible(db *gorm.DB, id uint, in ResponsibleUpdate) (*models.Responsible, error) {
	var r models.Responsible
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, id).Error; err != nil {
			return notFoundOr(err, "responsible", id)
		}
		if in.Name != nil {
			name, err := required("name", *in.Name)
			if err != nil {
				return err
			}
			r.Name = name
		}
		if in.Contact != nil {
			r.Contact = optional(*in.Contact)
		}
		return tx.Save(&r).Error
	})
	if err != nil {
		return nil, wrap("update responsible", err)
	}
	return &r, nil
}

// DeleteResponsible removes a responsible party. Groups they led are kept
// with no responsible.
func DeleteResponsible(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Responsible{}, "responsible", id); err != nil {
			return err
		}
		if err := tx.Model(&models.WorkGroup{}).
			Where("responsible_id = ?", id).
			Update("responsible_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Responsible{}, id).Error
	})
	return wrap("delete responsible", err)
}
