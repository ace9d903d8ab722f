package rollout

import (
	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// DivisionCreate holds parameters for creating a division.
type DivisionCreate struct {
	Name    string
	Contact string
}

// DivisionUpdate holds the fields to change. Nil fields are left as is;
// an empty Contact clears it.
type DivisionUpdate struct {
	Name    *string
	Contact *string
}

// CreateDivision creates a division with a unique name.
func CreateDivision(db *gorm.DB, in DivisionCreate) (*models.Division, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	div := models.Division{Name: name, Contact: optional(in.Contact)}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := divisionNameFree(tx, name, 0); err != nil {
			return err
		}
		return tx.Create(&div).Error
	})
	if err != nil {
		return nil, wrap("create division", err)
	}
	return &div, nil
}

// GetDivision retrieves a division by ID.
func GetDivision(db *gorm.DB, id uint) (*models.Division, error) {
	var div models.Division
	if err := db.First(&div, id).Error; err != nil {
		return nil, notFoundOr(err, "division", id)
	}
	return &div, nil
}

// ListDivisions returns all divisions ordered by name.
func ListDivisions(db *gorm.DB) ([]models.Division, error) {
	var divs []models.Division
	if err := db.Order("name ASC").Find(&divs).Error; err != nil {
		return nil, wrap("list divisions", err)
	}
	return divs, nil
}

// UpdateDivision applies the non-nil fields of in.
func UpdateDivision(db *gorm.DB, id uint, in DivisionUpdate) (*models.Division, error) {
	var div models.Division
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&div, id).Error; err != nil {
			return notFoundOr(err, "division", id)
		}
		if in.Name != nil {
			name, err := required("name", *in.Name)
			if err != nil {
				return err
			}
			if err := divisionNameFree(tx, name, id); err != nil {
				return err
			}
			div.Name = name
		}
		if in.Contact != nil {
			div.Contact = optional(*in.Contact)
		}
		return tx.Save(&div).Error
	})
	if err != nil {
		return nil, wrap("update division", err)
	}
	return &div, nil
}

// DeleteDivision removes a division. It is refused while stores reference it.
func DeleteDivision(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		var div models.Division
		if err := tx.First(&div, id).Error; err != nil {
			return notFoundOr(err, "division", id)
		}
		var stores int64
		if err := tx.Model(&models.Store{}).Where("division_id = ?", id).Count(&stores).Error; err != nil {
			return err
		}
		if stores > 0 {
			return conflictf("division %q still has %d store(s)", div.Name, stores)
		}
		return tx.Delete(&models.Division{}, id).Error
	})
	return wrap("delete division", err)
}

// StoreCountsByDivision returns the number of stores per division ID.
func StoreCountsByDivision(db *gorm.DB) (map[uint]int64, error) {
	var rows []struct {
		DivisionID uint
		Count      int64
	}
	err := db.Model(&models.Store{}).
		Select("division_id, COUNT(*) AS count").
		Group("division_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("count stores by division", err)
	}
	out := make(map[uint]int64, len(rows))
	for _, r := range rows {
		out[r.DivisionID] = r.Count
	}
	return out, nil
}

func divisionNameFree(tx *gorm.DB, name string, self uint) error {
	var n int64
	q := tx.Model(&models.Division{}).Where("name = ?", name)
	if self != 0 {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflictf("division %q already exists", name)
	}
	return nil
}
