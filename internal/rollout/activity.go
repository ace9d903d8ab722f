package rollout

import (
	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// ActivityCreate holds parameters for creating an activity. An empty
// Status means Pending.
type ActivityCreate struct {
	Title       string
	Description string
	Status      string
}

// ActivityUpdate holds the fields to change. An empty Description clears it.
type ActivityUpdate struct {
	Title       *string
	Description *string
	Status      *string
}

// ActivityFilters holds optional filters for listing activities.
type ActivityFilters struct {
	Status models.Status
}

// CreateActivity creates an activity.
func CreateActivity(db *gorm.DB, in ActivityCreate) (*models.Activity, error) {
	title, err := required("title", in.Title)
	if err != nil {
		return nil, err
	}
	status, err := statusOrDefault(in.Status)
	if err != nil {
		return nil, err
	}
	a := models.Activity{Title: title, Description: optional(in.Description), Status: status}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&a).Error
	})
	if err != nil {
		return nil, wrap("create activity", err)
	}
	return &a, nil
}

// GetActivity retrieves an activity by ID.
func GetActivity(db *gorm.DB, id uint) (*models.Activity, error) {
	var a models.Activity
	if err := db.First(&a, id).Error; err != nil {
		return nil, notFoundOr(err, "activity", id)
	}
	return &a, nil
}

// ListActivities returns activities ordered by title.
func ListActivities(db *gorm.DB, f ActivityFilters) ([]models.Activity, error) {
	q := db.Model(&models.Activity{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var as []models.Activity
	if err := q.Order("title ASC, id ASC").Find(&as).Error; err != nil {
		return nil, wrap("list activities", err)
	}
	return as, nil
}

// UpdateActivity applies the non-nil fields of in.
func UpdateActivity(db *gorm.DB, id uint, in ActivityUpdate) (*models.Activity, error) {
	var a models.Activity
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return notFoundOr(err, "activity", id)
		}
		if in.Title != nil {
			title, err := required("title", *in.Title)
			if err != nil {
				return err
			}
			a.Title = title
		}
		if in.Description != nil {
			a.Description = optional(*in.Description)
		}
		if in.Status != nil {
			st, err := parseStatus(*in.Status)
			if err != nil {
				return err
			}
			a.Status = st
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, wrap("update activity", err)
	}
	return &a, nil
}

// DeleteActivity removes an activity with all of its plans and checkpoints.
func DeleteActivity(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Activity{}, "activity", id); err != nil {
			return err
		}
		plans := tx.Model(&models.Plan{}).Select("id").Where("activity_id = ?", id)
		if err := tx.Where("activity_id = ? OR plan_id IN (?)", id, plans).Delete(&models.Checkpoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&models.Plan{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Activity{}, id).Error
	})
	return wrap("delete activity", err)
}

func parseStatus(s string) (models.Status, error) {
	st, err := models.ParseStatus(s)
	if err != nil {
		return "", &Error{Kind: ErrValidation, Msg: err.Error()}
	}
	return st, nil
}

func statusOrDefault(s string) (models.Status, error) {
	if s == "" {
		return models.StatusPending, nil
	}
	return parseStatus(s)
}
