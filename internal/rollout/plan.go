package rollout

import (
	"time"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// PlanCreate holds parameters for creating a plan. Status is not settable;
// a new plan has no checkpoints and starts Pending.
type PlanCreate struct {
	Title       string
	StartDate   time.Time
	EndDate     *time.Time
	WorkGroupID uint
	ActivityID  uint
}

// PlanUpdate holds the fields to change. ClearEndDate makes the plan
// open-ended and takes precedence over EndDate.
type PlanUpdate struct {
	Title        *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	WorkGroupID  *uint
	ActivityID   *uint
}

// PlanFilters holds optional filters for listing plans.
type PlanFilters struct {
	WorkGroupID uint
	ActivityID  uint
	Status      models.Status
}

// CreatePlan schedules an activity for a work group.
func CreatePlan(db *gorm.DB, in PlanCreate) (*models.Plan, error) {
	title, err := required("title", in.Title)
	if err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() {
		return nil, validationf("start_date is required")
	}
	if in.WorkGroupID == 0 {
		return nil, validationf("work group is required")
	}
	if in.ActivityID == 0 {
		return nil, validationf("activity is required")
	}
	if err := checkRange("end_date", "start_date", in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	p := models.Plan{
		Title:       title,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Status:      models.StatusPending,
		WorkGroupID: in.WorkGroupID,
		ActivityID:  in.ActivityID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.WorkGroup{}, "work group", in.WorkGroupID); err != nil {
			return err
		}
		if err := exists(tx, &models.Activity{}, "activity", in.ActivityID); err != nil {
			return err
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, wrap("create plan", err)
	}
	return GetPlan(db, p.ID)
}

// GetPlan retrieves a plan by ID with its work group and activity.
func GetPlan(db *gorm.DB, id uint) (*models.Plan, error) {
	var p models.Plan
	if err := db.Preload("WorkGroup").Preload("Activity").First(&p, id).Error; err != nil {
		return nil, notFoundOr(err, "plan", id)
	}
	return &p, nil
}

// ListPlans returns plans matching the filters ordered by start date.
func ListPlans(db *gorm.DB, f PlanFilters) ([]models.Plan, error) {
	q := db.Model(&models.Plan{}).Preload("WorkGroup").Preload("Activity")
	if f.WorkGroupID != 0 {
		q = q.Where("work_group_id = ?", f.WorkGroupID)
	}
	if f.ActivityID != 0 {
		q = q.Where("activity_id = ?", f.ActivityID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var plans []models.Plan
	if err := q.Order("start_date ASC, id ASC").Find(&plans).Error; err != nil {
		return nil, wrap("list plans", err)
	}
	return plans, nil
}

// UpdatePlan applies the non-nil fields of in. Moving a plan to another
// activity is refused while it has checkpoints of the old one.
func UpdatePlan(db *gorm.DB, id uint, in PlanUpdate) (*models.Plan, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var p models.Plan
		if err := tx.First(&p, id).Error; err != nil {
			return notFoundOr(err, "plan", id)
		}
		if in.Title != nil {
			title, err := required("title", *in.Title)
			if err != nil {
				return err
			}
			p.Title = title
		}
		if in.StartDate != nil {
			if in.StartDate.IsZero() {
				return validationf("start_date is required")
			}
			p.StartDate = *in.StartDate
		}
		switch {
		case in.ClearEndDate:
			p.EndDate = nil
		case in.EndDate != nil:
			p.EndDate = in.EndDate
		}
		if err := checkRange("end_date", "start_date", p.StartDate, p.EndDate); err != nil {
			return err
		}
		if in.WorkGroupID != nil {
			if *in.WorkGroupID == 0 {
				return validationf("work group is required")
			}
			if err := exists(tx, &models.WorkGroup{}, "work group", *in.WorkGroupID); err != nil {
				return err
			}
			p.WorkGroupID = *in.WorkGroupID
		}
		if in.ActivityID != nil && *in.ActivityID == 0 {
			return validationf("activity is required")
		}
		if in.ActivityID != nil && *in.ActivityID != p.ActivityID {
			if err := exists(tx, &models.Activity{}, "activity", *in.ActivityID); err != nil {
				return err
			}
			var n int64
			if err := tx.Model(&models.Checkpoint{}).Where("plan_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return conflictf("plan %d has %d checkpoint(s) for its current activity", id, n)
			}
			p.ActivityID = *in.ActivityID
		}
		return tx.Save(&p).Error
	})
	if err != nil {
		return nil, wrap("update plan", err)
	}
	return GetPlan(db, id)
}

// DeletePlan removes a plan and its checkpoints.
func DeletePlan(db *gorm.DB, id uint) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.Plan{}, "plan", id); err != nil {
			return err
		}
		if err := tx.Where("plan_id = ?", id).Delete(&models.Checkpoint{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Plan{}, id).Error
	})
	return wrap("delete plan", err)
}

// checkRange rejects an end timestamp earlier than its start.
func checkRange(endField, startField string, start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return validationf("%s must not be before %s", endField, startField)
	}
	return nil
}
