package rollout

import (
	"time"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// CheckpointCreate holds parameters for recording a checkpoint. ActivityID
// may be omitted when PlanID is set; it is then taken from the plan. An
// empty Status means Pending.
type CheckpointCreate struct {
	Name       string
	ActivityID uint
	StoreID    uint
	PlanID     *uint
	Status     string
	StartedAt  time.Time
	EndedAt    *time.Time
	Note       string
}

// CheckpointUpdate holds the fields to change. The Clear flags unset the
// nullable fields and take precedence over their values. An empty Note
// clears it.
type CheckpointUpdate struct {
	Name         *string
	ActivityID   *uint
	StoreID      *uint
	PlanID       *uint
	ClearPlan    bool
	Status       *string
	StartedAt    *time.Time
	EndedAt      *time.Time
	ClearEndedAt bool
	Note         *string
}

// CheckpointFilters holds optional filters for listing checkpoints.
type CheckpointFilters struct {
	ActivityID uint
	StoreID    uint
	PlanID     uint
	Status     models.Status
}

// CheckpointResult is a written checkpoint plus the plan status changes
// the write caused.
type CheckpointResult struct {
	Checkpoint *models.Checkpoint
	Changes    []PlanChange
}

// BatchResult is the outcome of CreateCheckpoints.
type BatchResult struct {
	Checkpoints []models.Checkpoint
	Changes     []PlanChange
}

// CreateCheckpoint records a checkpoint and recomputes its plan's status.
func CreateCheckpoint(db *gorm.DB, in CheckpointCreate) (*CheckpointResult, error) {
	if in.StoreID == 0 {
		return nil, validationf("store is required")
	}
	batch, err := CreateCheckpoints(db, in, []uint{in.StoreID})
	if err != nil {
		return nil, err
	}
	cp, err := GetCheckpoint(db, batch.Checkpoints[0].ID)
	if err != nil {
		return nil, err
	}
	return &CheckpointResult{Checkpoint: cp, Changes: batch.Changes}, nil
}

// CreateCheckpoints records the same checkpoint for each of storeIDs in one
// transaction. in.StoreID is ignored.
func CreateCheckpoints(db *gorm.DB, in CheckpointCreate, storeIDs []uint) (*BatchResult, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	if len(storeIDs) == 0 {
		return nil, validationf("at least one store is required")
	}
	if in.StartedAt.IsZero() {
		return nil, validationf("started_at is required")
	}
	if err := checkRange("ended_at", "started_at", in.StartedAt, in.EndedAt); err != nil {
		return nil, err
	}
	status, err := statusOrDefault(in.Status)
	if err != nil {
		return nil, err
	}

	out := &BatchResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		activityID, err := resolveActivity(tx, in.ActivityID, in.PlanID)
		if err != nil {
			return err
		}
		seen := make(map[uint]bool, len(storeIDs))
		for _, sid := range storeIDs {
			if sid == 0 {
				return validationf("store is required")
			}
			if seen[sid] {
				continue
			}
			seen[sid] = true
			if err := exists(tx, &models.Store{}, "store", sid); err != nil {
				return err
			}
			if err := checkpointKeyFree(tx, name, activityID, sid, 0); err != nil {
				return err
			}
			cp := models.Checkpoint{
				Name:       name,
				ActivityID: activityID,
				StoreID:    sid,
				PlanID:     in.PlanID,
				Status:     status,
				StartedAt:  in.StartedAt,
				EndedAt:    in.EndedAt,
				Note:       optional(in.Note),
			}
			if err := tx.Create(&cp).Error; err != nil {
				return err
			}
			out.Checkpoints = append(out.Checkpoints, cp)
		}
		out.Changes, err = propagate(tx, in.PlanID)
		return err
	})
	if err != nil {
		return nil, wrap("create checkpoint", err)
	}
	return out, nil
}

// GetCheckpoint retrieves a checkpoint by ID with its activity, store and plan.
func GetCheckpoint(db *gorm.DB, id uint) (*models.Checkpoint, error) {
	var cp models.Checkpoint
	if err := checkpointQuery(db).First(&cp, id).Error; err != nil {
		return nil, notFoundOr(err, "checkpoint", id)
	}
	return &cp, nil
}

// ListCheckpoints returns checkpoints matching the filters, most recent first.
func ListCheckpoints(db *gorm.DB, f CheckpointFilters) ([]models.Checkpoint, error) {
	q := checkpointQuery(db.Model(&models.Checkpoint{}))
	if f.ActivityID != 0 {
		q = q.Where("activity_id = ?", f.ActivityID)
	}
	if f.StoreID != 0 {
		q = q.Where("store_id = ?", f.StoreID)
	}
	if f.PlanID != 0 {
		q = q.Where("plan_id = ?", f.PlanID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var cps []models.Checkpoint
	if err := q.Order("started_at DESC, id DESC").Find(&cps).Error; err != nil {
		return nil, wrap("list checkpoints", err)
	}
	return cps, nil
}

// UpdateCheckpoint applies the non-nil fields of in and recomputes the
// status of the old and new plan.
func UpdateCheckpoint(db *gorm.DB, id uint, in CheckpointUpdate) (*CheckpointResult, error) {
	var changes []PlanChange
	err := db.Transaction(func(tx *gorm.DB) error {
		var cp models.Checkpoint
		if err := tx.First(&cp, id).Error; err != nil {
			return notFoundOr(err, "checkpoint", id)
		}
		oldPlan := cp.PlanID

		if in.Name != nil {
			name, err := required("name", *in.Name)
			if err != nil {
				return err
			}
			cp.Name = name
		}
		if in.StoreID != nil {
			if *in.StoreID == 0 {
				return validationf("store is required")
			}
			if err := exists(tx, &models.Store{}, "store", *in.StoreID); err != nil {
				return err
			}
			cp.StoreID = *in.StoreID
		}
		switch {
		case in.ClearPlan:
			cp.PlanID = nil
		case in.PlanID != nil:
			cp.PlanID = in.PlanID
		}
		activityID := cp.ActivityID
		if in.ActivityID != nil {
			if *in.ActivityID == 0 {
				return validationf("activity is required")
			}
			activityID = *in.ActivityID
		}
		if in.ActivityID != nil || in.PlanID != nil {
			resolved, err := resolveActivity(tx, activityID, cp.PlanID)
			if err != nil {
				return err
			}
			cp.ActivityID = resolved
		}
		if in.Status != nil {
			st, err := parseStatus(*in.Status)
			if err != nil {
				return err
			}
			cp.Status = st
		}
		if in.StartedAt != nil {
			if in.StartedAt.IsZero() {
				return validationf("started_at is required")
			}
			cp.StartedAt = *in.StartedAt
		}
		switch {
		case in.ClearEndedAt:
			cp.EndedAt = nil
		case in.EndedAt != nil:
			cp.EndedAt = in.EndedAt
		}
		if err := checkRange("ended_at", "started_at", cp.StartedAt, cp.EndedAt); err != nil {
			return err
		}
		if in.Note != nil {
			cp.Note = optional(*in.Note)
		}
		if err := checkpointKeyFree(tx, cp.Name, cp.ActivityID, cp.StoreID, cp.ID); err != nil {
			return err
		}
		if err := tx.Save(&cp).Error; err != nil {
			return err
		}
		var err error
		changes, err = propagate(tx, oldPlan, cp.PlanID)
		return err
	})
	if err != nil {
		return nil, wrap("update checkpoint", err)
	}
	cp, err := GetCheckpoint(db, id)
	if err != nil {
		return nil, err
	}
	return &CheckpointResult{Checkpoint: cp, Changes: changes}, nil
}

// DeleteCheckpoint removes a checkpoint and recomputes its plan's status.
func DeleteCheckpoint(db *gorm.DB, id uint) ([]PlanChange, error) {
	var changes []PlanChange
	err := db.Transaction(func(tx *gorm.DB) error {
		var cp models.Checkpoint
		if err := tx.First(&cp, id).Error; err != nil {
			return notFoundOr(err, "checkpoint", id)
		}
		if err := tx.Delete(&models.Checkpoint{}, id).Error; err != nil {
			return err
		}
		var err error
		changes, err = propagate(tx, cp.PlanID)
		return err
	})
	if err != nil {
		return nil, wrap("delete checkpoint", err)
	}
	return changes, nil
}

func checkpointQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("Activity").Preload("Store").Preload("Plan")
}

// resolveActivity returns the activity a checkpoint belongs to. With a plan,
// the activity defaults to the plan's and must match it when given.
func resolveActivity(tx *gorm.DB, activityID uint, planID *uint) (uint, error) {
	if planID != nil {
		var plan models.Plan
		if err := tx.Select("id", "activity_id").First(&plan, *planID).Error; err != nil {
			return 0, notFoundOr(err, "plan", *planID)
		}
		if activityID == 0 {
			activityID = plan.ActivityID
		} else if activityID != plan.ActivityID {
			return 0, validationf("activity %d does not match plan %d (activity %d)", activityID, plan.ID, plan.ActivityID)
		}
	}
	if activityID == 0 {
		return 0, validationf("activity is required")
	}
	if err := exists(tx, &models.Activity{}, "activity", activityID); err != nil {
		return 0, err
	}
	return activityID, nil
}

// checkpointKeyFree enforces uniqueness of (name, activity, store).
func checkpointKeyFree(tx *gorm.DB, name string, activityID, storeID, self uint) error {
	var n int64
	q := tx.Model(&models.Checkpoint{}).
		Where("name = ? AND activity_id = ? AND store_id = ?", name, activityID, storeID)
	if self != 0 {
		q = q.Where("id <> ?", self)
	}
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return conflictf("checkpoint %q already exists for activity %d at store %d", name, activityID, storeID)
	}
	return nil
}
