package rollout

import (
	"log"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// PlanChange records a plan whose derived status changed.
type PlanChange struct {
	PlanID uint          `json:"plan_id"`
	Title  string        `json:"title"`
	From   models.Status `json:"from"`
	To     models.Status `json:"to"`
}

// DerivePlanStatus returns Completed if any checkpoint is Completed, else
// Pending. A plan without checkpoints is Pending.
func DerivePlanStatus(checkpoints []models.Status) models.Status {
	for _, s := range checkpoints {
		if s == models.StatusCompleted {
			return models.StatusCompleted
		}
	}
	return models.StatusPending
}

// propagate recomputes the status of each distinct non-nil plan ID inside
// tx. Plans that no longer exist are skipped.
func propagate(tx *gorm.DB, planIDs ...*uint) ([]PlanChange, error) {
	ids := make([]uint, 0, len(planIDs))
	for _, id := range planIDs {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	return propagateIDs(tx, ids)
}

func propagateIDs(tx *gorm.DB, ids []uint) ([]PlanChange, error) {
	var changes []PlanChange
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		change, err := recomputePlanStatus(tx, id)
		if err != nil {
			return nil, err
		}
		if change != nil {
			changes = append(changes, *change)
		}
	}
	return changes, nil
}

func recomputePlanStatus(tx *gorm.DB, planID uint) (*PlanChange, error) {
	var plans []models.Plan
	if err := tx.Select("id", "title", "status").Where("id = ?", planID).Limit(1).Find(&plans).Error; err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, nil
	}
	plan := plans[0]

	var statuses []models.Status
	if err := tx.Model(&models.Checkpoint{}).Where("plan_id = ?", planID).Pluck("status", &statuses).Error; err != nil {
		return nil, err
	}
	to := DerivePlanStatus(statuses)
	if to == plan.Status {
		return nil, nil
	}
	if err := tx.Model(&models.Plan{}).Where("id = ?", planID).Update("status", to).Error; err != nil {
		return nil, err
	}
	return &PlanChange{PlanID: planID, Title: plan.Title, From: plan.Status, To: to}, nil
}

// ReconcilePlans recomputes the status of every plan in one pass and
// returns the plans that changed.
func ReconcilePlans(db *gorm.DB) ([]PlanChange, error) {
	var changes []PlanChange
	err := db.Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			ID        uint
			Title     string
			Status    models.Status
			Completed int64
		}
		err := tx.Model(&models.Plan{}).
			Select("plans.id, plans.title, plans.status, COUNT(checkpoints.id) AS completed").
			Joins("LEFT JOIN checkpoints ON checkpoints.plan_id = plans.id AND checkpoints.status = ?", models.StatusCompleted).
			Group("plans.id, plans.title, plans.status").
			Scan(&rows).Error
		if err != nil {
			return err
		}
		for _, r := range rows {
			to := models.StatusPending
			if r.Completed > 0 {
				to = models.StatusCompleted
			}
			if to == r.Status {
				continue
			}
			if err := tx.Model(&models.Plan{}).Where("id = ?", r.ID).Update("status", to).Error; err != nil {
				return err
			}
			changes = append(changes, PlanChange{PlanID: r.ID, Title: r.Title, From: r.Status, To: to})
		}
		return nil
	})
	if err != nil {
		return nil, wrap("reconcile plans", err)
	}
	if len(changes) > 0 {
		log.Printf("rollout: reconciled %d plan status(es)", len(changes))
	}
	return changes, nil
}
