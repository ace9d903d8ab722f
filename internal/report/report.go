// Package report runs the read-only aggregation queries behind the
// dashboard. Every query is a single statement with explicit joins.
package report

import (
	"fmt"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// Filter narrows every query. Zero means "all".
type Filter struct {
	DivisionID  uint `json:"division_id"`
	WorkGroupID uint `json:"group_id"`
}

// Option is an id/name pair for select inputs.
type Option struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// StoreRow is one store with its division, work group and responsible.
type StoreRow struct {
	StoreID            uint    `gorm:"column:store_id" json:"store_id"`
	StoreName          string  `gorm:"column:store_name" json:"store_name"`
	SKUCount           int     `gorm:"column:sku_count" json:"sku_count"`
	Headcount          int     `gorm:"column:headcount" json:"headcount"`
	DivisionID         uint    `gorm:"column:division_id" json:"division_id"`
	DivisionName       string  `gorm:"column:division_name" json:"division_name"`
	WorkGroupID        *uint   `gorm:"column:work_group_id" json:"work_group_id"`
	WorkGroupName      *string `gorm:"column:work_group_name" json:"work_group_name"`
	ResponsibleName    *string `gorm:"column:responsible_name" json:"responsible_name"`
	ResponsibleContact *string `gorm:"column:responsible_contact" json:"responsible_contact"`
}

// GroupRow is one work group with its derived totals.
type GroupRow struct {
	WorkGroupID        uint    `gorm:"column:work_group_id" json:"work_group_id"`
	WorkGroupName      string  `gorm:"column:work_group_name" json:"work_group_name"`
	ResponsibleName    *string `gorm:"column:responsible_name" json:"responsible_name"`
	ResponsibleContact *string `gorm:"column:responsible_contact" json:"responsible_contact"`
	Stores             int64   `gorm:"-" json:"store_count"`
	Headcount          int64   `gorm:"-" json:"headcount"`
	SKUs               int64   `gorm:"-" json:"sku_count"`
	PlansPending       int64   `gorm:"-" json:"plans_pending"`
	PlansCompleted     int64   `gorm:"-" json:"plans_completed"`
}

// ActivityRow is one activity in scope.
type ActivityRow struct {
	ActivityID  uint          `gorm:"column:activity_id" json:"activity_id"`
	Title       string        `gorm:"column:title" json:"title"`
	Description *string       `gorm:"column:description" json:"description"`
	Status      models.Status `gorm:"column:status" json:"status"`
}

// PlanRow is one plan with its group and activity. It also serves the
// schedule panel.
type PlanRow struct {
	PlanID              uint           `gorm:"column:plan_id" json:"plan_id"`
	Title               string         `gorm:"column:title" json:"title"`
	Status              models.Status  `gorm:"column:status" json:"status"`
	StartDate           time.Time      `gorm:"column:start_date" json:"start_date"`
	EndDate             *time.Time     `gorm:"column:end_date" json:"end_date"`
	WorkGroupID         uint           `gorm:"column:work_group_id" json:"work_group_id"`
	WorkGroupName       string         `gorm:"column:work_group_name" json:"work_group_name"`
	ActivityID          uint           `gorm:"column:activity_id" json:"activity_id"`
	ActivityTitle       string         `gorm:"column:activity_title" json:"activity_title"`
	ActivityDescription *string        `gorm:"column:activity_description" json:"activity_description"`
	Planned             *time.Duration `gorm:"-" json:"-"`
	PlannedSeconds      *float64       `gorm:"-" json:"planned_seconds"`
}

// CheckpointRow is one checkpoint with its store, activity and plan.
type CheckpointRow struct {
	CheckpointID    uint           `gorm:"column:checkpoint_id" json:"checkpoint_id"`
	Name            string         `gorm:"column:name" json:"name"`
	Status          models.Status  `gorm:"column:status" json:"status"`
	StartedAt       time.Time      `gorm:"column:started_at" json:"started_at"`
	EndedAt         *time.Time     `gorm:"column:ended_at" json:"ended_at"`
	StoreID         uint           `gorm:"column:store_id" json:"store_id"`
	StoreName       string         `gorm:"column:store_name" json:"store_name"`
	ActivityID      uint           `gorm:"column:activity_id" json:"activity_id"`
	ActivityTitle   string         `gorm:"column:activity_title" json:"activity_title"`
	PlanID          *uint          `gorm:"column:plan_id" json:"plan_id"`
	PlanTitle       *string        `gorm:"column:plan_title" json:"plan_title"`
	Executed        *time.Duration `gorm:"-" json:"-"`
	ExecutedSeconds *float64       `gorm:"-" json:"executed_seconds"`
}

// StoreRollup lists stores with their division, group and responsible.
func StoreRollup(db *gorm.DB, f Filter) ([]StoreRow, error) {
	q := db.Table("stores").
		Select(`stores.id AS store_id, stores.name AS store_name, stores.sku_count, stores.headcount,
			divisions.id AS division_id, divisions.name AS division_name,
			work_groups.id AS work_group_id, work_groups.name AS work_group_name,
			responsibles.name AS responsible_name, responsibles.contact AS responsible_contact`).
		Joins("JOIN divisions ON divisions.id = stores.division_id").
		Joins("LEFT JOIN work_groups ON work_groups.id = stores.work_group_id").
		Joins("LEFT JOIN responsibles ON responsibles.id = work_groups.responsible_id")
	if f.DivisionID != 0 {
		q = q.Where("stores.division_id = ?", f.DivisionID)
	}
	if f.WorkGroupID != 0 {
		q = q.Where("stores.work_group_id = ?", f.WorkGroupID)
	}
	var rows []StoreRow
	if err := q.Order("stores.name ASC, stores.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report: store rollup: %w", err)
	}
	return rows, nil
}

// WorkGroupRollup lists work groups with responsible, store totals and plan
// counts. With a division filter only groups (and stores) in that division
// are counted.
func WorkGroupRollup(db *gorm.DB, f Filter) ([]GroupRow, error) {
	q := db.Table("work_groups").
		Select(`work_groups.id AS work_group_id, work_groups.name AS work_group_name,
			responsibles.name AS responsible_name, responsibles.contact AS responsible_contact`).
		Joins("LEFT JOIN responsibles ON responsibles.id = work_groups.responsible_id")
	if f.DivisionID != 0 {
		q = q.Where("work_groups.id IN (?)", groupsInDivision(db, f.DivisionID))
	}
	if f.WorkGroupID != 0 {
		q = q.Where("work_groups.id = ?", f.WorkGroupID)
	}
	var rows []GroupRow
	if err := q.Order("work_groups.name ASC, work_groups.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report: work group rollup: %w", err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	var totals []struct {
		WorkGroupID uint
		Stores      int64
		Headcount   int64
		SKUs        int64 `gorm:"column:skus"`
	}
	tq := db.Table("stores").
		Select("work_group_id, COUNT(*) AS stores, COALESCE(SUM(headcount), 0) AS headcount, COALESCE(SUM(sku_count), 0) AS skus").
		Where("work_group_id IS NOT NULL")
	if f.DivisionID != 0 {
		tq = tq.Where("division_id = ?", f.DivisionID)
	}
	if err := tq.Group("work_group_id").Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("report: work group totals: %w", err)
	}

	var plans []struct {
		WorkGroupID uint
		Status      models.Status
		Count       int64
	}
	if err := db.Table("plans").
		Select("work_group_id, status, COUNT(*) AS count").
		Group("work_group_id, status").
		Scan(&plans).Error; err != nil {
		return nil, fmt.Errorf("report: plan counts: %w", err)
	}

	index := make(map[uint]*GroupRow, len(rows))
	for i := range rows {
		index[rows[i].WorkGroupID] = &rows[i]
	}
	for _, t := range totals {
		if r, ok := index[t.WorkGroupID]; ok {
			r.Stores, r.Headcount, r.SKUs = t.Stores, t.Headcount, t.SKUs
		}
	}
	for _, p := range plans {
		r, ok := index[p.WorkGroupID]
		if !ok {
			continue
		}
		switch p.Status {
		case models.StatusCompleted:
			r.PlansCompleted += p.Count
		default:
			r.PlansPending += p.Count
		}
	}
	return rows, nil
}

// Activities lists activities linked to the filter through plans or
// checkpoints.
func Activities(db *gorm.DB, f Filter) ([]ActivityRow, error) {
	q := db.Table("activities").
		Select("activities.id AS activity_id, activities.title, activities.description, activities.status")
	if f.DivisionID != 0 || f.WorkGroupID != 0 {
		viaPlans := planScope(db.Table("plans").Select("plans.activity_id"), db, f)
		viaCheckpoints := checkpointScope(db.Table("checkpoints").Select("checkpoints.activity_id"), f, true)
		q = q.Where("activities.id IN (?) OR activities.id IN (?)", viaPlans, viaCheckpoints)
	}
	var rows []ActivityRow
	if err := q.Order("activities.title ASC, activities.id ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report: activities: %w", err)
	}
	return rows, nil
}

// Plans lists plans of the filtered groups, earliest first.
func Plans(db *gorm.DB, f Filter) ([]PlanRow, error) {
	return planRows(db, f, "plans.start_date ASC, plans.id ASC")
}

// PlanSchedule lists plans grouped by work group, then by start date.
func PlanSchedule(db *gorm.DB, f Filter) ([]PlanRow, error) {
	return planRows(db, f, "work_groups.name ASC, plans.start_date ASC, plans.id ASC")
}

func planRows(db *gorm.DB, f Filter, order string) ([]PlanRow, error) {
	q := db.Table("plans").
		Select(`plans.id AS plan_id, plans.title, plans.status, plans.start_date, plans.end_date,
			work_groups.id AS work_group_id, work_groups.name AS work_group_name,
			activities.id AS activity_id, activities.title AS activity_title,
			activities.description AS activity_description`).
		Joins("JOIN work_groups ON work_groups.id = plans.work_group_id").
		Joins("JOIN activities ON activities.id = plans.activity_id")
	q = planScope(q, db, f)
	var rows []PlanRow
	if err := q.Order(order).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report: plans: %w", err)
	}
	for i := range rows {
		rows[i].Planned = between(rows[i].StartDate, rows[i].EndDate)
		rows[i].PlannedSeconds = seconds(rows[i].Planned)
	}
	return rows, nil
}

// Checkpoints lists checkpoints whose store or plan is in scope, most
// recent first.
func Checkpoints(db *gorm.DB, f Filter) ([]CheckpointRow, error) {
	q := db.Table("checkpoints").
		Select(`checkpoints.id AS checkpoint_id, checkpoints.name, checkpoints.status,
			checkpoints.started_at, checkpoints.ended_at,
			stores.id AS store_id, stores.name AS store_name,
			activities.id AS activity_id, activities.title AS activity_title,
			plans.id AS plan_id, plans.title AS plan_title`).
		Joins("JOIN stores ON stores.id = checkpoints.store_id").
		Joins("JOIN activities ON activities.id = checkpoints.activity_id").
		Joins("LEFT JOIN plans ON plans.id = checkpoints.plan_id")
	q = checkpointScope(q, f, false)
	var rows []CheckpointRow
	if err := q.Order("checkpoints.started_at DESC, checkpoints.id DESC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("report: checkpoints: %w", err)
	}
	for i := range rows {
		rows[i].Executed = between(rows[i].StartedAt, rows[i].EndedAt)
		rows[i].ExecutedSeconds = seconds(rows[i].Executed)
	}
	return rows, nil
}

// GroupsForDivision returns the work groups with at least one store in the
// division, or every group when divisionID is zero.
func GroupsForDivision(db *gorm.DB, divisionID uint) ([]Option, error) {
	q := db.Table("work_groups").Select("id, name")
	if divisionID != 0 {
		q = q.Where("id IN (?)", groupsInDivision(db, divisionID))
	}
	var opts []Option
	if err := q.Order("name ASC, id ASC").Scan(&opts).Error; err != nil {
		return nil, fmt.Errorf("report: groups for division %d: %w", divisionID, err)
	}
	return opts, nil
}

// DivisionOptions returns every division as an Option.
func DivisionOptions(db *gorm.DB) ([]Option, error) {
	var opts []Option
	if err := db.Table("divisions").Select("id, name").Order("name ASC, id ASC").Scan(&opts).Error; err != nil {
		return nil, fmt.Errorf("report: division options: %w", err)
	}
	return opts, nil
}

func groupsInDivision(db *gorm.DB, divisionID uint) *gorm.DB {
	return db.Table("stores").
		Select("work_group_id").
		Where("division_id = ? AND work_group_id IS NOT NULL", divisionID)
}

// planScope restricts a query over plans to the filter.
func planScope(q, db *gorm.DB, f Filter) *gorm.DB {
	if f.DivisionID != 0 {
		q = q.Where("plans.work_group_id IN (?)", groupsInDivision(db, f.DivisionID))
	}
	if f.WorkGroupID != 0 {
		q = q.Where("plans.work_group_id = ?", f.WorkGroupID)
	}
	return q
}

// checkpointScope restricts a query over checkpoints to the filter. Set
// withJoins when the query has not joined stores and plans yet.
func checkpointScope(q *gorm.DB, f Filter, withJoins bool) *gorm.DB {
	if f.DivisionID == 0 && f.WorkGroupID == 0 {
		return q
	}
	if withJoins {
		q = q.Joins("JOIN stores ON stores.id = checkpoints.store_id").
			Joins("LEFT JOIN plans ON plans.id = checkpoints.plan_id")
	}
	if f.DivisionID != 0 {
		q = q.Where("stores.division_id = ?", f.DivisionID)
	}
	if f.WorkGroupID != 0 {
		q = q.Where("(stores.work_group_id = ? OR plans.work_group_id = ?)", f.WorkGroupID, f.WorkGroupID)
	}
	return q
}
