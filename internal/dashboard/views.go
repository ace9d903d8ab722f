package dashboard

import (
	"time"

	"github.com/ativarub/rollout/internal/models"
	"github.com/ativarub/rollout/internal/rollout"
)

// refView is a shallow reference to a related entity.
type refView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type divisionView struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Contact    *string   `json:"contact"`
	StoreCount int64     `json:"store_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type responsibleView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Contact   *string   `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type workGroupView struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Responsible *refView  `json:"responsible"`
	StoreCount  int64     `json:"store_count"`
	Headcount   int64     `json:"headcount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type storeView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	SKUCount  int       `json:"sku_count"`
	Headcount int       `json:"headcount"`
	Division  *refView  `json:"division"`
	WorkGroup *refView  `json:"work_group"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type activityView struct {
	ID          uint          `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Status      models.Status `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type planView struct {
	ID             uint          `json:"id"`
	Title          string        `json:"title"`
	StartDate      time.Time     `json:"start_date"`
	EndDate        *time.Time    `json:"end_date"`
	Status         models.Status `json:"status"`
	WorkGroup      *refView      `json:"work_group"`
	Activity       *refView      `json:"activity"`
	PlannedSeconds *float64      `json:"planned_seconds"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type checkpointView struct {
	ID              uint          `json:"id"`
	Name            string        `json:"name"`
	Activity        *refView      `json:"activity"`
	Store           *refView      `json:"store"`
	Plan            *refView      `json:"plan"`
	Status          models.Status `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at"`
	Note            *string       `json:"note"`
	DurationSeconds *float64      `json:"duration_seconds"`
	DurationHours   *float64      `json:"duration_hours"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// checkpointWrite is a checkpoint write result: the checkpoint plus any
// plan whose status flipped as a result.
type checkpointWrite struct {
	checkpointView
	PlanChanges []rollout.PlanChange `json:"plan_changes"`
}

// checkpointBatch is the result of creating one checkpoint per store.
type checkpointBatch struct {
	Checkpoints []checkpointView     `json:"checkpoints"`
	PlanChanges []rollout.PlanChange `json:"plan_changes"`
}

func newDivisionView(d models.Division, stores int64) divisionView {
	return divisionView{
		ID:         d.ID,
		Name:       d.Name,
		Contact:    d.Contact,
		StoreCount: stores,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func newResponsibleView(r models.Responsible) responsibleView {
	return responsibleView{ID: r.ID, Name: r.Name, Contact: r.Contact, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func newWorkGroupView(g models.WorkGroup, t rollout.GroupTotals) workGroupView {
	v := workGroupView{
		ID:         g.ID,
		Name:       g.Name,
		StoreCount: t.Stores,
		Headcount:  t.Headcount,
		CreatedAt:  g.CreatedAt,
		UpdatedAt:  g.UpdatedAt,
	}
	if g.Responsible != nil {
		v.Responsible = &refView{ID: g.Responsible.ID, Name: g.Responsible.Name}
	}
	return v
}

func newStoreView(s models.Store) storeView {
	v := storeView{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		SKUCount:  s.SKUCount,
		Headcount: s.Headcount,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Division != nil {
		v.Division = &refView{ID: s.Division.ID, Name: s.Division.Name}
	}
	if s.WorkGroup != nil {
		v.WorkGroup = &refView{ID: s.WorkGroup.ID, Name: s.WorkGroup.Name}
	}
	return v
}

func newActivityView(a models.Activity) activityView {
	return activityView{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func newPlanView(p models.Plan) planView {
	v := planView{
		ID:             p.ID,
		Title:          p.Title,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		Status:         p.Status,
		PlannedSeconds: durationSeconds(p.PlannedDuration()),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.WorkGroup != nil {
		v.WorkGroup = &refView{ID: p.WorkGroup.ID, Name: p.WorkGroup.Name}
	}
	if p.Activity != nil {
		v.Activity = &refView{ID: p.Activity.ID, Name: p.Activity.Title}
	}
	return v
}

func newCheckpointView(cp models.Checkpoint) checkpointView {
	elapsed := cp.Elapsed()
	v := checkpointView{
		ID:              cp.ID,
		Name:            cp.Name,
		Status:          cp.Status,
		StartedAt:       cp.StartedAt,
		EndedAt:         cp.EndedAt,
		Note:            cp.Note,
		DurationSeconds: durationSeconds(elapsed),
		DurationHours:   durationHours(elapsed),
		CreatedAt:       cp.CreatedAt,
		UpdatedAt:       cp.UpdatedAt,
	}
	if cp.Activity != nil {
		v.Activity = &refView{ID: cp.Activity.ID, Name: cp.Activity.Title}
	}
	if cp.Store != nil {
		v.Store = &refView{ID: cp.Store.ID, Name: cp.Store.Name}
	}
	if cp.Plan != nil {
		v.Plan = &refView{ID: cp.Plan.ID, Name: cp.Plan.Title}
	}
	return v
}

func durationSeconds(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	s := d.Seconds()
	return &s
}

func durationHours(d *time.Duration) *float64 {
	if d == nil {
		return nil
	}
	h := d.Hours()
	return &h
}
