package dashboard

import (
	"github.com/ativarub/rollout/internal/models"
	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func checkpointResource() *resource {
	return &resource{
		path:     "checkpoints",
		singular: "Checkpoint",
		plural:   "Checkpoints",
		list:     listCheckpoints,
		get:      getCheckpoint,
		create:   createCheckpoint,
		update:   updateCheckpoint,
		remove:   deleteCheckpoint,
		table: func(s *server, c *gin.Context) (*table, error) {
			f, err := checkpointFilters(c)
			if err != nil {
				return nil, err
			}
			return checkpointTable(s, f)
		},
		fields: checkpointFields,
		detail: checkpointDetail,
	}
}

func checkpointFilters(c *gin.Context) (rollout.CheckpointFilters, error) {
	var f rollout.CheckpointFilters
	var err error
	if f.ActivityID, err = queryID(c, "activity_id"); err != nil {
		return f, err
	}
	if f.StoreID, err = queryID(c, "store_id"); err != nil {
		return f, err
	}
	if f.PlanID, err = queryID(c, "plan_id"); err != nil {
		return f, err
	}
	if f.Status, err = queryStatus(c); err != nil {
		return f, err
	}
	return f, nil
}

func listCheckpoints(s *server, c *gin.Context) (any, error) {
	f, err := checkpointFilters(c)
	if err != nil {
		return nil, err
	}
	cps, err := rollout.ListCheckpoints(s.db, f)
	if err != nil {
		return nil, err
	}
	out := make([]checkpointView, 0, len(cps))
	for _, cp := range cps {
		out = append(out, newCheckpointView(cp))
	}
	return out, nil
}

func getCheckpoint(s *server, id uint) (any, error) {
	cp, err := rollout.GetCheckpoint(s.db, id)
	if err != nil {
		return nil, err
	}
	return newCheckpointView(*cp), nil
}

func decodeCheckpointCreate(in input) (rollout.CheckpointCreate, error) {
	cc := rollout.CheckpointCreate{
		Name:   getString(in, "name"),
		Status: getString(in, "status"),
		Note:   getString(in, "note"),
	}
	var err error
	if cc.ActivityID, err = getUint(in, "activity_id"); err != nil {
		return cc, err
	}
	if cc.StoreID, err = getUint(in, "store_id"); err != nil {
		return cc, err
	}
	if cc.PlanID, _, err = optUint(in, "plan_id"); err != nil {
		return cc, err
	}
	if cc.StartedAt, err = getTime(in, "started_at"); err != nil {
		return cc, err
	}
	if cc.EndedAt, _, err = optTime(in, "ended_at"); err != nil {
		return cc, err
	}
	return cc, nil
}

// createCheckpoint records one checkpoint, or one per store when store_ids
// is supplied.
func createCheckpoint(s *server, in input) (uint, any, error) {
	cc, err := decodeCheckpointCreate(in)
	if err != nil {
		return 0, nil, err
	}
	storeIDs, batch, err := uintList(in, "store_ids")
	if err != nil {
		return 0, nil, err
	}
	if !batch {
		res, err := rollout.CreateCheckpoint(s.db, cc)
		if err != nil {
			return 0, nil, err
		}
		s.plansChanged(res.Changes)
		return res.Checkpoint.ID, checkpointWrite{
			checkpointView: newCheckpointView(*res.Checkpoint),
			PlanChanges:    nonNilChanges(res.Changes),
		}, nil
	}

	res, err := rollout.CreateCheckpoints(s.db, cc, storeIDs)
	if err != nil {
		return 0, nil, err
	}
	s.plansChanged(res.Changes)
	out := checkpointBatch{
		Checkpoints: make([]checkpointView, 0, len(res.Checkpoints)),
		PlanChanges: nonNilChanges(res.Changes),
	}
	for _, cp := range res.Checkpoints {
		full, err := rollout.GetCheckpoint(s.db, cp.ID)
		if err != nil {
			return 0, nil, err
		}
		out.Checkpoints = append(out.Checkpoints, newCheckpointView(*full))
	}
	var id uint
	if len(res.Checkpoints) == 1 {
		id = res.Checkpoints[0].ID
	}
	return id, out, nil
}

func updateCheckpoint(s *server, id uint, in input) (any, error) {
	cu := rollout.CheckpointUpdate{
		Name:   optString(in, "name"),
		Status: optString(in, "status"),
		Note:   optString(in, "note"),
	}
	var err error
	if cu.ActivityID, err = reqUint(in, "activity_id"); err != nil {
		return nil, err
	}
	if cu.StoreID, err = reqUint(in, "store_id"); err != nil {
		return nil, err
	}
	if cu.PlanID, cu.ClearPlan, err = optUint(in, "plan_id"); err != nil {
		return nil, err
	}
	if cu.StartedAt, err = reqTime(in, "started_at"); err != nil {
		return nil, err
	}
	if cu.EndedAt, cu.ClearEndedAt, err = optTime(in, "ended_at"); err != nil {
		return nil, err
	}
	res, err := rollout.UpdateCheckpoint(s.db, id, cu)
	if err != nil {
		return nil, err
	}
	s.plansChanged(res.Changes)
	return checkpointWrite{
		checkpointView: newCheckpointView(*res.Checkpoint),
		PlanChanges:    nonNilChanges(res.Changes),
	}, nil
}

func deleteCheckpoint(s *server, id uint) error {
	changes, err := rollout.DeleteCheckpoint(s.db, id)
	if err != nil {
		return err
	}
	s.plansChanged(changes)
	return nil
}

func nonNilChanges(changes []rollout.PlanChange) []rollout.PlanChange {
	if changes == nil {
		return []rollout.PlanChange{}
	}
	return changes
}

func checkpointTable(s *server, f rollout.CheckpointFilters) (*table, error) {
	cps, err := rollout.ListCheckpoints(s.db, f)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/checkpoints", Columns: []string{"Name", "Store", "Activity", "Plan", "Started", "Ended", "Elapsed", "Status"}}
	for _, cp := range cps {
		v := newCheckpointView(cp)
		var store, activity, plan string
		if v.Store != nil {
			store = v.Store.Name
		}
		if v.Activity != nil {
			activity = v.Activity.Name
		}
		if v.Plan != nil {
			plan = v.Plan.Name
		}
		t.Rows = append(t.Rows, tableRow{ID: v.ID, Cells: []string{
			v.Name, store, activity, plan, fmtTime(v.StartedAt), fmtOptTime(v.EndedAt),
			report.Hours(cp.Elapsed()), string(v.Status),
		}})
	}
	return t, nil
}

func checkpointFields(s *server, id uint) ([]formField, error) {
	var name, started, ended, note string
	var status models.Status
	var activityID, storeID, planID *uint
	if id != 0 {
		cp, err := rollout.GetCheckpoint(s.db, id)
		if err != nil {
			return nil, err
		}
		name, note, status = cp.Name, deref(cp.Note), cp.Status
		started, ended = inputValue(&cp.StartedAt, dateTimeLayout), inputValue(cp.EndedAt, dateTimeLayout)
		activityID, storeID, planID = &cp.ActivityID, &cp.StoreID, cp.PlanID
	}

	activity, err := selectField(s.db, "activity_id", "Activity", "activities", "title", id != 0, activityID)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		activity.Help = "taken from the plan when a plan is selected"
	}
	plan, err := selectField(s.db, "plan_id", "Plan", "plans", "title", false, planID)
	if err != nil {
		return nil, err
	}

	var store formField
	if id == 0 {
		rows, err := selectOptions(s.db, "stores", "name")
		if err != nil {
			return nil, err
		}
		store = formField{
			Name:     "store_ids",
			Label:    "Stores",
			Type:     "select",
			Required: true,
			Multiple: true,
			Options:  choices(rows, false),
			Help:     "one checkpoint is recorded per selected store",
		}
	} else if store, err = selectField(s.db, "store_id", "Store", "stores", "name", true, storeID); err != nil {
		return nil, err
	}

	return []formField{
		{Name: "name", Label: "Name", Type: "text", Value: name, Required: true},
		plan,
		activity,
		store,
		statusField("status", status),
		{Name: "started_at", Label: "Started at", Type: "datetime-local", Value: started, Required: true},
		{Name: "ended_at", Label: "Ended at", Type: "datetime-local", Value: ended},
		{Name: "note", Label: "Note", Type: "textarea", Value: note},
	}, nil
}

func checkpointDetail(s *server, id uint) (*detail, error) {
	cp, err := rollout.GetCheckpoint(s.db, id)
	if err != nil {
		return nil, err
	}
	v := newCheckpointView(*cp)
	storePair, activityPair, planPair := pair{Label: "Store"}, pair{Label: "Activity"}, pair{Label: "Plan"}
	if v.Store != nil {
		storePair.Value, storePair.Link = v.Store.Name, "/stores/"+idString(v.Store.ID)
	}
	if v.Activity != nil {
		activityPair.Value, activityPair.Link = v.Activity.Name, "/activities/"+idString(v.Activity.ID)
	}
	if v.Plan != nil {
		planPair.Value, planPair.Link = v.Plan.Name, "/plans/"+idString(v.Plan.ID)
	}
	return &detail{
		Title: v.Name,
		Pairs: []pair{
			{Label: "Status", Value: string(v.Status)},
			storePair,
			activityPair,
			planPair,
			{Label: "Started", Value: fmtTime(v.StartedAt)},
			{Label: "Ended", Value: fmtOptTime(v.EndedAt)},
			{Label: "Elapsed", Value: report.Hours(cp.Elapsed())},
			{Label: "Note", Value: deref(v.Note)},
			{Label: "Created", Value: fmtTime(v.CreatedAt)},
			{Label: "Updated", Value: fmtTime(v.UpdatedAt)},
		},
	}, nil
}
