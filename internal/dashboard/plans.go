package dashboard

import (
	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func planResource() *resource {
	return &resource{
		path:     "plans",
		singular: "Plan",
		plural:   "Plans",
		list:     listPlans,
		get:      getPlan,
		create:   createPlan,
		update:   updatePlan,
		remove:   func(s *server, id uint) error { return rollout.DeletePlan(s.db, id) },
		table: func(s *server, c *gin.Context) (*table, error) {
			f, err := planFilters(c)
			if err != nil {
				return nil, err
			}
			return planTable(s, f)
		},
		fields: planFields,
		detail: planDetail,
	}
}

func planFilters(c *gin.Context) (rollout.PlanFilters, error) {
	var f rollout.PlanFilters
	var err error
	if f.WorkGroupID, err = queryID(c, "group_id"); err != nil {
		return f, err
	}
	if f.ActivityID, err = queryID(c, "activity_id"); err != nil {
		return f, err
	}
	if f.Status, err = queryStatus(c); err != nil {
		return f, err
	}
	return f, nil
}

func listPlans(s *server, c *gin.Context) (any, error) {
	f, err := planFilters(c)
	if err != nil {
		return nil, err
	}
	plans, err := rollout.ListPlans(s.db, f)
	if err != nil {
		return nil, err
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		out = append(out, newPlanView(p))
	}
	return out, nil
}

func getPlan(s *server, id uint) (any, error) {
	p, err := rollout.GetPlan(s.db, id)
	if err != nil {
		return nil, err
	}
	return newPlanView(*p), nil
}

func createPlan(s *server, in input) (uint, any, error) {
	var pc rollout.PlanCreate
	var err error
	pc.Title = getString(in, "title")
	if pc.StartDate, err = getTime(in, "start_date"); err != nil {
		return 0, nil, err
	}
	if pc.EndDate, _, err = optTime(in, "end_date"); err != nil {
		return 0, nil, err
	}
	if pc.WorkGroupID, err = getUint(in, "work_group_id"); err != nil {
		return 0, nil, err
	}
	if pc.ActivityID, err = getUint(in, "activity_id"); err != nil {
		return 0, nil, err
	}
	p, err := rollout.CreatePlan(s.db, pc)
	if err != nil {
		return 0, nil, err
	}
	return p.ID, newPlanView(*p), nil
}

// updatePlan ignores any supplied status; plan status is derived.
func updatePlan(s *server, id uint, in input) (any, error) {
	pu := rollout.PlanUpdate{Title: optString(in, "title")}
	var err error
	if pu.StartDate, err = reqTime(in, "start_date"); err != nil {
		return nil, err
	}
	if pu.EndDate, pu.ClearEndDate, err = optTime(in, "end_date"); err != nil {
		return nil, err
	}
	if pu.WorkGroupID, err = reqUint(in, "work_group_id"); err != nil {
		return nil, err
	}
	if pu.ActivityID, err = reqUint(in, "activity_id"); err != nil {
		return nil, err
	}
	p, err := rollout.UpdatePlan(s.db, id, pu)
	if err != nil {
		return nil, err
	}
	return newPlanView(*p), nil
}

func planTable(s *server, f rollout.PlanFilters) (*table, error) {
	plans, err := rollout.ListPlans(s.db, f)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/plans", Columns: []string{"Title", "Work group", "Activity", "Start", "End", "Planned", "Status"}}
	for _, p := range plans {
		v := newPlanView(p)
		var group, activity string
		if v.WorkGroup != nil {
			group = v.WorkGroup.Name
		}
		if v.Activity != nil {
			activity = v.Activity.Name
		}
		t.Rows = append(t.Rows, tableRow{ID: v.ID, Cells: []string{
			v.Title, group, activity, fmtDate(v.StartDate), fmtOptDate(v.EndDate),
			report.Hours(p.PlannedDuration()), string(v.Status),
		}})
	}
	return t, nil
}

func planFields(s *server, id uint) ([]formField, error) {
	var title, start, end string
	var groupID, activityID *uint
	if id != 0 {
		p, err := rollout.GetPlan(s.db, id)
		if err != nil {
			return nil, err
		}
		title = p.Title
		start, end = inputValue(&p.StartDate, dateLayout), inputValue(p.EndDate, dateLayout)
		groupID, activityID = &p.WorkGroupID, &p.ActivityID
	}
	group, err := selectField(s.db, "work_group_id", "Work group", "work_groups", "name", true, groupID)
	if err != nil {
		return nil, err
	}
	activity, err := selectField(s.db, "activity_id", "Activity", "activities", "title", true, activityID)
	if err != nil {
		return nil, err
	}
	return []formField{
		{Name: "title", Label: "Title", Type: "text", Value: title, Required: true},
		{Name: "start_date", Label: "Start date", Type: "date", Value: start, Required: true},
		{Name: "end_date", Label: "End date", Type: "date", Value: end, Help: "leave empty for open-ended plans"},
		group,
		activity,
	}, nil
}

func planDetail(s *server, id uint) (*detail, error) {
	p, err := rollout.GetPlan(s.db, id)
	if err != nil {
		return nil, err
	}
	v := newPlanView(*p)
	groupPair, activityPair := pair{Label: "Work group"}, pair{Label: "Activity"}
	if v.WorkGroup != nil {
		groupPair.Value, groupPair.Link = v.WorkGroup.Name, "/groups/"+idString(v.WorkGroup.ID)
	}
	if v.Activity != nil {
		activityPair.Value, activityPair.Link = v.Activity.Name, "/activities/"+idString(v.Activity.ID)
	}
	checkpoints, err := checkpointTable(s, rollout.CheckpointFilters{PlanID: id})
	if err != nil {
		return nil, err
	}
	return &detail{
		Title: v.Title,
		Pairs: []pair{
			{Label: "Status", Value: string(v.Status)},
			groupPair,
			activityPair,
			{Label: "Start", Value: fmtDate(v.StartDate)},
			{Label: "End", Value: fmtOptDate(v.EndDate)},
			{Label: "Planned", Value: report.Hours(p.PlannedDuration())},
			{Label: "Created", Value: fmtTime(v.CreatedAt)},
			{Label: "Updated", Value: fmtTime(v.UpdatedAt)},
		},
		Related: []related{{Title: "Checkpoints", Table: checkpoints}},
	}, nil
}
