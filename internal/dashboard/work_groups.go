package dashboard

import (
	"strconv"

	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func workGroupResource() *resource {
	return &resource{
		path:     "groups",
		singular: "Work group",
		plural:   "Work groups",
		list:     listWorkGroups,
		get:      getWorkGroup,
		create:   createWorkGroup,
		update:   updateWorkGroup,
		remove:   func(s *server, id uint) error { return rollout.DeleteWorkGroup(s.db, id) },
		table: func(s *server, c *gin.Context) (*table, error) {
			f, err := workGroupFilters(c)
			if err != nil {
				return nil, err
			}
			return workGroupTable(s, f)
		},
		fields: workGroupFields,
		detail: workGroupDetail,
	}
}

func workGroupFilters(c *gin.Context) (rollout.WorkGroupFilters, error) {
	var f rollout.WorkGroupFilters
	var err error
	if f.ResponsibleID, err = queryID(c, "responsible_id"); err != nil {
		return f, err
	}
	if f.DivisionID, err = queryID(c, "division_id"); err != nil {
		return f, err
	}
	return f, nil
}

func workGroupViews(s *server, f rollout.WorkGroupFilters) ([]workGroupView, error) {
	groups, err := rollout.ListWorkGroups(s.db, f)
	if err != nil {
		return nil, err
	}
	totals, err := rollout.WorkGroupTotals(s.db)
	if err != nil {
		return nil, err
	}
	out := make([]workGroupView, 0, len(groups))
	for _, g := range groups {
		out = append(out, newWorkGroupView(g, totals[g.ID]))
	}
	return out, nil
}

func listWorkGroups(s *server, c *gin.Context) (any, error) {
	f, err := workGroupFilters(c)
	if err != nil {
		return nil, err
	}
	return workGroupViews(s, f)
}

func getWorkGroup(s *server, id uint) (any, error) {
	g, err := rollout.GetWorkGroup(s.db, id)
	if err != nil {
		return nil, err
	}
	totals, err := rollout.WorkGroupTotals(s.db)
	if err != nil {
		return nil, err
	}
	return newWorkGroupView(*g, totals[id]), nil
}

func createWorkGroup(s *server, in input) (uint, any, error) {
	respID, _, err := optUint(in, "responsible_id")
	if err != nil {
		return 0, nil, err
	}
	g, err := rollout.CreateWorkGroup(s.db, rollout.WorkGroupCreate{
		Name:          getString(in, "name"),
		ResponsibleID: respID,
	})
	if err != nil {
		return 0, nil, err
	}
	return g.ID, newWorkGroupView(*g, rollout.GroupTotals{}), nil
}

func updateWorkGroup(s *server, id uint, in input) (any, error) {
	respID, clearResp, err := optUint(in, "responsible_id")
	if err != nil {
		return nil, err
	}
	if _, err := rollout.UpdateWorkGroup(s.db, id, rollout.WorkGroupUpdate{
		Name:             optString(in, "name"),
		ResponsibleID:    respID,
		ClearResponsible: clearResp,
	}); err != nil {
		return nil, err
	}
	return getWorkGroup(s, id)
}

func workGroupTable(s *server, f rollout.WorkGroupFilters) (*table, error) {
	groups, err := workGroupViews(s, f)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/groups", Columns: []string{"Name", "Responsible", "Stores", "Headcount"}}
	for _, g := range groups {
		resp := ""
		if g.Responsible != nil {
			resp = g.Responsible.Name
		}
		t.Rows = append(t.Rows, tableRow{ID: g.ID, Cells: []string{
			g.Name, resp, strconv.FormatInt(g.StoreCount, 10), strconv.FormatInt(g.Headcount, 10),
		}})
	}
	return t, nil
}

func workGroupFields(s *server, id uint) ([]formField, error) {
	var name string
	var respID *uint
	if id != 0 {
		g, err := rollout.GetWorkGroup(s.db, id)
		if err != nil {
			return nil, err
		}
		name, respID = g.Name, g.ResponsibleID
	}
	resp, err := selectField(s.db, "responsible_id", "Responsible", "responsibles", "name", false, respID)
	if err != nil {
		return nil, err
	}
	return []formField{
		{Name: "name", Label: "Name", Type: "text", Value: name, Required: true},
		resp,
	}, nil
}

func workGroupDetail(s *server, id uint) (*detail, error) {
	body, err := getWorkGroup(s, id)
	if err != nil {
		return nil, err
	}
	g := body.(workGroupView)
	respPair := pair{Label: "Responsible"}
	if g.Responsible != nil {
		respPair.Value = g.Responsible.Name
		respPair.Link = "/responsibles/" + strconv.FormatUint(uint64(g.Responsible.ID), 10)
	}
	stores, err := storeTable(s, rollout.StoreFilters{WorkGroupID: id})
	if err != nil {
		return nil, err
	}
	plans, err := planTable(s, rollout.PlanFilters{WorkGroupID: id})
	if err != nil {
		return nil, err
	}
	return &detail{
		Title: g.Name,
		Pairs: []pair{
			respPair,
			{Label: "Stores", Value: strconv.FormatInt(g.StoreCount, 10)},
			{Label: "Headcount", Value: strconv.FormatInt(g.Headcount, 10)},
			{Label: "Created", Value: fmtTime(g.CreatedAt)},
			{Label: "Updated", Value: fmtTime(g.UpdatedAt)},
		},
		Related: []related{
			{Title: "Stores", Table: stores},
			{Title: "Plans", Table: plans},
		},
	}, nil
}
