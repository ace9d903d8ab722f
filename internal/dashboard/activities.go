package dashboard

import (
	"github.com/ativarub/rollout/internal/models"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func activityResource() *resource {
	return &resource{
		path:     "activities",
		singular: "Activity",
		plural:   "Activities",
		list:     listActivities,
		get:      getActivity,
		create:   createActivity,
		update:   updateActivity,
		remove:   func(s *server, id uint) error { return rollout.DeleteActivity(s.db, id) },
		table: func(s *server, c *gin.Context) (*table, error) {
			status, err := queryStatus(c)
			if err != nil {
				return nil, err
			}
			return activityTable(s, rollout.ActivityFilters{Status: status})
		},
		fields: activityFields,
		detail: activityDetail,
	}
}

// queryStatus reads an optional status filter.
func queryStatus(c *gin.Context) (models.Status, error) {
	raw := c.Query("status")
	if raw == "" {
		return "", nil
	}
	st, err := models.ParseStatus(raw)
	if err != nil {
		return "", badRequest("status: %v", err)
	}
	return st, nil
}

func listActivities(s *server, c *gin.Context) (any, error) {
	status, err := queryStatus(c)
	if err != nil {
		return nil, err
	}
	acts, err := rollout.ListActivities(s.db, rollout.ActivityFilters{Status: status})
	if err != nil {
		return nil, err
	}
	out := make([]activityView, 0, len(acts))
	for _, a := range acts {
		out = append(out, newActivityView(a))
	}
	return out, nil
}

func getActivity(s *server, id uint) (any, error) {
	a, err := rollout.GetActivity(s.db, id)
	if err != nil {
		return nil, err
	}
	return newActivityView(*a), nil
}

func createActivity(s *server, in input) (uint, any, error) {
	a, err := rollout.CreateActivity(s.db, rollout.ActivityCreate{
		Title:       getString(in, "title"),
		Description: getString(in, "description"),
		Status:      getString(in, "status"),
	})
	if err != nil {
		return 0, nil, err
	}
	return a.ID, newActivityView(*a), nil
}

func updateActivity(s *server, id uint, in input) (any, error) {
	a, err := rollout.UpdateActivity(s.db, id, rollout.ActivityUpdate{
		Title:       optString(in, "title"),
		Description: optString(in, "description"),
		Status:      optString(in, "status"),
	})
	if err != nil {
		return nil, err
	}
	return newActivityView(*a), nil
}

func activityTable(s *server, f rollout.ActivityFilters) (*table, error) {
	acts, err := rollout.ListActivities(s.db, f)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/activities", Columns: []string{"Title", "Description", "Status"}}
	for _, a := range acts {
		t.Rows = append(t.Rows, tableRow{ID: a.ID, Cells: []string{a.Title, deref(a.Description), string(a.Status)}})
	}
	return t, nil
}

func activityFields(s *server, id uint) ([]formField, error) {
	var title, desc string
	var status models.Status
	if id != 0 {
		a, err := rollout.GetActivity(s.db, id)
		if err != nil {
			return nil, err
		}
		title, desc, status = a.Title, deref(a.Description), a.Status
	}
	return []formField{
		{Name: "title", Label: "Title", Type: "text", Value: title, Required: true},
		{Name: "description", Label: "Description", Type: "textarea", Value: desc},
		statusField("status", status),
	}, nil
}

func activityDetail(s *server, id uint) (*detail, error) {
	a, err := rollout.GetActivity(s.db, id)
	if err != nil {
		return nil, err
	}
	plans, err := planTable(s, rollout.PlanFilters{ActivityID: id})
	if err != nil {
		return nil, err
	}
	checkpoints, err := checkpointTable(s, rollout.CheckpointFilters{ActivityID: id})
	if err != nil {
		return nil, err
	}
	return &detail{
		Title: a.Title,
		Pairs: []pair{
			{Label: "Description", Value: deref(a.Description)},
			{Label: "Status", Value: string(a.Status)},
			{Label: "Created", Value: fmtTime(a.CreatedAt)},
			{Label: "Updated", Value: fmtTime(a.UpdatedAt)},
		},
		Related: []related{
			{Title: "Plans", Table: plans},
			{Title: "Checkpoints", Table: checkpoints},
		},
	}, nil
}
