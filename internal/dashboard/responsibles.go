package dashboard

import (
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func responsibleResource() *resource {
	return &resource{
		path:     "responsibles",
		singular: "Responsible",
		plural:   "Responsibles",
		list:     listResponsibles,
		get:      getResponsible,
		create:   createResponsible,
		update:   updateResponsible,
		remove:   func(s *server, id uint) error { return rollout.DeleteResponsible(s.db, id) },
		table:    responsibleTable,
		fields:   responsibleFields,
		detail:   responsibleDetail,
	}
}

func listResponsibles(s *server, c *gin.Context) (any, error) {
	rs, err := rollout.ListResponsibles(s.db)
	if err != nil {
		return nil, err
	}
	out := make([]responsibleView, 0, len(rs))
	for _, r := range rs {
		out = append(out, newResponsibleView(r))
	}
	return out, nil
}

func getResponsible(s *server, id uint) (any, error) {
	r, err := rollout.GetResponsible(s.db, id)
	if err != nil {
		return nil, err
	}
	return newResponsibleView(*r), nil
}

func createResponsible(s *server, in input) (uint, any, error) {
	r, err := rollout.CreateResponsible(s.db, rollout.ResponsibleCreate{
		Name:    getString(in, "name"),
		Contact: getString(in, "contact"),
	})
	if err != nil {
		return 0, nil, err
	}
	return r.ID, newResponsibleView(*r), nil
}

func updateResponsible(s *server, id uint, in input) (any, error) {
	r, err := rollout.UpdateResponsible(s.db, id, rollout.ResponsibleUpdate{
		Name:    optString(in, "name"),
		Contact: optString(in, "contact"),
	})
	if err != nil {
		return nil, err
	}
	return newResponsibleView(*r), nil
}

func responsibleTable(s *server, c *gin.Context) (*table, error) {
	rs, err := rollout.ListResponsibles(s.db)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/responsibles", Columns: []string{"Name", "Contact"}}
	for _, r := range rs {
		t.Rows = append(t.Rows, tableRow{ID: r.ID, Cells: []string{r.Name, deref(r.Contact)}})
	}
	return t, nil
}

func responsibleFields(s *server, id uint) ([]formField, error) {
	var name, contact string
	if id != 0 {
		r, err := rollout.GetResponsible(s.db, id)
		if err != nil {
			return nil, err
		}
		name, contact = r.Name, deref(r.Contact)
	}
	return []formField{
		{Name: "name", Label: "Name", Type: "text", Value: name, Required: true},
		{Name: "contact", Label: "Contact", Type: "text", Value: contact, Help: "email or phone"},
	}, nil
}

func responsibleDetail(s *server, id uint) (*detail, error) {
	r, err := rollout.GetResponsible(s.db, id)
	if err != nil {
		return nil, err
	}
	groups, err := workGroupTable(s, rollout.WorkGroupFilters{ResponsibleID: id})
	if err != nil {
		return nil, err
	}
	return &detail{
		Title: r.Name,
		Pairs: []pair{
			{Label: "Contact", Value: deref(r.Contact)},
			{Label: "Created", Value: fmtTime(r.CreatedAt)},
			{Label: "Updated", Value: fmtTime(r.UpdatedAt)},
		},
		Related: []related{{Title: "Work groups", Table: groups}},
	}, nil
}
