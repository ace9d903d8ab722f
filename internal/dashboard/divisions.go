package dashboard

import (
	"strconv"

	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func divisionResource() *resource {
	return &resource{
		path:     "divisions",
		singular: "Division",
		plural:   "Divisions",
		list:     listDivisions,
		get:      getDivision,
		create:   createDivision,
		update:   updateDivision,
		remove:   func(s *server, id uint) error { return rollout.DeleteDivision(s.db, id) },
		table:    divisionTable,
		fields:   divisionFields,
		detail:   divisionDetail,
	}
}

func listDivisions(s *server, c *gin.Context) (any, error) {
	divs, err := rollout.ListDivisions(s.db)
	if err != nil {
		return nil, err
	}
	counts, err := rollout.StoreCountsByDivision(s.db)
	if err != nil {
		return nil, err
	}
	out := make([]divisionView, 0, len(divs))
	for _, d := range divs {
		out = append(out, newDivisionView(d, counts[d.ID]))
	}
	return out, nil
}

func getDivision(s *server, id uint) (any, error) {
	d, err := rollout.GetDivision(s.db, id)
	if err != nil {
		return nil, err
	}
	counts, err := rollout.StoreCountsByDivision(s.db)
	if err != nil {
		return nil, err
	}
	return newDivisionView(*d, counts[id]), nil
}

func createDivision(s *server, in input) (uint, any, error) {
	d, err := rollout.CreateDivision(s.db, rollout.DivisionCreate{
		Name:    getString(in, "name"),
		Contact: getString(in, "contact"),
	})
	if err != nil {
		return 0, nil, err
	}
	return d.ID, newDivisionView(*d, 0), nil
}

func updateDivision(s *server, id uint, in input) (any, error) {
	_, err := rollout.UpdateDivision(s.db, id, rollout.DivisionUpdate{
		Name:    optString(in, "name"),
		Contact: optString(in, "contact"),
	})
	if err != nil {
		return nil, err
	}
	return getDivision(s, id)
}

func divisionTable(s *server, c *gin.Context) (*table, error) {
	body, err := listDivisions(s, c)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/divisions", Columns: []string{"Name", "Contact", "Stores"}}
	for _, d := range body.([]divisionView) {
		t.Rows = append(t.Rows, tableRow{ID: d.ID, Cells: []string{
			d.Name, deref(d.Contact), strconv.FormatInt(d.StoreCount, 10),
		}})
	}
	return t, nil
}

func divisionFields(s *server, id uint) ([]formField, error) {
	var name, contact string
	if id != 0 {
		d, err := rollout.GetDivision(s.db, id)
		if err != nil {
			return nil, err
		}
		name, contact = d.Name, deref(d.Contact)
	}
	return []formField{
		{Name: "name", Label: "Name", Type: "text", Value: name, Required: true},
		{Name: "contact", Label: "Contact", Type: "text", Value: contact},
	}, nil
}

func divisionDetail(s *server, id uint) (*detail, error) {
	body, err := getDivision(s, id)
	if err != nil {
		return nil, err
	}
	d := body.(divisionView)
	stores, err := storeTable(s, rollout.StoreFilters{DivisionID: id})
	if err != nil {
		return nil, err
	}
	return &detail{
		Title: d.Name,
		Pairs: []pair{
			{Label: "Contact", Value: deref(d.Contact)},
			{Label: "Stores", Value: strconv.FormatInt(d.StoreCount, 10)},
			{Label: "Created", Value: fmtTime(d.CreatedAt)},
			{Label: "Updated", Value: fmtTime(d.UpdatedAt)},
		},
		Related: []related{{Title: "Stores", Table: stores}},
	}, nil
}
