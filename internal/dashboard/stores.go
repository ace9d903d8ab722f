package dashboard

import (
	"strconv"

	"github.com/ativarub/rollout/internal/rollout"
	"github.com/gin-gonic/gin"
)

func storeResource() *resource {
	return &resource{
		path:     "stores",
		singular: "Store",
		plural:   "Stores",
		list:     listStores,
		get:      getStore,
		create:   createStore,
		update:   updateStore,
		remove:   deleteStore,
		table: func(s *server, c *gin.Context) (*table, error) {
			f, err := storeFilters(c)
			if err != nil {
				return nil, err
			}
			return storeTable(s, f)
		},
		fields: storeFields,
		detail: storeDetail,
	}
}

func storeFilters(c *gin.Context) (rollout.StoreFilters, error) {
	var f rollout.StoreFilters
	var err error
	if f.DivisionID, err = queryID(c, "division_id"); err != nil {
		return f, err
	}
	if f.WorkGroupID, err = queryID(c, "group_id"); err != nil {
		return f, err
	}
	return f, nil
}

func listStores(s *server, c *gin.Context) (any, error) {
	f, err := storeFilters(c)
	if err != nil {
		return nil, err
	}
	stores, err := rollout.ListStores(s.db, f)
	if err != nil {
		return nil, err
	}
	out := make([]storeView, 0, len(stores))
	for _, st := range stores {
		out = append(out, newStoreView(st))
	}
	return out, nil
}

func getStore(s *server, id uint) (any, error) {
	st, err := rollout.GetStore(s.db, id)
	if err != nil {
		return nil, err
	}
	return newStoreView(*st), nil
}

func createStore(s *server, in input) (uint, any, error) {
	var sc rollout.StoreCreate
	var err error
	sc.Name = getString(in, "name")
	sc.Address = getString(in, "address")
	if sc.SKUCount, err = getInt(in, "sku_count"); err != nil {
		return 0, nil, err
	}
	if sc.Headcount, err = getInt(in, "headcount"); err != nil {
		return 0, nil, err
	}
	if sc.DivisionID, err = getUint(in, "division_id"); err != nil {
		return 0, nil, err
	}
	if sc.WorkGroupID, _, err = optUint(in, "work_group_id"); err != nil {
		return 0, nil, err
	}
	st, err := rollout.CreateStore(s.db, sc)
	if err != nil {
		return 0, nil, err
	}
	return st.ID, newStoreView(*st), nil
}

func updateStore(s *server, id uint, in input) (any, error) {
	su := rollout.StoreUpdate{
		Name:    optString(in, "name"),
		Address: optString(in, "address"),
	}
	var err error
	if su.SKUCount, err = optInt(in, "sku_count"); err != nil {
		return nil, err
	}
	if su.Headcount, err = optInt(in, "headcount"); err != nil {
		return nil, err
	}
	if su.DivisionID, err = reqUint(in, "division_id"); err != nil {
		return nil, err
	}
	if su.WorkGroupID, su.ClearWorkGroup, err = optUint(in, "work_group_id"); err != nil {
		return nil, err
	}
	st, err := rollout.UpdateStore(s.db, id, su)
	if err != nil {
		return nil, err
	}
	return newStoreView(*st), nil
}

func deleteStore(s *server, id uint) error {
	changes, err := rollout.DeleteStore(s.db, id)
	if err != nil {
		return err
	}
	s.plansChanged(changes)
	return nil
}

func storeTable(s *server, f rollout.StoreFilters) (*table, error) {
	stores, err := rollout.ListStores(s.db, f)
	if err != nil {
		return nil, err
	}
	t := &table{Base: "/stores", Columns: []string{"Name", "Division", "Work group", "SKUs", "Headcount"}}
	for _, st := range stores {
		v := newStoreView(st)
		var div, group string
		if v.Division != nil {
			div = v.Division.Name
		}
		if v.WorkGroup != nil {
			group = v.WorkGroup.Name
		}
		t.Rows = append(t.Rows, tableRow{ID: v.ID, Cells: []string{
			v.Name, div, group, strconv.Itoa(v.SKUCount), strconv.Itoa(v.Headcount),
		}})
	}
	return t, nil
}

func storeFields(s *server, id uint) ([]formField, error) {
	var name, address, skus, headcount string
	var divID, groupID *uint
	if id != 0 {
		st, err := rollout.GetStore(s.db, id)
		if err != nil {
			return nil, err
		}
		name, address = st.Name, deref(st.Address)
		skus, headcount = strconv.Itoa(st.SKUCount), strconv.Itoa(st.Headcount)
		divID, groupID = &st.DivisionID, st.WorkGroupID
	}
	div, err := selectField(s.db, "division_id", "Division", "divisions", "name", true, divID)
	if err != nil {
		return nil, err
	}
	group, err := selectField(s.db, "work_group_id", "Work group", "work_groups", "name", false, groupID)
	if err != nil {
		return nil, err
	}
	return []formField{
		{Name: "name", Label: "Name", Type: "text", Value: name, Required: true},
		{Name: "address", Label: "Address", Type: "textarea", Value: address},
		{Name: "sku_count", Label: "SKUs", Type: "number", Value: skus},
		{Name: "headcount", Label: "Headcount", Type: "number", Value: headcount},
		div,
		group,
	}, nil
}

func storeDetail(s *server, id uint) (*detail, error) {
	st, err := rollout.GetStore(s.db, id)
	if err != nil {
		return nil, err
	}
	v := newStoreView(*st)
	pairs := []pair{{Label: "Address", Value: deref(v.Address)}}
	if v.Division != nil {
		pairs = append(pairs, pair{Label: "Division", Value: v.Division.Name, Link: "/divisions/" + idString(v.Division.ID)})
	}
	groupPair := pair{Label: "Work group"}
	if v.WorkGroup != nil {
		groupPair.Value = v.WorkGroup.Name
		groupPair.Link = "/groups/" + idString(v.WorkGroup.ID)
	}
	pairs = append(pairs,
		groupPair,
		pair{Label: "SKUs", Value: strconv.Itoa(v.SKUCount)},
		pair{Label: "Headcount", Value: strconv.Itoa(v.Headcount)},
		pair{Label: "Created", Value: fmtTime(v.CreatedAt)},
		pair{Label: "Updated", Value: fmtTime(v.UpdatedAt)},
	)
	checkpoints, err := checkpointTable(s, rollout.CheckpointFilters{StoreID: id})
	if err != nil {
		return nil, err
	}
	return &detail{
		Title:   v.Name,
		Pairs:   pairs,
		Related: []related{{Title: "Checkpoints", Table: checkpoints}},
	}, nil
}
