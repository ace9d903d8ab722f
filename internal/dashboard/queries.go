package dashboard

import (
	"fmt"
	"strconv"

	"github.com/ativarub/rollout/internal/models"
	"gorm.io/gorm"
)

// optionRow is an id/label pair read for select inputs.
type optionRow struct {
	ID    uint
	Label string
}

// selectOptions reads id/label pairs from table. label is a SQL expression.
func selectOptions(db *gorm.DB, table, label string) ([]optionRow, error) {
	var rows []optionRow
	if err := db.Table(table).
		Select(fmt.Sprintf("id, %s AS label", label)).
		Order("label ASC, id ASC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("dashboard: %s options: %w", table, err)
	}
	return rows, nil
}

// choices converts rows into select choices. An optional select gets a
// leading blank entry.
func choices(rows []optionRow, optional bool, selected ...uint) []choice {
	sel := make(map[uint]bool, len(selected))
	for _, id := range selected {
		sel[id] = true
	}
	var out []choice
	if optional {
		out = append(out, choice{Value: "", Label: "(none)", Selected: len(selected) == 0})
	}
	for _, r := range rows {
		out = append(out, choice{
			Value:    strconv.FormatUint(uint64(r.ID), 10),
			Label:    r.Label,
			Selected: sel[r.ID],
		})
	}
	return out
}

// selectField builds a select input over table.
func selectField(db *gorm.DB, name, label, table, labelExpr string, required bool, selected *uint) (formField, error) {
	rows, err := selectOptions(db, table, labelExpr)
	if err != nil {
		return formField{}, err
	}
	var sel []uint
	if selected != nil && *selected != 0 {
		sel = []uint{*selected}
	}
	return formField{
		Name:     name,
		Label:    label,
		Type:     "select",
		Required: required,
		Options:  choices(rows, !required, sel...),
	}, nil
}

func statusField(name string, current models.Status) formField {
	f := formField{Name: name, Label: "Status", Type: "select", Required: true}
	if current == "" {
		current = models.StatusPending
	}
	for _, st := range models.Statuses {
		f.Options = append(f.Options, choice{Value: string(st), Label: string(st), Selected: st == current})
	}
	return f
}
