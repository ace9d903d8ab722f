package dashboard

import (
	"html/template"
	"strconv"
	"time"

	"github.com/ativarub/rollout/internal/models"
	"github.com/ativarub/rollout/internal/report"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

var templateFuncs = template.FuncMap{
	"hours":       report.Hours,
	"fmtTime":     fmtTime,
	"fmtOptTime":  fmtOptTime,
	"fmtDate":     fmtDate,
	"fmtOptDate":  fmtOptDate,
	"deref":       deref,
	"statusClass": statusClass,
}

// fmtTime formats a timestamp for tables.
func fmtTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func fmtOptTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmtTime(*t)
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(dateLayout)
}

func fmtOptDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmtDate(*t)
}

// deref returns the pointed-to string, or "" for nil.
func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func statusClass(s models.Status) string {
	if s == models.StatusCompleted {
		return "status-completed"
	}
	return "status-pending"
}

// inputValue renders a timestamp for date or datetime-local inputs.
func inputValue(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(layout)
}

func idString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

