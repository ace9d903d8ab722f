package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ativarub/rollout/internal/report"
	"github.com/ativarub/rollout/internal/rollout"
)

const dateLayout = "2006-01-02 15:04"

func printPlanChanges(out io.Writer, changes []rollout.PlanChange) {
	if len(changes) == 0 {
		fmt.Fprintln(out, "All plan statuses are up to date.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAN\tTITLE\tFROM\tTO")
	for _, c := range changes {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.PlanID, c.Title, c.From, c.To)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d plan(s) updated\n", len(changes))
}

func printComparison(out io.Writer, rows []report.ComparisonRow) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "GROUP\tPLAN\tPLAN START\tPLAN END\tSTORE\tCHECKPOINT\tSTARTED\tENDED\tPLANNED\tEXECUTED")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(r.WorkGroupName),
			orDash(r.PlanTitle),
			fmtOptTime(r.PlanStart),
			fmtOptTime(r.PlanEnd),
			r.StoreName,
			r.CheckpointName,
			r.CheckpointStart.Format(dateLayout),
			fmtOptTime(r.CheckpointEnd),
			report.Hours(r.Planned),
			report.Hours(r.Executed),
		)
	}
	w.Flush()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

func fmtOptTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}
