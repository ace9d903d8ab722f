package main

import (
	"encoding/json"
	"fmt"

	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/db"
	"github.com/ativarub/rollout/internal/report"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var (
		configPath string
		divisionID uint
		groupID    uint
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print planned vs executed durations per checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := report.Filter{DivisionID: divisionID, WorkGroupID: groupID}
			return runReport(cmd, configPath, f, asJSON)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to rollout config file")
	cmd.Flags().UintVar(&divisionID, "division", 0, "only stores in this division")
	cmd.Flags().UintVar(&groupID, "group", 0, "only rows linked to this work group")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func runReport(cmd *cobra.Command, configPath string, f report.Filter, asJSON bool) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	rows, err := report.PlannedVsExecuted(gormDB, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if rows == nil {
			rows = []report.ComparisonRow{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No checkpoint executions found.")
		return nil
	}
	printComparison(out, rows)
	return nil
}
