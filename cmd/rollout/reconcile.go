package main

import (
	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/db"
	"github.com/ativarub/rollout/internal/rollout"
	"github.com/spf13/cobra"
)

func newReconcileCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute the status of every plan from its checkpoints",
		Long: `Recomputes each plan's status from its checkpoint executions and
persists any difference. Useful after importing data outside the API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconcile(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to rollout config file")
	return cmd
}

func runReconcile(cmd *cobra.Command, configPath string) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	changes, err := rollout.ReconcilePlans(gormDB)
	if err != nil {
		return err
	}
	printPlanChanges(cmd.OutOrStdout(), changes)
	return nil
}
