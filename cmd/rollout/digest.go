package main

import (
	"fmt"
	"time"

	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/db"
	"github.com/ativarub/rollout/internal/digest"
	"github.com/spf13/cobra"
)

func newDigestCmd() *cobra.Command {
	var (
		configPath string
		once       bool
	)

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Send the rollout digest to the configured notify sinks",
		Long: `Without --once, runs until interrupted and sends the digest on every
tick of digest.schedule. With --once, sends a single digest immediately.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDigest(cmd, configPath, once)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to rollout config file")
	cmd.Flags().BoolVar(&once, "once", false, "send one digest now and exit")
	return cmd
}

func runDigest(cmd *cobra.Command, configPath string, once bool) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	notifier, err := buildNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	if notifier == nil {
		return fmt.Errorf("digest: no notify sink configured")
	}
	defer notifier.Close()

	out := cmd.OutOrStdout()
	ctx, cancel := signalContext(cmd)
	defer cancel()

	if once {
		sent, err := digest.SendOnce(ctx, gormDB, notifier)
		if err != nil {
			return err
		}
		if sent {
			fmt.Fprintf(out, "Digest sent to %s\n", notifierNames(notifier))
		} else {
			fmt.Fprintln(out, "Nothing to report, digest skipped.")
		}
		return nil
	}

	if cfg.Digest.Schedule == "" {
		return fmt.Errorf("digest: digest.schedule is not set (use --once to send now)")
	}
	sched, err := digest.NewScheduler(gormDB, notifier, cfg.Digest.Schedule)
	if err != nil {
		return err
	}
	next, _ := digest.NextRun(cfg.Digest.Schedule, time.Now())
	fmt.Fprintf(out, "Digest scheduled %q, next run %s\n", cfg.Digest.Schedule, next.Format(time.RFC3339))
	sched.Run(ctx)
	return nil
}
