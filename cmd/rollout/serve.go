package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/dashboard"
	"github.com/ativarub/rollout/internal/db"
	"github.com/ativarub/rollout/internal/digest"
	"github.com/ativarub/rollout/internal/notify"
	"github.com/ativarub/rollout/internal/notify/discord"
	"github.com/ativarub/rollout/internal/notify/kafka"
	"github.com/ativarub/rollout/internal/notify/slack"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the rollout web server",
		Long: `Serves the HTML dashboard, the JSON API and /metrics. When notify sinks
are configured, plan status changes are published to them; when a digest
schedule is set, the digest runs alongside the server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to rollout config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides server.port)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	defer db.Close(gormDB)

	if port == 0 {
		port = cfg.Server.Port
	}

	notifier, err := buildNotifier(cfg.Notify)
	if err != nil {
		return err
	}
	if notifier != nil {
		defer notifier.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Publishing plan status changes to %s\n", notifierNames(notifier))
	}

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if cfg.Digest.Schedule != "" {
		if notifier == nil {
			log.Printf("serve: digest schedule %q ignored, no notify sink configured", cfg.Digest.Schedule)
		} else {
			sched, err := digest.NewScheduler(gormDB, notifier, cfg.Digest.Schedule)
			if err != nil {
				return err
			}
			go sched.Run(ctx)
		}
	}

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:       gormDB,
		Port:     port,
		Out:      cmd.OutOrStdout(),
		Notifier: notifier,
	})
}

// buildNotifier returns the configured sinks, or nil when none are enabled.
func buildNotifier(nc config.NotifyConfig) (notify.Notifier, error) {
	var sinks notify.Multi

	if nc.Slack.Enabled() {
		n, err := slack.New(slack.Opts{BotToken: nc.Slack.BotToken, ChannelID: nc.Slack.ChannelID})
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, n)
	}
	if nc.Discord.Enabled() {
		n, err := discord.New(discord.Opts{BotToken: nc.Discord.BotToken, ChannelID: nc.Discord.ChannelID})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, n)
	}
	if nc.Kafka.Enabled() {
		n, err := kafka.New(kafka.Opts{Brokers: nc.Kafka.Brokers, Topic: nc.Kafka.Topic})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, n)
	}

	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}

func notifierNames(n notify.Notifier) string {
	m, ok := n.(notify.Multi)
	if !ok {
		return n.Name()
	}
	names := make([]string, len(m))
	for i, s := range m {
		names[i] = s.Name()
	}
	return strings.Join(names, ", ")
}
