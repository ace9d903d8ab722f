package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"

	"github.com/ativarub/rollout/internal/config"
	"github.com/ativarub/rollout/internal/notify"
)

func TestBuildNotifier_None(t *testing.T) {
	n, err := buildNotifier(config.NotifyConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != nil {
		t.Errorf("notifier = %v, want nil", n)
	}
}

func TestBuildNotifier_AllSinks(t *testing.T) {
	nc := config.NotifyConfig{
		Slack:   config.SlackConfig{BotToken: "xoxb-test", ChannelID: "C1"},
		Discord: config.DiscordConfig{BotToken: "discord-test", ChannelID: "42"},
		Kafka:   config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "rollout.plan-status"},
	}
	n, err := buildNotifier(nc)
	if err != nil {
		t.Fatalf("buildNotifier: %v", err)
	}
	defer n.Close()

	m, ok := n.(notify.Multi)
	if !ok {
		t.Fatalf("notifier type = %T, want notify.Multi", n)
	}
	if len(m) != 3 {
		t.Fatalf("len = %d, want 3", len(m))
	}
	if got := notifierNames(n); got != "slack, discord, kafka" {
		t.Errorf("notifierNames = %q", got)
	}
}

func TestBuildNotifier_KafkaNeedsTopic(t *testing.T) {
	_, err := buildNotifier(config.NotifyConfig{Kafka: config.KafkaConfig{Brokers: []string{"localhost:9092"}}})
	if err == nil || !strings.Contains(err.Error(), "topic is required") {
		t.Errorf("err = %v, want topic error", err)
	}
}

func TestNotifierNames_Single(t *testing.T) {
	if got := notifierNames(notify.Nop{}); got != "nop" {
		t.Errorf("notifierNames = %q, want nop", got)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestServe_StopsOnCancelledContext(t *testing.T) {
	configPath, _ := writeConfig(t, "")
	if _, err := runCmd(t, "", "db", "init", "-c", configPath); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	port := freePort(t)
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "-c", configPath, "-p", fmt.Sprint(port)})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), fmt.Sprintf("http://localhost:%d", port)) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestDigest_RequiresSink(t *testing.T) {
	configPath, _ := writeConfig(t, "")
	_, err := runCmd(t, "", "digest", "--once", "-c", configPath)
	if err == nil || !strings.Contains(err.Error(), "no notify sink configured") {
		t.Errorf("err = %v, want missing sink error", err)
	}
}

func TestDigest_RequiresSchedule(t *testing.T) {
	configPath, _ := writeConfig(t, "notify:\n  kafka:\n    brokers: [\"127.0.0.1:9\"]\n")
	_, err := runCmd(t, "", "digest", "-c", configPath)
	if err == nil || !strings.Contains(err.Error(), "digest.schedule is not set") {
		t.Errorf("err = %v, want missing schedule error", err)
	}
}
