package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
database:
  driver: mysql
  host: 10.0.0.5
  port: 3307
  user: rollout
  password: s3cret
  name: rollout_prod

server:
  port: 9090

divisions:
  - name: Apparel
    contact: apparel@example.com
  - name: Footwear

notify:
  slack:
    bot_token: xoxb-123
    channel_id: C0123
  discord:
    bot_token: discord-abc
    channel_id: "998877"
  kafka:
    brokers: ["kafka-1:9092", "kafka-2:9092"]
    topic: rollout.events

digest:
  schedule: "0 8 * * 1-5"
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	db := cfg.Database
	if db.Driver != DriverMySQL {
		t.Errorf("Database.Driver = %q, want %q", db.Driver, DriverMySQL)
	}
	if db.Host != "10.0.0.5" || db.Port != 3307 {
		t.Errorf("Database host:port = %s:%d, want 10.0.0.5:3307", db.Host, db.Port)
	}
	if db.User != "rollout" || db.Password != "s3cret" || db.Name != "rollout_prod" {
		t.Errorf("Database credentials = %+v", db)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if len(cfg.Divisions) != 2 {
		t.Fatalf("len(Divisions) = %d, want 2", len(cfg.Divisions))
	}
	if cfg.Divisions[0].Contact != "apparel@example.com" {
		t.Errorf("Divisions[0].Contact = %q", cfg.Divisions[0].Contact)
	}
	if !cfg.Notify.Slack.Enabled() || !cfg.Notify.Discord.Enabled() || !cfg.Notify.Kafka.Enabled() {
		t.Errorf("all notify sinks should be enabled: %+v", cfg.Notify)
	}
	if cfg.Notify.Kafka.Topic != "rollout.events" {
		t.Errorf("Kafka.Topic = %q, want rollout.events", cfg.Notify.Kafka.Topic)
	}
	if cfg.Digest.Schedule != "0 8 * * 1-5" {
		t.Errorf("Digest.Schedule = %q", cfg.Digest.Schedule)
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Database.Path != "rollout.db" {
		t.Errorf("Path = %q, want rollout.db", cfg.Database.Path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Notify.Slack.Enabled() || cfg.Notify.Discord.Enabled() || cfg.Notify.Kafka.Enabled() {
		t.Error("no notify sink should be enabled by default")
	}
}

func TestParse_MySQLDefaults(t *testing.T) {
	cfg, err := Parse([]byte("database:\n  driver: mysql\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	db := cfg.Database
	if db.Host != "127.0.0.1" || db.Port != 3306 || db.User != "root" || db.Name != "rollout" {
		t.Errorf("mysql defaults = %+v", db)
	}
}

func TestParse_KafkaDefaultTopic(t *testing.T) {
	cfg, err := Parse([]byte("notify:\n  kafka:\n    brokers: [\"localhost:9092\"]\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Notify.Kafka.Topic != "rollout.plan-status" {
		t.Errorf("Kafka.Topic = %q, want rollout.plan-status", cfg.Notify.Kafka.Topic)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ROLLOUT_DB_PASSWORD", "from-env")
	t.Setenv("ROLLOUT_SLACK_TOKEN", "xoxb-env")
	t.Setenv("ROLLOUT_DISCORD_TOKEN", "discord-env")

	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Password != "from-env" {
		t.Errorf("Password = %q, want from-env", cfg.Database.Password)
	}
	if cfg.Notify.Slack.BotToken != "xoxb-env" {
		t.Errorf("Slack.BotToken = %q, want xoxb-env", cfg.Notify.Slack.BotToken)
	}
	if cfg.Notify.Discord.BotToken != "discord-env" {
		t.Errorf("Discord.BotToken = %q, want discord-env", cfg.Notify.Discord.BotToken)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad driver", "database:\n  driver: postgres\n", `database.driver "postgres"`},
		{"port range", "server:\n  port: 70000\n", "server.port 70000"},
		{"division name", "divisions:\n  - contact: x\n", "divisions[0].name is required"},
		{"duplicate division", "divisions:\n  - name: A\n  - name: A\n", `divisions[1].name "A" is duplicated`},
		{"slack half", "notify:\n  slack:\n    bot_token: x\n", "notify.slack needs both"},
		{"discord half", "notify:\n  discord:\n    channel_id: \"1\"\n", "notify.discord needs both"},
		{"bad cron", "digest:\n  schedule: \"every day\"\n", "digest.schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.want)
			}
		})
	}
}

func TestParse_MultipleErrorsJoined(t *testing.T) {
	_, err := Parse([]byte("database:\n  driver: oracle\nserver:\n  port: -1\n"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("errors should be joined with '; ': %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("database: [unclosed"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %q, want config: parse prefix", err.Error())
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollout.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want config: read prefix", err.Error())
	}
}
