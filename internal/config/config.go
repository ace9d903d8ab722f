// Package config provides YAML-based configuration loading for the rollout server.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when --config is not given.
const DefaultPath = "rollout.yaml"

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config is the top-level rollout configuration, loaded from rollout.yaml.
type Config struct {
	Database  DatabaseConfig   `yaml:"database"`
	Server    ServerConfig     `yaml:"server"`
	Divisions []DivisionConfig `yaml:"divisions"`
	Notify    NotifyConfig     `yaml:"notify"`
	Digest    DigestConfig     `yaml:"digest"`
}

// DatabaseConfig holds connection settings. Host/Port/User/Password/Name
// apply to mysql; Path applies to sqlite.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DivisionConfig is a division seeded by `rollout db init`.
type DivisionConfig struct {
	Name    string `yaml:"name"`
	Contact string `yaml:"contact"`
}

// NotifyConfig selects the sinks that receive plan status changes.
// A sink is enabled when its required fields are set.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Kafka   KafkaConfig   `yaml:"kafka"`
}

// SlackConfig holds Slack bot credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether the Slack sink is configured.
func (s SlackConfig) Enabled() bool { return s.BotToken != "" && s.ChannelID != "" }

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether the Discord sink is configured.
func (d DiscordConfig) Enabled() bool { return d.BotToken != "" && d.ChannelID != "" }

// KafkaConfig holds the broker list and topic for plan status events.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// Enabled reports whether the Kafka sink is configured.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// DigestConfig controls the scheduled rollout digest.
type DigestConfig struct {
	Schedule string `yaml:"schedule"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config. Secrets set in the
// environment take precedence over the file.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ROLLOUT_DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("ROLLOUT_SLACK_TOKEN"); v != "" {
		c.Notify.Slack.BotToken = v
	}
	if v := os.Getenv("ROLLOUT_DISCORD_TOKEN"); v != "" {
		c.Notify.Discord.BotToken = v
	}
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" {
			c.Database.Name = "rollout"
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			c.Database.Path = "rollout.db"
		}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Notify.Kafka.Enabled() && c.Notify.Kafka.Topic == "" {
		c.Notify.Kafka.Topic = "rollout.plan-status"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (use mysql or sqlite)", c.Database.Driver))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	seen := make(map[string]bool, len(c.Divisions))
	for i, d := range c.Divisions {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("divisions[%d].name is required", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("divisions[%d].name %q is duplicated", i, name))
		}
		seen[name] = true
	}
	if s := c.Notify.Slack; (s.BotToken == "") != (s.ChannelID == "") {
		errs = append(errs, "notify.slack needs both bot_token and channel_id")
	}
	if d := c.Notify.Discord; (d.BotToken == "") != (d.ChannelID == "") {
		errs = append(errs, "notify.discord needs both bot_token and channel_id")
	}
	if c.Digest.Schedule != "" {
		if _, err := ScheduleParser.Parse(c.Digest.Schedule); err != nil {
			errs = append(errs, fmt.Sprintf("digest.schedule: %v", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ScheduleParser parses standard 5-field cron expressions.
var ScheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
