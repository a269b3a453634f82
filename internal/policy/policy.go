// Package policy holds server configuration: where state lives, how the
// cycle loop is tuned, and the planning defaults applied to new users.
package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slugpilot/slugpilot/internal/domain"
)

// GlobalStateDir returns the default global state directory (~/.config/slugpilot).
func GlobalStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".config", "slugpilot")
}

// GlobalSnapshotFile returns the default deadline-snapshot database path.
func GlobalSnapshotFile() string {
	return filepath.Join(GlobalStateDir(), "snapshots.sqlite")
}

// SourcesConfig holds upstream source credentials. Any empty credential
// switches that source to deterministic demo data.
type SourcesConfig struct {
	CanvasBaseURL   string   `yaml:"canvas_base_url"`
	CanvasToken     string   `yaml:"canvas_token"`
	CalendarToken   string   `yaml:"calendar_token"`
	CalendarID      string   `yaml:"calendar_id"`
	PiazzaEmail     string   `yaml:"piazza_email"`
	PiazzaPassword  string   `yaml:"piazza_password"`
	SlackBotToken   string   `yaml:"slack_bot_token"`
	SlackChannelIDs []string `yaml:"slack_channel_ids"`
}

// AgentConfig tunes the recurring cycle loop.
type AgentConfig struct {
	CycleIntervalMinutes int    `yaml:"cycle_interval_minutes"`
	ErrorBackoffSeconds  int    `yaml:"error_backoff_seconds"`
	NudgeCooldownHours   int    `yaml:"nudge_cooldown_hours"`
	StudyStyle           string `yaml:"study_style"` // spread, balanced, cram
}

// Config is the top-level server configuration.
type Config struct {
	HTTPPort     int    `yaml:"http_port"`
	LogFile      string `yaml:"log_file"`
	SnapshotFile string `yaml:"snapshot_file"`

	Sources            SourcesConfig      `yaml:"sources"`
	Agent              AgentConfig        `yaml:"agent"`
	DefaultPreferences domain.Preferences `yaml:"default_preferences"`
}

// DefaultConfig returns sensible defaults: demo-mode sources, standard
// cycle timing, and the stock planning preferences.
func DefaultConfig() *Config {
	return &Config{
		SnapshotFile: GlobalSnapshotFile(),
		Sources: SourcesConfig{
			CanvasBaseURL: "https://canvas.instructure.com",
		},
		Agent: AgentConfig{
			CycleIntervalMinutes: 15,
			ErrorBackoffSeconds:  60,
			NudgeCooldownHours:   6,
			StudyStyle:           "balanced",
		},
		DefaultPreferences: domain.DefaultPreferences(),
	}
}

// LoadConfig loads configuration from a YAML file, filling gaps from
// DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize backfills zero-valued tuning knobs so a sparse config file
// never disables the loop.
func (c *Config) normalize() {
	if c.Agent.CycleIntervalMinutes <= 0 {
		c.Agent.CycleIntervalMinutes = 15
	}
	if c.Agent.ErrorBackoffSeconds <= 0 {
		c.Agent.ErrorBackoffSeconds = 60
	}
	if c.Agent.NudgeCooldownHours <= 0 {
		c.Agent.NudgeCooldownHours = 6
	}
	if c.SnapshotFile == "" {
		c.SnapshotFile = GlobalSnapshotFile()
	}
	if c.Sources.CanvasBaseURL == "" {
		c.Sources.CanvasBaseURL = "https://canvas.instructure.com"
	}
	if c.DefaultPreferences.NudgeThresholdDays <= 0 {
		c.DefaultPreferences = domain.DefaultPreferences()
	}
}

// CycleInterval returns the configured cycle interval as a duration.
func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Agent.CycleIntervalMinutes) * time.Minute
}

// ErrorBackoff returns the configured error backoff as a duration.
func (c *Config) ErrorBackoff() time.Duration {
	return time.Duration(c.Agent.ErrorBackoffSeconds) * time.Second
}

// NudgeCooldown returns the configured nudge cooldown as a duration.
func (c *Config) NudgeCooldown() time.Duration {
	return time.Duration(c.Agent.NudgeCooldownHours) * time.Hour
}
