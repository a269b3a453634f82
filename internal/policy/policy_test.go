package policy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.CycleInterval() != 15*time.Minute {
		t.Errorf("cycle interval = %s, want 15m", cfg.CycleInterval())
	}
	if cfg.ErrorBackoff() != 60*time.Second {
		t.Errorf("error backoff = %s, want 60s", cfg.ErrorBackoff())
	}
	if cfg.NudgeCooldown() != 6*time.Hour {
		t.Errorf("nudge cooldown = %s, want 6h", cfg.NudgeCooldown())
	}
	if cfg.DefaultPreferences.NudgeThresholdDays != 3 {
		t.Errorf("nudge threshold = %d, want 3", cfg.DefaultPreferences.NudgeThresholdDays)
	}
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
http_port: 8891
log_file: /tmp/slugpilot.log
snapshot_file: /tmp/snaps.sqlite
sources:
  canvas_base_url: https://canvas.ucsc.edu
  slack_channel_ids: ["C123", "C456"]
agent:
  cycle_interval_minutes: 5
  nudge_cooldown_hours: 2
  study_style: cram
default_preferences:
  notification_frequency: hourly
  nudge_threshold_days: 5
  preferred_study_hours_per_day: 4.5
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != 8891 {
		t.Errorf("http port = %d, want 8891", cfg.HTTPPort)
	}
	if cfg.Sources.CanvasBaseURL != "https://canvas.ucsc.edu" {
		t.Errorf("canvas base url = %s", cfg.Sources.CanvasBaseURL)
	}
	if len(cfg.Sources.SlackChannelIDs) != 2 {
		t.Errorf("slack channels = %v, want 2", cfg.Sources.SlackChannelIDs)
	}
	if cfg.CycleInterval() != 5*time.Minute {
		t.Errorf("cycle interval = %s, want 5m", cfg.CycleInterval())
	}
	if cfg.NudgeCooldown() != 2*time.Hour {
		t.Errorf("nudge cooldown = %s, want 2h", cfg.NudgeCooldown())
	}
	if cfg.Agent.StudyStyle != "cram" {
		t.Errorf("study style = %s, want cram", cfg.Agent.StudyStyle)
	}
	if cfg.DefaultPreferences.NudgeThresholdDays != 5 {
		t.Errorf("nudge threshold = %d, want 5", cfg.DefaultPreferences.NudgeThresholdDays)
	}
	if cfg.DefaultPreferences.DailyStudyHours != 4.5 {
		t.Errorf("daily study hours = %.1f, want 4.5", cfg.DefaultPreferences.DailyStudyHours)
	}
}

func TestLoadConfig_SparseBackfilled(t *testing.T) {
	path := writeConfig(t, "http_port: 9000\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CycleInterval() != 15*time.Minute {
		t.Errorf("cycle interval = %s, want default 15m", cfg.CycleInterval())
	}
	if cfg.SnapshotFile == "" {
		t.Error("snapshot file not backfilled")
	}
	if cfg.Sources.CanvasBaseURL == "" {
		t.Error("canvas base url not backfilled")
	}
	if cfg.DefaultPreferences.NudgeThresholdDays != 3 {
		t.Errorf("preferences not backfilled: threshold = %d", cfg.DefaultPreferences.NudgeThresholdDays)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := writeConfig(t, "agent: [not, a, map]\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}
