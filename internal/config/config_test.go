package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://interview.example.com/api"
	cfg.Interview.AdvanceScore = 7.5
	cfg.Push.Enabled = true
	cfg.Push.UserID = "user-42"

	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Server.BaseURL != "https://interview.example.com/api" {
		t.Errorf("Server.BaseURL: got %q, want %q", loaded.Server.BaseURL, "https://interview.example.com/api")
	}
	if loaded.Interview.AdvanceScore != 7.5 {
		t.Errorf("Interview.AdvanceScore: got %v, want 7.5", loaded.Interview.AdvanceScore)
	}
	if !loaded.Push.Enabled || loaded.Push.UserID != "user-42" {
		t.Errorf("Push: got %+v", loaded.Push)
	}
}

func TestDefaultConfigThresholds(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Interview.AdvanceScore != 8.0 {
		t.Errorf("default AdvanceScore: got %v, want 8.0", cfg.Interview.AdvanceScore)
	}
	if cfg.Interview.FollowupScore != 6.0 {
		t.Errorf("default FollowupScore: got %v, want 6.0", cfg.Interview.FollowupScore)
	}
	if cfg.Interview.QuestionSeconds != 600 {
		t.Errorf("default QuestionSeconds: got %d, want 600", cfg.Interview.QuestionSeconds)
	}
}

func TestDefaultConfigPushDisabled(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Push.Enabled {
		t.Error("push should be disabled by default")
	}
	if cfg.Push.ReconnectDelaySeconds != 3 {
		t.Errorf("default ReconnectDelaySeconds: got %d, want 3", cfg.Push.ReconnectDelaySeconds)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	if _, err := ReadConfig(t.TempDir()); err == nil {
		t.Error("ReadConfig should fail when no config exists")
	}
}

func TestBackwardCompatibility(t *testing.T) {
	// Simulate an old config file without the push section
	tmpDir := t.TempDir()
	oldConfig := `version: 1
server:
  base_url: "http://localhost:8080/api"
  timeout_seconds: 30
interview:
  question_seconds: 600
  auto_advance_delay_seconds: 3
`
	configPath := filepath.Join(tmpDir, ".drill")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(oldConfig), 0644); err != nil {
		t.Fatalf("failed to write old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on old config: %v", err)
	}
	if cfg.Server.TimeoutSeconds != 30 {
		t.Errorf("Server.TimeoutSeconds: got %d, want 30", cfg.Server.TimeoutSeconds)
	}
	// Missing sections read as zero values; callers apply defaults.
	if cfg.Push.Enabled {
		t.Error("absent push section should read as disabled")
	}
}
