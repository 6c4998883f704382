// Package config handles reading and writing .drill/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .drill/config.yaml.
type Config struct {
	Version   int             `yaml:"version"`
	Server    ServerConfig    `yaml:"server"`
	Interview InterviewConfig `yaml:"interview"`
	Push      PushConfig      `yaml:"push"`
}

// ServerConfig points the client at the evaluation service.
type ServerConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// InterviewConfig controls session timing and score thresholds.
type InterviewConfig struct {
	QuestionSeconds         int     `yaml:"question_seconds"`
	AutoAdvanceDelaySeconds int     `yaml:"auto_advance_delay_seconds"`
	AdvanceScore            float64 `yaml:"advance_score"`
	FollowupScore           float64 `yaml:"followup_score"`
	AutosaveDebounceMs      int     `yaml:"autosave_debounce_ms"`
}

// PushConfig controls the optional websocket push channel.
type PushConfig struct {
	Enabled               bool   `yaml:"enabled"`
	URL                   string `yaml:"url"`
	UserID                string `yaml:"user_id"`
	ReconnectDelaySeconds int    `yaml:"reconnect_delay_seconds"`
}

// configFileName is the path relative to the working directory.
const configDir = ".drill"
const configFile = "config.yaml"

// ReadConfig reads .drill/config.yaml from the given directory.
// dir is the parent of .drill/, not .drill/ itself.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .drill/config.yaml in the given directory.
// Creates the .drill/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			BaseURL:        "http://localhost:8080/api",
			TimeoutSeconds: 30,
		},
		Interview: InterviewConfig{
			QuestionSeconds:         600,
			AutoAdvanceDelaySeconds: 3,
			AdvanceScore:            8.0,
			FollowupScore:           6.0,
			AutosaveDebounceMs:      2000,
		},
		Push: PushConfig{
			Enabled:               false,
			ReconnectDelaySeconds: 3,
		},
	}
}
