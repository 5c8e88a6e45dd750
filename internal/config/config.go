package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "ZOOMDECK_"

type Config struct {
	// Mode is the last used zoom mode, "multi" or "single".
	Mode string `yaml:"mode"`

	KeepMarkers     bool `yaml:"keep_markers"`
	RevertOnFailure bool `yaml:"revert_on_failure"`
	AddAckSlide     bool `yaml:"add_ack_slide"`

	// Storyboard
	StepDuration float64 `yaml:"step_duration"` // seconds per camera move

	// Batch mode
	Workers int `yaml:"workers"`

	ShowStats bool   `yaml:"show_stats"`
	LogFormat string `yaml:"log_format"` // text or json
	LogLevel  string `yaml:"log_level"`

	DecksDir string `yaml:"decks_dir"`
}

func Default() Config {
	return Config{
		Mode:         "multi",
		KeepMarkers:  true,
		StepDuration: 1.0,
		Workers:      4,
		LogFormat:    "text",
		LogLevel:     "info",
		DecksDir:     filepath.Join("input", "decks"),
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.Mode = envOr("MODE", cfg.Mode)
	cfg.KeepMarkers = envBool("KEEP_MARKERS", cfg.KeepMarkers)
	cfg.RevertOnFailure = envBool("REVERT_ON_FAILURE", cfg.RevertOnFailure)
	cfg.AddAckSlide = envBool("ADD_ACK_SLIDE", cfg.AddAckSlide)
	cfg.StepDuration = envFloat("STEP_DURATION", cfg.StepDuration)
	cfg.Workers = envInt("WORKERS", cfg.Workers)
	cfg.ShowStats = envBool("SHOW_STATS", cfg.ShowStats)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.DecksDir = envOr("DECKS_DIR", cfg.DecksDir)

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case "multi", "single":
	default:
		return fmt.Errorf("mode must be multi or single, got %q", c.Mode)
	}
	if c.StepDuration <= 0 {
		return fmt.Errorf("step_duration must be positive, got %g", c.StepDuration)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// Save writes the configuration to path, so toggles such as the mode survive
// to the next run.
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
