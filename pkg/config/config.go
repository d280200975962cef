// Package config loads the optional granite.yaml file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "granite.yaml"

// Defaults applied by Resolve.
const (
	DefaultVersion   = "v1.0.0"
	DefaultPulseRate = 60
	DefaultMaxJobs   = 4
	DefaultLogFormat = "text"
	DefaultArtDir    = "art"
	DefaultFadeIn    = time.Second
	DefaultRunFor    = 5 * time.Second
)

// ErrUnsupportedVersion is returned for configuration files written for an
// incompatible major version.
var ErrUnsupportedVersion = errors.New("unsupported granite.yaml version")

// Config represents the optional granite.yaml configuration.
type Config struct {
	Version   string          `yaml:"version,omitempty"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
	Demo      DemoConfig      `yaml:"demo"`
}

// SchedulerConfig contains pulse loop settings.
type SchedulerConfig struct {
	// PulseRate is the number of pulses per second while animations run.
	PulseRate int `yaml:"pulse_rate,omitempty"`
	// MaxJobs bounds concurrent background jobs.
	MaxJobs int `yaml:"max_jobs,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// DemoConfig contains settings of the album browser demo.
type DemoConfig struct {
	ArtDir string `yaml:"art_dir,omitempty"`
	Query  string `yaml:"query,omitempty"`
	FadeIn string `yaml:"fade_in,omitempty"`
	RunFor string `yaml:"run_for,omitempty"`
}

// Resolved contains validated configuration values with defaults applied.
type Resolved struct {
	Root          string
	Version       string
	PulseInterval time.Duration
	MaxJobs       int
	LogLevel      slog.Level
	LogFormat     string
	ArtDir        string
	Query         string
	FadeIn        time.Duration
	RunFor        time.Duration
}

// LoadOptional reads granite.yaml from dir if present. A missing file
// yields an empty Config.
func LoadOptional(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}

	return &cfg, nil
}

// Resolve loads granite.yaml (if present) and resolves defaults.
func Resolve(dir string) (*Resolved, error) {
	cfg, err := LoadOptional(dir)
	if err != nil {
		return nil, err
	}
	return cfg.Resolve(dir)
}

// Resolve validates cfg and fills defaults. Relative paths are resolved
// against root.
func (cfg *Config) Resolve(root string) (*Resolved, error) {
	version, err := resolveVersion(cfg.Version)
	if err != nil {
		return nil, err
	}

	rate := cfg.Scheduler.PulseRate
	switch {
	case rate == 0:
		rate = DefaultPulseRate
	case rate < 0 || rate > 1000:
		return nil, fmt.Errorf("scheduler.pulse_rate must be between 1 and 1000 (got %d)", rate)
	}

	maxJobs := cfg.Scheduler.MaxJobs
	switch {
	case maxJobs == 0:
		maxJobs = DefaultMaxJobs
	case maxJobs < 0:
		return nil, fmt.Errorf("scheduler.max_jobs must be positive (got %d)", maxJobs)
	}

	var level slog.Level
	if s := strings.TrimSpace(cfg.Log.Level); s != "" {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}

	format := strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	switch format {
	case "":
		format = DefaultLogFormat
	case "text", "json":
	default:
		return nil, fmt.Errorf("log.format must be text or json (got %q)", cfg.Log.Format)
	}

	artDir := strings.TrimSpace(cfg.Demo.ArtDir)
	if artDir == "" {
		artDir = DefaultArtDir
	}
	if !filepath.IsAbs(artDir) {
		artDir = filepath.Join(root, artDir)
	}

	fadeIn, err := parseDuration("demo.fade_in", cfg.Demo.FadeIn, DefaultFadeIn)
	if err != nil {
		return nil, err
	}
	runFor, err := parseDuration("demo.run_for", cfg.Demo.RunFor, DefaultRunFor)
	if err != nil {
		return nil, err
	}

	return &Resolved{
		Root:          root,
		Version:       version,
		PulseInterval: time.Second / time.Duration(rate),
		MaxJobs:       maxJobs,
		LogLevel:      level,
		LogFormat:     format,
		ArtDir:        artDir,
		Query:         strings.TrimSpace(cfg.Demo.Query),
		FadeIn:        fadeIn,
		RunFor:        runFor,
	}, nil
}

func resolveVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return DefaultVersion, nil
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("version %q is not a semantic version", v)
	}
	if semver.Major(v) != "v1" {
		return "", fmt.Errorf("%w: %s (this build reads v1)", ErrUnsupportedVersion, v)
	}
	return semver.Canonical(v), nil
}

func parseDuration(field, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative (got %s)", field, s)
	}
	return d, nil
}
