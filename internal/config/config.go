package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"tricoach/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Athlete AthleteConfig `json:"athlete" yaml:"athlete"`
	Display DisplayConfig `json:"display" yaml:"display"`
	Storage StorageConfig `json:"storage" yaml:"storage"`
	Advisor AdvisorConfig `json:"advisor" yaml:"advisor"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// AthleteConfig holds athlete-specific thresholds
type AthleteConfig struct {
	FTPWatts                 float64 `json:"ftp_watts" yaml:"ftp_watts"`
	CSSPaceSecPer100m        float64 `json:"css_pace_sec_per_100m" yaml:"css_pace_sec_per_100m"`
	RunThresholdPaceSecPerKm float64 `json:"run_threshold_pace_sec_per_km" yaml:"run_threshold_pace_sec_per_km"`
	RestingHR                float64 `json:"resting_hr" yaml:"resting_hr"`
	MaxHR                    float64 `json:"max_hr" yaml:"max_hr"`
	ThresholdHR              float64 `json:"threshold_hr" yaml:"threshold_hr"`
	Gender                   string  `json:"gender" yaml:"gender"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit" yaml:"distance_unit"`
	PaceUnit     string `json:"pace_unit" yaml:"pace_unit"`
}

// StorageConfig holds the database location. Empty means ~/.tricoach/data.db.
type StorageConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// AdvisorConfig controls the background coaching notes
type AdvisorConfig struct {
	Enabled   bool `json:"enabled" yaml:"enabled"`
	QueueSize int  `json:"queue_size" yaml:"queue_size"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// configNames are tried in order inside the config directory
var configNames = []string{"config.yaml", "config.yml", "config.json"}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	th := analysis.DefaultThresholds()
	return Config{
		Athlete: AthleteConfig{
			FTPWatts:                 th.FTPWatts,
			CSSPaceSecPer100m:        th.CSSPaceSecPer100m,
			RunThresholdPaceSecPerKm: th.RunThresholdPaceSecPerKm,
			RestingHR:                th.RestingHR,
			MaxHR:                    th.MaxHR,
			ThresholdHR:              th.ThresholdHR,
			Gender:                   string(th.Gender),
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
		Advisor: AdvisorConfig{
			Enabled:   true,
			QueueSize: 100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the first config file found in ~/.tricoach, then applies
// environment variable overrides.
func Load() (*Config, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, ErrNoConfig
}

// LoadFile reads a JSON or YAML config file (chosen by extension), fills
// defaults for missing values and applies environment variable overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// absent keys keep their default values
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	return &cfg, nil
}

// applyDefaults fills missing values
func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	a, d := &cfg.Athlete, defaults.Athlete
	if a.FTPWatts == 0 {
		a.FTPWatts = d.FTPWatts
	}
	if a.CSSPaceSecPer100m == 0 {
		a.CSSPaceSecPer100m = d.CSSPaceSecPer100m
	}
	if a.RunThresholdPaceSecPerKm == 0 {
		a.RunThresholdPaceSecPerKm = d.RunThresholdPaceSecPerKm
	}
	if a.RestingHR == 0 {
		a.RestingHR = d.RestingHR
	}
	if a.MaxHR == 0 {
		a.MaxHR = d.MaxHR
	}
	if a.ThresholdHR == 0 {
		a.ThresholdHR = d.ThresholdHR
	}
	if a.Gender == "" {
		a.Gender = d.Gender
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.PaceUnit == "" {
		cfg.Display.PaceUnit = defaults.Display.PaceUnit
	}
	if cfg.Advisor.QueueSize == 0 {
		cfg.Advisor.QueueSize = defaults.Advisor.QueueSize
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// ApplyEnvOverrides overrides values from the environment.
// Env vars use the prefix TRICOACH_ and underscore-separated paths:
//
//	TRICOACH_FTP, TRICOACH_CSS, TRICOACH_RUN_THRESHOLD_PACE,
//	TRICOACH_MAX_HR, TRICOACH_RESTING_HR, TRICOACH_THRESHOLD_HR,
//	TRICOACH_GENDER, TRICOACH_DB_PATH, TRICOACH_ADVISOR_ENABLED,
//	TRICOACH_LOG_LEVEL
func ApplyEnvOverrides(cfg *Config) {
	floats := map[string]*float64{
		"TRICOACH_FTP":                &cfg.Athlete.FTPWatts,
		"TRICOACH_CSS":                &cfg.Athlete.CSSPaceSecPer100m,
		"TRICOACH_RUN_THRESHOLD_PACE": &cfg.Athlete.RunThresholdPaceSecPerKm,
		"TRICOACH_MAX_HR":             &cfg.Athlete.MaxHR,
		"TRICOACH_RESTING_HR":         &cfg.Athlete.RestingHR,
		"TRICOACH_THRESHOLD_HR":       &cfg.Athlete.ThresholdHR,
	}
	for key, dst := range floats {
		if v := os.Getenv(key); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	if v := os.Getenv("TRICOACH_GENDER"); v != "" {
		cfg.Athlete.Gender = v
	}
	if v := os.Getenv("TRICOACH_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("TRICOACH_ADVISOR_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Advisor.Enabled = b
		}
	}
	if v := os.Getenv("TRICOACH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Save writes the configuration as JSON to ~/.tricoach/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}

	// Check if config already exists
	for _, name := range configNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return nil // Config exists, don't overwrite
		}
	}

	example := DefaultConfig()
	return Save(&example)
}

// Validate checks that the config values are consistent
func (c *Config) Validate() error {
	a := c.Athlete
	if a.FTPWatts < 0 || a.CSSPaceSecPer100m < 0 || a.RunThresholdPaceSecPerKm < 0 {
		return errors.New("athlete thresholds must not be negative")
	}
	if a.Gender != "" && a.Gender != string(analysis.GenderMale) && a.Gender != string(analysis.GenderFemale) {
		return fmt.Errorf("athlete.gender must be \"male\" or \"female\", got %q", a.Gender)
	}

	// Validate display units
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	// Validate threshold_hr < max_hr when both are set
	if a.ThresholdHR > 0 && a.MaxHR > 0 && a.ThresholdHR >= a.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)", a.ThresholdHR, a.MaxHR)
	}
	if a.RestingHR > 0 && a.MaxHR > 0 && a.RestingHR >= a.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", a.RestingHR, a.MaxHR)
	}

	if c.Advisor.QueueSize < 0 {
		return fmt.Errorf("advisor.queue_size must not be negative, got %d", c.Advisor.QueueSize)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// Thresholds converts the athlete settings for metric computation
func (a AthleteConfig) Thresholds() analysis.Thresholds {
	return analysis.Thresholds{
		FTPWatts:                 a.FTPWatts,
		CSSPaceSecPer100m:        a.CSSPaceSecPer100m,
		RunThresholdPaceSecPerKm: a.RunThresholdPaceSecPerKm,
		MaxHR:                    a.MaxHR,
		RestingHR:                a.RestingHR,
		ThresholdHR:              a.ThresholdHR,
		Gender:                   analysis.Gender(a.Gender),
	}
}

// SlogLevel returns the configured level, defaulting to info
func (l LogConfig) SlogLevel() slog.Level {
	level, err := parseLevel(l.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", s)
	}
}

// getConfigPath returns the path to the JSON config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".tricoach"), nil
}
