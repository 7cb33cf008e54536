// Package config loads Specter configuration from .specter/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete Specter configuration
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	RootDir string `json:"rootDir" mapstructure:"rootDir"`

	Complexity ComplexityConfig `json:"complexity" mapstructure:"complexity"`
	History    HistoryConfig    `json:"history" mapstructure:"history"`
	Git        GitConfig        `json:"git" mapstructure:"git"`
	Snapshots  SnapshotsConfig  `json:"snapshots" mapstructure:"snapshots"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// ComplexityConfig holds the category thresholds.
// A value v is low when v <= Low, medium when v <= Medium, high when
// v <= High, and veryHigh above that.
type ComplexityConfig struct {
	Low    int `json:"low" mapstructure:"low"`
	Medium int `json:"medium" mapstructure:"medium"`
	High   int `json:"high" mapstructure:"high"`
}

// HistoryConfig bounds version-control mining
type HistoryConfig struct {
	WindowDays          int     `json:"windowDays" mapstructure:"windowDays"`
	MaxCommitsPerFile   int     `json:"maxCommitsPerFile" mapstructure:"maxCommitsPerFile"`
	CoChangeCommits     int     `json:"coChangeCommits" mapstructure:"coChangeCommits"`
	MinCouplingStrength float64 `json:"minCouplingStrength" mapstructure:"minCouplingStrength"`
	CacheTTLSeconds     int     `json:"cacheTtlSeconds" mapstructure:"cacheTtlSeconds"`
}

// GitConfig bounds the external process executor
type GitConfig struct {
	TimeoutMs      int     `json:"timeoutMs" mapstructure:"timeoutMs"`
	MaxConcurrent  int     `json:"maxConcurrent" mapstructure:"maxConcurrent"`
	SpawnPerSecond float64 `json:"spawnPerSecond" mapstructure:"spawnPerSecond"`
}

// SnapshotsConfig bounds health snapshot retention
type SnapshotsConfig struct {
	MaxHistory int `json:"maxHistory" mapstructure:"maxHistory"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		RootDir: ".",
		Complexity: ComplexityConfig{
			Low:    5,
			Medium: 10,
			High:   20,
		},
		History: HistoryConfig{
			WindowDays:          365,
			MaxCommitsPerFile:   50,
			CoChangeCommits:     50,
			MinCouplingStrength: 0.25,
			CacheTTLSeconds:     900,
		},
		Git: GitConfig{
			TimeoutMs:      30000,
			MaxConcurrent:  6,
			SpawnPerSecond: 20,
		},
		Snapshots: SnapshotsConfig{
			MaxHistory: 50,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.specter/config.json, returning
// defaults when no config file exists.
func Load(rootDir string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(rootDir, ".specter"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <root>/.specter/config.json
func (c *Config) Save(rootDir string) error {
	dir := filepath.Join(rootDir, ".specter")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Complexity.Low <= 0 || c.Complexity.Medium <= c.Complexity.Low || c.Complexity.High <= c.Complexity.Medium {
		return &Error{Field: "complexity", Message: "thresholds must satisfy 0 < low < medium < high"}
	}
	if c.Git.MaxConcurrent <= 0 {
		return &Error{Field: "git.maxConcurrent", Message: "must be positive"}
	}
	if c.History.MinCouplingStrength < 0 || c.History.MinCouplingStrength > 1 {
		return &Error{Field: "history.minCouplingStrength", Message: "must be within [0,1]"}
	}
	if c.Snapshots.MaxHistory <= 0 {
		return &Error{Field: "snapshots.maxHistory", Message: "must be positive"}
	}
	return nil
}

// Error represents a configuration error
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
