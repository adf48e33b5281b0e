// Package config provides configuration management for edlconv.
// Configuration is loaded from EDLCONV_* environment variables with defaults
// matching the turnover conventions the converter was written for.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

const (
	// Prefix for every environment variable read by New.
	Prefix = "EDLCONV"

	// Default values
	DefaultPort     = 8789
	DefaultLogLevel = "info"
	DefaultDataDir  = ".edlconv"

	// Database filename
	DBFilename = "history.db"
)

// Config defines the application configuration interface
type Config interface {
	SourceLabel() string
	FrameRate() float64
	FrameStart() int
	HandleSize() int
	StartTimecode() string
	Port() int
	LogLevel() string
	LogFormat() string
	DataDir() string
	DBPath() string
	HistoryEnabled() bool
	AuthToken() string
}

// Settings is the raw environment-backed configuration.
type Settings struct {
	SourceLabel   string  `envconfig:"SOURCE_LABEL" default:"Final"`
	FrameRate     float64 `envconfig:"FRAMERATE" default:"24"`
	FrameStart    int     `envconfig:"FRAME_START" default:"990"`
	HandleSize    int     `envconfig:"HANDLE_SIZE" default:"10"`
	StartTimecode string  `envconfig:"START_TIMECODE"`

	Port      int    `envconfig:"PORT" default:"8789"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	DataDir   string `envconfig:"DATA_DIR"`
	History   bool   `envconfig:"HISTORY" default:"true"`
	AuthToken string `envconfig:"AUTH_TOKEN"`
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	s Settings
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	var s Settings
	if err := envconfig.Process(Prefix, &s); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if s.DataDir == "" {
		s.DataDir = defaultDataDir()
	}
	return FromSettings(s)
}

// FromSettings validates s and wraps it as a Config.
func FromSettings(s Settings) (*EnvConfig, error) {
	if s.FrameRate <= 0 {
		return nil, fmt.Errorf("invalid %s_FRAMERATE: must be positive", Prefix)
	}
	if s.HandleSize < 0 {
		return nil, fmt.Errorf("invalid %s_HANDLE_SIZE: must not be negative", Prefix)
	}
	if s.Port < 1 || s.Port > 65535 {
		return nil, fmt.Errorf("invalid %s_PORT: port must be between 1 and 65535", Prefix)
	}
	switch s.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid %s_LOG_FORMAT: must be json or text", Prefix)
	}
	return &EnvConfig{s: s}, nil
}

var _ Config = (*EnvConfig)(nil)

// SourceLabel returns the constant written to every record's Source column
func (c *EnvConfig) SourceLabel() string {
	return c.s.SourceLabel
}

// FrameRate returns the frames per second used for timecode conversion
func (c *EnvConfig) FrameRate() float64 {
	return c.s.FrameRate
}

// FrameStart returns the renumbering origin; zero or less disables it
func (c *EnvConfig) FrameStart() int {
	return c.s.FrameStart
}

func (c *EnvConfig) HandleSize() int {
	return c.s.HandleSize
}

func (c *EnvConfig) StartTimecode() string {
	return c.s.StartTimecode
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.s.Port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.s.LogLevel
}

// LogFormat returns json or text
func (c *EnvConfig) LogFormat() string {
	return c.s.LogFormat
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.s.DataDir
}

// DBPath returns the full path to the SQLite run history database
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.s.DataDir, DBFilename)
}

func (c *EnvConfig) HistoryEnabled() bool {
	return c.s.History
}

func (c *EnvConfig) AuthToken() string {
	return c.s.AuthToken
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version is set at build time via ldflags.
var Version = "0.1.0"
