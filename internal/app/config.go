package app

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// Commands understood by App.Run.
const (
	CommandSetup = "setup"
	CommandShow  = "show"
	CommandList  = "list"
	CommandWatch = "watch"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// DefaultDebounce is how long watch waits for descriptor changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command string
	Target  string // template or variant name

	DescriptorPaths []string // extra .hcl files or directories
	BuildDir        string   // overrides the descriptor's build dir
	SetupDir        string   // root for builtin copy sources
	Strict          bool
	// Args are the positional arguments after Target; switches match them
	// literally.
	Args []string

	LogFormat string
	LogLevel  string
	Debounce  time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.Command {
	case CommandSetup, CommandShow, CommandWatch:
		if cfg.Target == "" {
			return nil, fmt.Errorf("%s needs a template or variant name", cfg.Command)
		}
	case CommandList:
	case "":
		return nil, errors.New("command is a required configuration field and cannot be empty")
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	return &cfg, nil
}
