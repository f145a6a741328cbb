package searchstate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config is the environment form of the pool options.
// With prefix "SEARCHSTATE" the fields read SEARCHSTATE_MAX_CHECK,
// SEARCHSTATE_NODE_COUNT and so on.
type Config struct {
	MaxCheck  int `envconfig:"MAX_CHECK" default:"8192"`
	NodeCount int `envconfig:"NODE_COUNT" default:"0"`

	// Zero values disable the corresponding limit.
	MaxInFlight      int64   `envconfig:"MAX_IN_FLIGHT" default:"0"`
	MemoryLimitBytes int64   `envconfig:"MEMORY_LIMIT_BYTES" default:"0"`
	AdmissionRate    float64 `envconfig:"ADMISSION_RATE" default:"0"`
	AdmissionBurst   int     `envconfig:"ADMISSION_BURST" default:"0"`

	Prewarm int  `envconfig:"PREWARM" default:"0"`
	Audit   bool `envconfig:"AUDIT" default:"false"`

	// LogLevel is a slog level name; empty disables logging.
	LogLevel  string `envconfig:"LOG_LEVEL" default:""`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"` // text or json
}

// LoadConfig reads a Config from the environment.
func LoadConfig(prefix string) (Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Options converts the config into pool options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithMaxInFlight(c.MaxInFlight),
		WithMemoryLimit(c.MemoryLimitBytes),
		WithAdmissionRate(c.AdmissionRate, c.AdmissionBurst),
		WithPrewarm(c.Prewarm),
		WithAudit(c.Audit),
	}

	if c.LogLevel == "" {
		return opts, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text":
		opts = append(opts, WithLogger(NewTextLogger(level)))
	case "json":
		opts = append(opts, WithLogger(NewJSONLogger(level)))
	default:
		return nil, fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return opts, nil
}

// NewFromConfig creates a pool from cfg. Options in extra are applied after
// the ones derived from cfg and override them.
func NewFromConfig(cfg Config, extra ...Option) (*Pool, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(cfg.MaxCheck, cfg.NodeCount, append(opts, extra...)...)
}
