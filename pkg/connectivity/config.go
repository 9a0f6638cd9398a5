package connectivity

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config controls the behavior of the connectivity engine.
type Config struct {
	// Workers bounds the number of island caches built in parallel during
	// Build (default: number of CPUs). The search pass parallelism is set by
	// the injected Executor.
	Workers int `yaml:"workers"`

	// PollInterval is how often a running search pass services the progress
	// reporter and checks for cancellation (default: 250ms).
	PollInterval time.Duration `yaml:"poll_interval"`

	// MinBoxSize is the margin added around an item's box in the spatial
	// index, so zero-width and exactly touching items are still found
	// (default: 1nm).
	MinBoxSize float64 `yaml:"min_box_size"`

	// Logger receives diagnostics (default: slog.Default()).
	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults for most boards.
func DefaultConfig() *Config {
	return &Config{
		Workers:      runtime.NumCPU(),
		PollInterval: 250 * time.Millisecond,
		MinBoxSize:   1e-6,
	}
}

// Validate checks the configuration for errors and fills in the logger.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll_interval must be positive, got %s", ErrInvalidConfig, c.PollInterval)
	}
	if c.MinBoxSize <= 0 {
		return fmt.Errorf("%w: min_box_size must be positive, got %g", ErrInvalidConfig, c.MinBoxSize)
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return nil
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("connectivity: read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over the defaults and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("connectivity: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
