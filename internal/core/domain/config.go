package domain

import "go.trai.ch/zerr"

const (
	// DefaultShards is the default number of resolution cache shards.
	DefaultShards = 16
	// DefaultWarmParallelism is the default number of concurrent resolutions during warm-up.
	DefaultWarmParallelism = 4
)

// Config holds the engine configuration.
type Config struct {
	Resolver  ResolverConfig  `yaml:"resolver" toml:"resolver"`
	Selection SelectionConfig `yaml:"selection" toml:"selection"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Snapshot  SnapshotConfig  `yaml:"snapshot" toml:"snapshot"`
}

// ResolverConfig configures the method resolution cache.
type ResolverConfig struct {
	Shards          int `yaml:"shards" toml:"shards"`
	WarmParallelism int `yaml:"warm_parallelism" toml:"warm_parallelism"`
}

// SelectionConfig configures interceptor selection.
type SelectionConfig struct {
	// Cache keeps selector results per (method, target type) on each proxy.
	Cache bool `yaml:"cache" toml:"cache"`
}

// LoggingConfig configures the logger adapter.
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// Telemetry backends.
const (
	TelemetryProgrock = "progrock"
	TelemetryOTel     = "otel"
)

// TelemetryConfig configures per-call telemetry.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Backend string `yaml:"backend" toml:"backend"`
}

// SnapshotConfig configures where resolution snapshots are written.
type SnapshotConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Resolver: ResolverConfig{
			Shards:          DefaultShards,
			WarmParallelism: DefaultWarmParallelism,
		},
		Selection: SelectionConfig{Cache: true},
		Logging:   LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{Backend: TelemetryProgrock},
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Resolver.Shards <= 0 || c.Resolver.Shards&(c.Resolver.Shards-1) != 0 {
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "shards must be a positive power of two"), "shards", c.Resolver.Shards)
	}
	if c.Resolver.WarmParallelism <= 0 {
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "warm parallelism must be positive"), "warm_parallelism", c.Resolver.WarmParallelism)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown log level"), "level", c.Logging.Level)
	}
	switch c.Telemetry.Backend {
	case "", TelemetryProgrock, TelemetryOTel:
	default:
		return zerr.With(zerr.Wrap(ErrInvalidConfig, "unknown telemetry backend"), "backend", c.Telemetry.Backend)
	}
	return nil
}
