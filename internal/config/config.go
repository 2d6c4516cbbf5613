// Package config defines process configuration for the segmentation
// harness and its loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults, Load(...) to layer
//   file and environment overrides on top.
// - External errors must be wrapped via this package's error kinds.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration for the simulation harness.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// NumGames is the number of synthetic games to generate and segment.
	NumGames int `koanf:"num_games"`

	// QueueSize bounds the in-memory game queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of segmentation workers.
	WorkerCount int `koanf:"worker_count"`

	// ShardCount configures the number of shards in the drama-ranking store.
	ShardCount int `koanf:"shard_count"`

	// TopN is how many games the final drama report lists.
	TopN int `koanf:"top_n"`

	// Seed drives the synthetic game generator. The same seed always
	// produces the same games.
	Seed int64 `koanf:"seed"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future loading hooks.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		NumGames:    100,
		QueueSize:   10_000,
		WorkerCount: runtime.NumCPU() * 2,
		ShardCount:  8,
		TopN:        10,
		Seed:        1,
	}
}
