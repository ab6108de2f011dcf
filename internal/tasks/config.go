package tasks

import (
	"time"

	"github.com/mrlokans/highlights-keeper/internal/config"
)

// Config holds configuration for the background queue.
type Config struct {
	// Workers is the number of concurrent workers. Default: 1
	Workers int

	// ReleaseAfter is when stuck tasks are released back to the queue. Default: 15m
	ReleaseAfter time.Duration

	// CleanupInterval is how often finished tasks are swept. Default: 1h
	CleanupInterval time.Duration

	// BusyTimeout is how long the queue connection waits on a locked database. Default: 5s
	BusyTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:         1,
		ReleaseAfter:    15 * time.Minute,
		CleanupInterval: time.Hour,
		BusyTimeout:     5 * time.Second,
	}
}

// FromAppConfig builds a queue Config from application settings, keeping
// defaults for anything left unset.
func FromAppConfig(cfg config.Tasks) Config {
	out := DefaultConfig()
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	if cfg.ReleaseAfter > 0 {
		out.ReleaseAfter = cfg.ReleaseAfter
	}
	if cfg.CleanupInterval > 0 {
		out.CleanupInterval = cfg.CleanupInterval
	}
	return out
}
