package configs

import "time"

// Scheduler configures the wall-clock sweep that triggers allocation
// passes. A zero Interval disables the scheduler.
type Scheduler struct {
	Interval    time.Duration `env:"INTERVAL" envDefault:"1m"`
	Concurrency int           `env:"CONCURRENCY" envDefault:"8"`
	// MaxTries bounds the attempts per campaign and sweep when the store
	// or another collaborator is unavailable.
	MaxTries       uint          `env:"MAX_TRIES" envDefault:"4"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"500ms"`
	MaxBackoff     time.Duration `env:"MAX_BACKOFF" envDefault:"10s"`
}
