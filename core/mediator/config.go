package mediator

import (
	"fmt"

	"github.com/dmitrymomot/mediator/core/config"
	"github.com/dmitrymomot/mediator/pkg/async"
)

// Scheduler names accepted by Config.
const (
	SchedulerGoroutine = "goroutine"
	SchedulerInline    = "inline"
	SchedulerPool      = "pool"
)

// Config holds the environment-driven mediator settings.
type Config struct {
	HoldReferences bool   `env:"MEDIATOR_HOLD_REFERENCES" envDefault:"false"`
	UnwrapErrors   bool   `env:"MEDIATOR_UNWRAP_ERRORS" envDefault:"false"`
	Scheduler      string `env:"MEDIATOR_SCHEDULER" envDefault:"goroutine"`
	PoolSize       int    `env:"MEDIATOR_POOL_SIZE" envDefault:"0"`
}

// LoadConfig reads Config from the environment (and .env, if present).
// The result is cached for the life of the process.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports unusable settings.
func (c Config) Validate() error {
	switch c.Scheduler {
	case "", SchedulerGoroutine, SchedulerInline, SchedulerPool:
	default:
		return fmt.Errorf("%w: unknown scheduler %q", ErrInvalidConfig, c.Scheduler)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: negative pool size %d", ErrInvalidConfig, c.PoolSize)
	}
	return nil
}

func (c Config) scheduler() async.Scheduler {
	switch c.Scheduler {
	case SchedulerInline:
		return async.Inline
	case SchedulerPool:
		return async.NewPool(c.PoolSize).Schedule
	default:
		return async.Go
	}
}

// WithConfig applies a Config. Options given after it override its values.
func WithConfig(cfg Config) Option {
	return func(m *Mediator) {
		m.holdReferences = cfg.HoldReferences
		m.errorPolicy = PropagateWrapped
		if cfg.UnwrapErrors {
			m.errorPolicy = PropagateUnwrapped
		}
		m.scheduler = cfg.scheduler()
	}
}
