// Package config loads typed settings from environment variables.
//
// Load parses a struct with caarlos0/env tags. A .env file in the working
// directory is read once through godotenv when present; a missing file is not
// an error. The parsed value is cached per Go type, so the environment is read
// only on the first call for that type.
//
//	type MediatorConfig struct {
//		Scheduler string `env:"MEDIATOR_SCHEDULER" envDefault:"goroutine"`
//		PoolSize  int    `env:"MEDIATOR_POOL_SIZE" envDefault:"0"`
//	}
//
//	var cfg MediatorConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// MustLoad panics instead of returning an error and is meant for process
// startup:
//
//	config.MustLoad(&cfg)
//
// Because of the cache, changing the environment after the first Load of a
// type has no effect on later calls for the same type.
package config
