package config

import (
	"github.com/caarlos0/env/v11"

	"mesa-alloc/internal/config/configs"
)

// Config aggregates all configuration sections of the allocation service.
// Fields are populated from environment variables using caarlos0/env; each
// nested struct is parsed with its envPrefix. See the configs package for
// defaults.
type Config struct {
	// Env names the deployment environment (e.g. prod, dev). It is attached
	// to every log line.
	Env string `env:"ENV" envDefault:"prod"`

	HTTP configs.HTTP     `envPrefix:"HTTP_"`
	Log  configs.Logger   `envPrefix:"LOG_"`
	Psql configs.Postgres `envPrefix:"PSQL_"`

	// Alloc holds the default allocation parameters.
	Alloc configs.Allocation `envPrefix:"ALLOC_"`
	Sched configs.Scheduler  `envPrefix:"SCHED_"`
	NATS  configs.NATS       `envPrefix:"NATS_"`
	Store configs.Store      `envPrefix:"STORE_"`
	// Catalog selects the measure source.
	Catalog configs.Catalog `envPrefix:"CATALOG_"`
}

// Load reads configuration from environment variables into a Config. All
// fields fall back to their defaults when no variable is set.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
