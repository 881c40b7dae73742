package configs

import "time"

// HTTP configures the API server of the allocation service.
type HTTP struct {
	Port uint16 `env:"PORT" envDefault:"8080"`
	// ShutdownTimeout bounds the graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}
