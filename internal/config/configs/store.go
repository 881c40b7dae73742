package configs

// Allocation store backends.
const (
	StorePostgres = "postgres"
	StoreNATS     = "nats"
)

// Store selects where allocation records and history are persisted.
type Store struct {
	Backend string `env:"BACKEND" envDefault:"postgres"`
}
