package configs

import "time"

// NATS configures the JetStream allocation store, the request dispatcher
// and the result publisher. All of them share one connection.
type NATS struct {
	URL string `env:"URL" envDefault:"nats://127.0.0.1:4222"`
	// Bucket is the JetStream KV bucket holding allocation records.
	Bucket string `env:"BUCKET" envDefault:"allocations"`
	// SubjectPrefix is prepended to the request and result subjects:
	// <prefix>.requests and <prefix>.results.<campaignId>.
	SubjectPrefix string        `env:"SUBJECT_PREFIX" envDefault:"alloc"`
	QueueGroup    string        `env:"QUEUE_GROUP" envDefault:"allocators"`
	Dispatch      bool          `env:"DISPATCH" envDefault:"false"`
	Publish       bool          `env:"PUBLISH" envDefault:"false"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"5s"`
}

// Enabled reports whether any component needs a NATS connection.
func (c NATS) Enabled(store string) bool {
	return c.Dispatch || c.Publish || store == StoreNATS
}
