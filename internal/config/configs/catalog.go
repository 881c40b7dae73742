package configs

// Measure catalog sources.
const (
	CatalogMemory   = "memory"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// Catalog selects the MeasureSource variant. The file source reads a YAML
// document from Path and reloads it on change when Watch is set.
type Catalog struct {
	Source string `env:"SOURCE" envDefault:"postgres"`
	Path   string `env:"PATH" envDefault:"measures.yaml"`
	Watch  bool   `env:"WATCH" envDefault:"true"`
}
