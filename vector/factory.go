package vector

import "fmt"

// Backend identifies which Provider implementation to construct.
type Backend string

const (
	BackendChromem Backend = "chromem"
	BackendQdrant  Backend = "qdrant"
)

// FactoryConfig carries enough configuration to construct any Provider.
type FactoryConfig struct {
	Backend     Backend
	PersistPath string
	Compress    bool
	QdrantHost  string
	QdrantPort  int
	QdrantAPIKey string
	QdrantUseTLS bool
}

// New constructs the Provider named by cfg.Backend.
func New(cfg FactoryConfig) (Provider, error) {
	switch cfg.Backend {
	case "", BackendChromem:
		return NewChromemProvider(ChromemConfig{PersistPath: cfg.PersistPath, Compress: cfg.Compress})
	case BackendQdrant:
		return NewQdrantProvider(QdrantConfig{
			Host:   cfg.QdrantHost,
			Port:   cfg.QdrantPort,
			APIKey: cfg.QdrantAPIKey,
			UseTLS: cfg.QdrantUseTLS,
		})
	default:
		return nil, fmt.Errorf("vector: unknown backend %q", cfg.Backend)
	}
}
