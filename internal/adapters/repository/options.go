package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCatalogPath loads the catalog from a YAML file instead of the embedded one.
func WithCatalogPath(path string) Option {
	return func(s *MemoryStore) {
		if path != "" {
			s.path = path
		}
	}
}

// WithCatalogData loads the catalog from raw YAML bytes.
func WithCatalogData(data []byte) Option {
	return func(s *MemoryStore) {
		if len(data) > 0 {
			s.raw = data
		}
	}
}
