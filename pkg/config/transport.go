package config

// ToolTransportConfig describes the single authenticated RPC endpoint every
// agent invokes tools through.
type ToolTransportConfig struct {
	Endpoint  string `yaml:"endpoint" validate:"required"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// MemoryConfig describes the embedding model backing the vector-store-backed
// memory service.
type MemoryConfig struct {
	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`
}
