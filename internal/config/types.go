package config

// GenerationConfig selects the chat model used for reformulation and answer
// synthesis.
type GenerationConfig struct {
	Model       string  `yaml:"model" koanf:"model"`
	MaxTokens   int     `yaml:"maxtokens" koanf:"maxtokens"`
	Temperature float64 `yaml:"temperature" koanf:"temperature"`
}

// EmbeddingConfig selects the embedding model. Dimensions is independent of
// the chunk size: it is the width of the model's output vectors and defaults
// from the model name when left zero.
type EmbeddingConfig struct {
	Model      string `yaml:"model" koanf:"model"`
	Dimensions int    `yaml:"dimensions" koanf:"dimensions"`
}

// IndexConfig holds vector index connection parameters.
type IndexConfig struct {
	Path       string `yaml:"path" koanf:"path"`
	Collection string `yaml:"collection" koanf:"collection"`
}

// ChunkingConfig governs text splitting during ingestion.
type ChunkingConfig struct {
	Size    int `yaml:"size" koanf:"size"`
	Overlap int `yaml:"overlap" koanf:"overlap"`
}

// CatalogConfig identifies the document descriptor catalog: a SQLite file
// and the dataset/table the descriptors live in.
type CatalogConfig struct {
	Path    string `yaml:"path" koanf:"path"`
	Dataset string `yaml:"dataset" koanf:"dataset"`
	Table   string `yaml:"table" koanf:"table"`
}

// ObjectStoreConfig identifies the object store used for single-object
// ingestion.
type ObjectStoreConfig struct {
	Root    string `yaml:"root" koanf:"root"`
	Project string `yaml:"project" koanf:"project"`
}

// RetrievalConfig sets the default retrieval strategy. Sessions may override
// it at runtime.
type RetrievalConfig struct {
	Strategy  string  `yaml:"strategy" koanf:"strategy"`
	Threshold float64 `yaml:"threshold" koanf:"threshold"`
	K         int     `yaml:"k" koanf:"k"`
	Lambda    float64 `yaml:"lambda" koanf:"lambda"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allowall" koanf:"allowall"`
}

// TelemetryConfig configures the best-effort turn telemetry sink. An empty
// URL disables emission.
type TelemetryConfig struct {
	URL string `yaml:"url" koanf:"url"`
}

// Config is the top-level martechito configuration, corresponding to
// martechito.yml.
type Config struct {
	Generation  GenerationConfig  `yaml:"generation" koanf:"generation"`
	Embedding   EmbeddingConfig   `yaml:"embedding" koanf:"embedding"`
	Index       IndexConfig       `yaml:"index" koanf:"index"`
	Chunking    ChunkingConfig    `yaml:"chunking" koanf:"chunking"`
	Catalog     CatalogConfig     `yaml:"catalog" koanf:"catalog"`
	ObjectStore ObjectStoreConfig `yaml:"objectstore" koanf:"objectstore"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" koanf:"retrieval"`
	Server      ServerConfig      `yaml:"server" koanf:"server"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" koanf:"telemetry"`

	// Include/Exclude are doublestar patterns matched against descriptor
	// URLs before batch ingestion.
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}
