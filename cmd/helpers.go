package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/chat"
	"github.com/grimaldi89/martechito/internal/config"
	"github.com/grimaldi89/martechito/internal/embeddings"
	"github.com/grimaldi89/martechito/internal/index"
	"github.com/grimaldi89/martechito/internal/ingest"
	"github.com/grimaldi89/martechito/internal/llm"
	"github.com/grimaldi89/martechito/internal/objectstore"
	"github.com/grimaldi89/martechito/internal/retrieval"
	"github.com/grimaldi89/martechito/internal/telemetry"
)

const fetchTimeout = 30 * time.Second

// loadConfig loads and validates the config. Validation failures are fatal:
// commands must not start working with an incomplete configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `martechito init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openAIKey() (string, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	return key, nil
}

func buildEmbedder(cfg *config.Config) (*embeddings.OpenAIEmbedder, error) {
	key, err := openAIKey()
	if err != nil {
		return nil, err
	}
	return embeddings.NewOpenAIEmbedder(key, cfg.Embedding.Model, cfg.EmbeddingDimensions()), nil
}

func buildProvider(cfg *config.Config) (llm.Provider, error) {
	key, err := openAIKey()
	if err != nil {
		return nil, err
	}
	return llm.NewOpenAIProvider(key, cfg.Generation.Model), nil
}

// openIndex opens the persistent vector index and returns the collection
// manager and store over it.
func openIndex(cfg *config.Config, embedder embeddings.Embedder) (*index.Manager, *index.Store, error) {
	db, err := index.OpenDB(cfg.Index.Path)
	if err != nil {
		return nil, nil, err
	}
	manager := index.NewManager(db, cfg.Index.Collection, cfg.EmbeddingDimensions(), embeddings.ToChromemFunc(embedder))
	return manager, index.NewStore(manager), nil
}

func buildPipeline(cfg *config.Config, embedder embeddings.Embedder, manager *index.Manager, store *index.Store) *ingest.Pipeline {
	return ingest.New(
		ingest.NewLoader(fetchTimeout),
		objectstore.NewFS(cfg.ObjectStore.Root, cfg.ObjectStore.Project),
		ingest.NewSplitter(cfg.Chunking.Size, cfg.Chunking.Overlap),
		embedder,
		manager,
		store,
	)
}

func defaultStrategy(cfg *config.Config) retrieval.Strategy {
	return retrieval.Strategy{
		Kind:      retrieval.Kind(cfg.Retrieval.Strategy),
		Threshold: float32(cfg.Retrieval.Threshold),
		K:         cfg.Retrieval.K,
		Lambda:    cfg.Retrieval.Lambda,
	}
}

func buildRetriever(cfg *config.Config, embedder embeddings.Embedder, store *index.Store) *retrieval.Retriever {
	return retrieval.New(embedder, store, defaultStrategy(cfg))
}

func buildEngine(cfg *config.Config, provider llm.Provider, retriever *retrieval.Retriever, sink *telemetry.Sink) *chat.Engine {
	reformulator := chat.NewReformulator(provider, cfg.Generation.Model)
	synthesizer := chat.NewSynthesizer(provider, cfg.Generation.Model, cfg.Generation.MaxTokens, cfg.Generation.Temperature)
	return chat.NewEngine(reformulator, synthesizer, retriever, sink)
}

func openCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	return catalog.Open(cfg.Catalog.Path, cfg.Catalog.Dataset, cfg.Catalog.Table)
}
