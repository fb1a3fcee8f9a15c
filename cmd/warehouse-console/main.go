package main

import (
	"flag"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"warehouse-rag/internal/chunker"
	"warehouse-rag/internal/config"
	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/embedding"
	"warehouse-rag/internal/index"
	"warehouse-rag/internal/interpreter"
	"warehouse-rag/internal/llm"
	"warehouse-rag/internal/logger"
	"warehouse-rag/internal/service"
	"warehouse-rag/internal/store"
	"warehouse-rag/internal/tui"
)

// console glues the query coordinator and the update interpreter behind
// the single port the TUI talks to.
type console struct {
	*service.Coordinator
	interp *interpreter.Interpreter
}

func (c console) Execute(command string) (*domain.UpdateResult, error) {
	res, err := c.interp.Execute(command)
	if err != nil {
		return nil, err
	}
	// The console owns its own index; changes land immediately rather than
	// waiting for a watcher pass.
	if rerr := c.Reindex(); rerr != nil {
		logger.Warn("re-index after update failed: %v", rerr)
	}
	return res, nil
}

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/warehouse-rag/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	recordStore := store.New(cfg.Dataset.Path)
	ch := chunker.NewTokenChunker(cfg.Chunker.MaxTokens)
	emb := buildEmbedder(cfg)
	vs := buildVectorStore(cfg)
	ix := index.New(emb, vs)

	gen, err := llm.NewOpenAIGenerator(llm.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      os.Getenv(cfg.LLM.APIKeyEnv),
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})
	if err != nil {
		log.Fatalf("llm init failed: %v", err)
	}

	coord := service.New(recordStore, ch, ix, gen, cfg.Query.TopK, referenceDate(cfg))
	if err := coord.Reindex(); err != nil {
		log.Fatalf("indexing failed: %v", err)
	}

	m := tui.New(console{Coordinator: coord, interp: interpreter.New(recordStore)})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}

func buildEmbedder(cfg *config.AppConfig) domain.Embedder {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return embedding.NewTFIDF()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
			BaseURL:           cfg.Embedder.OpenAI.BaseURL,
			APIKey:            os.Getenv(cfg.Embedder.OpenAI.APIKeyEnv),
			Model:             cfg.Embedder.OpenAI.Model,
			Timeout:           time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			RequestsPerSecond: cfg.Embedder.OpenAI.RequestsPerSecond,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}
	return nil
}

func buildVectorStore(cfg *config.AppConfig) domain.VectorStore {
	switch cfg.VectorStore.Type {
	case "memory", "":
		return index.NewMemoryStore()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		return index.NewQdrantStore(index.QdrantConfig{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}
	return nil
}

func referenceDate(cfg *config.AppConfig) func() time.Time {
	if cfg.Query.ReferenceDate == "" {
		return nil
	}
	pinned, err := time.Parse(domain.DateLayout, cfg.Query.ReferenceDate)
	if err != nil {
		log.Fatalf("invalid reference_date %q: %v", cfg.Query.ReferenceDate, err)
	}
	return func() time.Time { return pinned }
}
