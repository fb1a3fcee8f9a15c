package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"warehouse-rag/internal/chunker"
	"warehouse-rag/internal/config"
	"warehouse-rag/internal/domain"
	"warehouse-rag/internal/embedding"
	"warehouse-rag/internal/index"
	"warehouse-rag/internal/interpreter"
	"warehouse-rag/internal/llm"
	"warehouse-rag/internal/logger"
	"warehouse-rag/internal/server"
	"warehouse-rag/internal/service"
	"warehouse-rag/internal/store"
	"warehouse-rag/internal/watcher"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var verbose bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/warehouse-rag/config.yaml if not provided)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()
	logger.SetVerbose(verbose)

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

	// Assemble components
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
	interp := interpreter.New(recordStore)

	logger.Section("initial indexing")
	if err := coord.Reindex(); err != nil {
		// A missing dataset is not fatal; the watcher picks it up once it
		// appears and queries answer from the placeholder until then.
		logger.Warn("initial indexing failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := watcher.New(
		cfg.Dataset.Path,
		time.Duration(cfg.Watcher.PollIntervalSecs)*time.Second,
		time.Duration(cfg.Watcher.DebounceMillis)*time.Millisecond,
	)
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watcher stopped: %v", err)
		}
	}()
	go func() {
		if err := coord.Run(ctx, w.Changes()); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("coordinator stopped: %v", err)
		}
	}()

	srv := server.New(cfg.Server.Addr, coord, interp, time.Duration(cfg.LLM.TimeoutSecs)*time.Second)
	go func() {
		logger.Info("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown: %v", err)
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

// referenceDate returns the projector clock: a fixed date when pinned in
// the config, otherwise nil for the wall clock.
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
