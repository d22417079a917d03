// Command paperqa answers questions about research papers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/paperqa/cgo/mupdf"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/storage/qdrant"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/paperqa/internal/adapters/driven/tokens"
	"github.com/custodia-labs/paperqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/paperqa/internal/connectors/filesystem"
	"github.com/custodia-labs/paperqa/internal/core/domain"
	"github.com/custodia-labs/paperqa/internal/core/ports/driven"
	"github.com/custodia-labs/paperqa/internal/core/services"
	"github.com/custodia-labs/paperqa/internal/extractors/pdf"
	"github.com/custodia-labs/paperqa/internal/extractors/pdf/tables"
	"github.com/custodia-labs/paperqa/internal/logger"
	"github.com/custodia-labs/paperqa/internal/postprocessors/chunker"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("loading .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// PAPERQA_HOME relocates config, prompts and data from ~/.paperqa.
	home := os.Getenv("PAPERQA_HOME")

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	prompts, err := file.NewPromptStore(subdir(home, "prompts"))
	if err != nil {
		return fmt.Errorf("opening prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	models := ai.Initialise(settings)
	defer models.Close()
	for _, w := range models.Warnings {
		logger.Warn("%s", w)
	}

	store, err := sqlite.NewStore(subdir(home, "data"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	vectors, err := vectorStoreFor(settings, store, models.EmbeddingService)
	if err != nil {
		return err
	}
	defer vectors.Close()

	counter := tokens.NewCounter(settings.LLM.Model)

	index := services.NewIndexService(models.EmbeddingService, vectors)

	summaries := services.NewSummarizationService(models.SummariserService, models.LLMService, prompts)
	summaries.SetUsageRecorder(store.UsageStore(), counter)

	answers := services.NewQAService(models.LLMService, prompts)
	answers.SetUsageRecorder(store.UsageStore(), counter)

	extractor := pdf.New(mupdf.New(), tables.New())
	splitter := chunker.New(
		chunker.WithChunkSize(settings.Chunking.Size),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)

	processor := services.NewPaperProcessor(
		store.PaperStore(),
		store.ChunkStore(),
		store.ConversationStore(),
		extractor,
		pdf.Layout{},
		splitter,
		summaries,
		index,
	)
	processor.SetProgressReporter(store.TaskStore())
	processor.SetChunkStrategy(settings.Chunking.Strategy)

	chat := services.NewChatService(
		store.PaperStore(),
		store.ConversationStore(),
		index,
		answers,
		settings.Retrieval.TopK,
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Papers:        processor,
		Chat:          chat,
		Index:         index,
		Summarization: summaries,
		Settings:      settingsService,
		Extractor:     extractor,
		Tasks:         store.TaskStore(),
		Usage:         store.UsageStore(),
		Inbox:         services.NewInboxService(processor, filesystem.Open),
	})

	return cli.Execute(ctx)
}

// subdir joins name to home, keeping "" so adapters use their defaults.
func subdir(home, name string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, name)
}

// vectorStoreFor opens the configured vector store.
func vectorStoreFor(
	settings *domain.AppSettings,
	store *sqlite.Store,
	embedder driven.EmbeddingService,
) (driven.VectorStore, error) {
	switch settings.VectorStore.Provider {
	case domain.VectorStoreMemory:
		return memory.NewVectorStore(), nil
	case domain.VectorStoreQdrant:
		dim := domain.EmbeddingDimensions()[settings.Embedding.Model]
		if embedder != nil {
			dim = embedder.Dimensions()
		}
		s, err := qdrant.NewStore(qdrant.Config{
			URL:       settings.VectorStore.URL,
			APIKey:    settings.VectorStore.APIKey,
			Dimension: dim,
		})
		if err != nil {
			return nil, fmt.Errorf("opening qdrant: %w", err)
		}
		return s, nil
	default:
		return store.VectorStore(), nil
	}
}
