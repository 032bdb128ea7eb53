package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/config"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	db "github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/database"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/extractor"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/llm"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/notify"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/objectstore"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core/vectorindex"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/ingest"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/services"
)

// App holds every constructed client and service. All collaborators are
// explicit constructor arguments, never package-level singletons, so tests
// can substitute fakes freely.
type App struct {
	DBClient *db.DatabaseClient
	Embedder *llm.GeminiEmbedder
	Pipeline *ingest.Pipeline
	Server   *Server
	log      *slog.Logger
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	log := slog.Default()

	dbClient, err := db.NewDatabaseClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.Info("database initialized and ready")

	objClient, err := objectstore.NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}

	embedder, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	index := vectorindex.NewPGVector(dbClient.DB())

	var notifier core.Notifier
	if cfg.NotifyURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.NotifyURL)
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	ingestCfg := ingest.Config{
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		EmbedBatchSize:  cfg.EmbedBatchSize,
		DeleteBatchSize: cfg.DeleteBatchSize,
		Workers:         cfg.IngestWorkers,
	}
	pipeline := ingest.NewPipeline(dbClient, objClient, embedder, index, extractor.New(), notifier, ingestCfg, log)
	cleaner := ingest.NewCleaner(dbClient, objClient, index, ingestCfg, log)

	docService := services.NewDocumentService(dbClient, objClient, pipeline, cleaner)
	retrieval := services.NewRetrievalService(dbClient, embedder, index)

	pipeline.Start(ctx)
	log.Info("ingestion workers started", "workers", ingestCfg.Workers)

	server := NewServer(cfg, dbClient, docService, retrieval, log)

	return &App{
		DBClient: dbClient,
		Embedder: embedder,
		Pipeline: pipeline,
		Server:   server,
		log:      log,
	}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
