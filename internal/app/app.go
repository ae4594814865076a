// Package app assembles the verification pipeline and its backends from config.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/fitcheck/internal/cache"
	"github.com/Harshitk-cp/fitcheck/internal/config"
	"github.com/Harshitk-cp/fitcheck/internal/domain"
	"github.com/Harshitk-cp/fitcheck/internal/embedding"
	"github.com/Harshitk-cp/fitcheck/internal/ingest"
	"github.com/Harshitk-cp/fitcheck/internal/llm"
	"github.com/Harshitk-cp/fitcheck/internal/retrieval"
	"github.com/Harshitk-cp/fitcheck/internal/service"
	"github.com/Harshitk-cp/fitcheck/internal/store"
	"github.com/Harshitk-cp/fitcheck/internal/transcript"
)

const (
	BackendHTTP  = "http"
	BackendLocal = "local"

	localCacheTTL = time.Minute
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatsSource reports corpus statistics.
type StatsSource interface {
	Stats(ctx context.Context) (*domain.CorpusStats, error)
}

// Components is everything a binary needs. Optional parts are nil when not
// configured. Call Close when done.
type Components struct {
	Pipeline   *service.PipelineService
	Extraction *service.ExtractionService
	Synthesis  *service.SynthesisService
	Retriever  domain.Retriever
	Stats      StatsSource
	Checks     map[string]Pinger

	Pool     *pgxpool.Pool
	Papers   *store.PaperStore
	Embedder domain.EmbeddingClient

	logger  *zap.Logger
	closers []func()
}

// Options select which optional backends Build must provide.
type Options struct {
	// RequireDatabase fails Build when DATABASE_URL is unset or unreachable.
	RequireDatabase bool
	// RequireEmbedder fails Build when no embedding client can be created.
	RequireEmbedder bool
}

func Build(ctx context.Context, logger *zap.Logger, opts Options) (*Components, error) {
	c := &Components{logger: logger, Checks: map[string]Pinger{}}
	if err := c.build(ctx, opts); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Components) build(ctx context.Context, opts Options) error {
	retrievalCfg := config.RetrievalSettings()
	needEmbedder := opts.RequireEmbedder || retrievalCfg.Backend == BackendLocal
	needDatabase := opts.RequireDatabase || retrievalCfg.Backend == BackendLocal

	if err := c.connectDatabase(ctx, needDatabase); err != nil {
		return err
	}

	if needEmbedder {
		emb := retrievalCfg.Embedding
		client, err := embedding.NewClient(ctx, emb.Provider, emb.APIKey, emb.Dimensions)
		if err != nil {
			return fmt.Errorf("embedding client: %w", err)
		}
		c.Embedder = client
		c.logger.Info("embedding client initialized", zap.String("provider", emb.Provider), zap.Int("dimensions", emb.Dimensions))
	}

	if err := c.buildRetriever(retrievalCfg); err != nil {
		return err
	}

	completion := c.completionClient()
	c.Extraction = service.NewExtractionService(completion, c.logger)
	c.Synthesis = service.NewSynthesisService(completion, c.logger)

	p := config.PipelineSettings()
	c.Pipeline = service.NewPipelineService(c.Extraction, c.Synthesis, c.Retriever, service.PipelineConfig{
		MaxConcurrency: p.MaxConcurrency,
		ClaimTimeout:   p.ClaimTimeout,
		Timeout:        p.Timeout,
	}, c.logger)

	if t := c.transcriber(); t != nil {
		c.Pipeline.SetTranscriber(t)
	}
	return nil
}

func (c *Components) connectDatabase(ctx context.Context, required bool) error {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		if required {
			return errors.New("DATABASE_URL is required")
		}
		return nil
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	c.closers = append(c.closers, pool.Close)
	if err := pool.Ping(ctx); err != nil {
		if required {
			return fmt.Errorf("ping database: %w", err)
		}
		c.logger.Warn("database unreachable, continuing without it", zap.Error(err))
	}

	c.Pool = pool
	c.Papers = store.NewPaperStore(pool)
	c.Stats = c.Papers
	c.Checks["database"] = c.Papers
	c.logger.Info("connected to database")
	return nil
}

func (c *Components) buildRetriever(cfg config.Retrieval) error {
	switch cfg.Backend {
	case BackendLocal:
		local := retrieval.NewLocalSearcher(c.Embedder, c.Papers)
		c.Retriever = local
		c.Checks["search"] = local
	case BackendHTTP:
		client := retrieval.NewHTTPClient(cfg.URL, cfg.Timeout, c.logger)
		c.Retriever = client
		c.Checks["search"] = client
		if c.Stats == nil {
			c.Stats = client
		}
	default:
		return fmt.Errorf("unknown retrieval backend: %s (valid options: http, local)", cfg.Backend)
	}
	c.logger.Info("retrieval backend initialized", zap.String("backend", cfg.Backend))

	if cfg.CacheTTL <= 0 {
		return nil
	}
	var layer cache.Cache = cache.NewMemoryCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis client: %w", err)
		}
		c.closers = append(c.closers, func() { _ = rdb.Close() })
		shared := cache.NewRedisCache(rdb, cfg.CacheTTL)
		c.Checks["redis"] = shared
		layer = cache.NewLayeredCache(cache.NewMemoryCache(localCacheTTL, 2*localCacheTTL), shared, localCacheTTL)
	}
	c.Retriever = retrieval.NewCached(c.Retriever, layer, cfg.CacheTTL, c.logger)
	return nil
}

// completionClient returns nil when the provider cannot be built, which puts
// synthesis on the rule-based path and makes extraction unavailable.
func (c *Components) completionClient() domain.CompletionClient {
	cfg := config.LLMSettings()
	var opts []llm.Option
	if cfg.Model != "" {
		opts = append(opts, llm.WithModel(cfg.Model))
	}
	client, err := llm.NewClient(cfg.Provider, cfg.APIKey, opts...)
	if err != nil {
		c.logger.Warn("LLM client initialization failed", zap.String("provider", cfg.Provider), zap.Error(err))
		return nil
	}
	c.logger.Info("LLM client initialized", zap.String("provider", cfg.Provider))
	return client
}

func (c *Components) transcriber() domain.Transcriber {
	cfg := config.TranscriptSettings()
	if cfg.WhisperAPIKey == "" {
		c.logger.Warn("no speech-to-text key configured, URL verification is disabled")
		return nil
	}
	acquirer := transcript.NewYTDLPAcquirer(cfg.YTDLPPath, cfg.FFmpegPath, cfg.MaxAudioBytes)
	stt := transcript.NewWhisperTranscriber(cfg.WhisperAPIKey, cfg.WhisperBaseURL)
	return transcript.NewService(acquirer, stt, transcript.Config{
		Platforms:  cfg.Platforms,
		MaxWords:   cfg.MaxWords,
		ScratchDir: cfg.ScratchDir,
	}, c.logger)
}

// Ingester requires a database and an embedder.
func (c *Components) Ingester() (*ingest.Ingester, error) {
	if c.Papers == nil || c.Embedder == nil {
		return nil, errors.New("ingestion needs DATABASE_URL and an embedding provider")
	}
	return ingest.NewIngester(c.Embedder, c.Papers, c.logger), nil
}

// Close releases pools and clients in reverse order of creation.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

var (
	_ domain.PaperStore = (*store.PaperStore)(nil)
	_ ingest.Store      = (*store.PaperStore)(nil)
	_ StatsSource       = (*retrieval.HTTPClient)(nil)
	_ Pinger            = (*cache.RedisCache)(nil)
)
