// Package bootstrap builds the shared components of the API server and the
// CLI from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/cswnn/Capstone-Homefix2/internal/assistant"
	"github.com/cswnn/Capstone-Homefix2/internal/cache"
	"github.com/cswnn/Capstone-Homefix2/internal/classifier"
	"github.com/cswnn/Capstone-Homefix2/internal/config"
	"github.com/cswnn/Capstone-Homefix2/internal/conversation"
	"github.com/cswnn/Capstone-Homefix2/internal/embedding"
	"github.com/cswnn/Capstone-Homefix2/internal/ingest"
	"github.com/cswnn/Capstone-Homefix2/internal/llm"
	"github.com/cswnn/Capstone-Homefix2/internal/monitoring"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
	"github.com/cswnn/Capstone-Homefix2/internal/recommend"
	"github.com/cswnn/Capstone-Homefix2/internal/retrieval"
	"github.com/cswnn/Capstone-Homefix2/internal/storage"
)

// NewLogger creates the process logger.
func NewLogger(cfg *config.Config) *observability.Logger {
	return observability.NewLogger(observability.LogConfig{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
}

// NewEmbedder creates the embedding client.
func NewEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	client, err := embedding.NewClient(embedding.Config{
		APIKey:  cfg.Embedding.APIKey,
		Model:   cfg.Embedding.Model,
		BaseURL: cfg.Embedding.BaseURL,
		Timeout: cfg.Embedding.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	return client, nil
}

// LoadKnowledgeBase reads and indexes the knowledge base. progress may be nil.
func LoadKnowledgeBase(ctx context.Context, cfg *config.Config, embedder embedding.Embedder, logger *observability.Logger, progress func(done, total int)) (*ingest.KnowledgeBase, error) {
	loader := ingest.NewLoader(embedder, logger, ingest.LoaderConfig{
		Path:      cfg.Knowledge.Path,
		BatchSize: cfg.Embedding.BatchSize,
		Retrieval: retrieval.Options{TopK: cfg.Knowledge.TopK, Band: cfg.Knowledge.Band},
		Progress:  progress,
	})
	return loader.Load(ctx)
}

// NewClassifier connects to the inference server and verifies the model is
// loaded.
func NewClassifier(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*classifier.Classifier, error) {
	backend, err := classifier.NewV2Backend(classifier.V2Config{
		BaseURL:        cfg.Classifier.BaseURL,
		Model:          cfg.Classifier.Model,
		InputName:      cfg.Classifier.InputName,
		DefectOutput:   cfg.Classifier.DefectOutput,
		LocationOutput: cfg.Classifier.LocationOutput,
		Timeout:        cfg.Classifier.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create inference backend: %w", err)
	}

	c := classifier.New(backend, cfg.Classifier.ImageSize, logger)
	if err := c.CheckReady(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewLLM creates the chat completion client with its generator and judge.
func NewLLM(cfg *config.Config, logger *observability.Logger) (*llm.Generator, *llm.Judge, error) {
	if err := cfg.RequireLLM(); err != nil {
		return nil, nil, err
	}
	client, err := llm.NewClient(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Timeout: cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}

	generator := llm.NewGenerator(client, llm.Models{Answer: cfg.LLM.AnswerModel, Judge: cfg.LLM.JudgeModel}, logger)
	judge := llm.NewJudge(client, cfg.LLM.JudgeModel, logger)
	return generator, judge, nil
}

// NewSearcher returns the product searcher, or nil when credentials are
// missing so the pipeline serves fallback links.
func NewSearcher(ctx context.Context, cfg *config.Config, logger *observability.Logger) recommend.Searcher {
	if !cfg.SearchEnabled() {
		logger.Warn().Msg("GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_ENGINE_ID not set, product search disabled")
		return nil
	}
	s, err := recommend.NewGoogleSearcher(ctx, recommend.GoogleConfig{
		APIKey:   cfg.Search.APIKey,
		EngineID: cfg.Search.EngineID,
		Endpoint: cfg.Search.Endpoint,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("product search unavailable")
		return nil
	}
	return s
}

// Resources owns the connections opened while wiring.
type Resources struct {
	closers []func() error
	redis   *cache.RedisClient
}

func (r *Resources) add(fn func() error) {
	r.closers = append(r.closers, fn)
}

// Close releases everything in reverse order of acquisition.
func (r *Resources) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// redisClient connects lazily so the cache and the session store share one
// connection pool.
func (r *Resources) redisClient(cfg *config.Config) (*cache.RedisClient, error) {
	if r.redis != nil {
		return r.redis, nil
	}
	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		PoolSize: cfg.Cache.Redis.PoolSize,
	})
	if err != nil {
		return nil, err
	}
	r.add(client.Close)
	r.redis = client
	return client, nil
}

// NewCache creates the search result cache.
func (r *Resources) NewCache(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		client, err := r.redisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		return client, nil
	}
	c := cache.NewMemoryClient(cfg.Cache.MaxEntries)
	r.add(c.Close)
	return c, nil
}

// NewSessionStore creates the conversation store.
func (r *Resources) NewSessionStore(cfg *config.Config, logger *observability.Logger) (conversation.Store, error) {
	if cfg.Session.Store == "redis" {
		client, err := r.redisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		return conversation.NewRedisStore(client.Raw(), cfg.Session.KeyPrefix, cfg.Session.IdleTimeout), nil
	}
	store := conversation.NewMemoryStore(cfg.Session.IdleTimeout, logger)
	r.add(store.Close)
	return store, nil
}

// NewAudit creates the audit logger, opening and migrating the database when
// one is configured. A database that cannot be opened only disables
// persistence.
func (r *Resources) NewAudit(ctx context.Context, cfg *config.Config, logger *observability.Logger) *monitoring.AuditLogger {
	db, err := storage.Open(cfg.Database)
	if err != nil {
		if !errors.Is(err, storage.ErrDisabled) {
			logger.Warn().Err(err).Msg("audit database unavailable, logging only")
		}
		return monitoring.NewAuditLogger(logger, nil)
	}

	repo := storage.NewInteractionRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		logger.Warn().Err(err).Msg("audit migration failed, logging only")
		_ = db.Close()
		return monitoring.NewAuditLogger(logger, nil)
	}
	r.add(db.Close)
	return monitoring.NewAuditLogger(logger, repo)
}

// App is the fully wired API server dependency graph.
type App struct {
	Config      *config.Config
	Logger      *observability.Logger
	Knowledge   *ingest.KnowledgeBase
	Classifier  *classifier.Classifier
	Assistant   *assistant.Assistant
	Recommender *recommend.Pipeline
	Audit       *monitoring.AuditLogger

	resources *Resources
}

// Close releases the app's connections.
func (a *App) Close() error {
	return a.resources.Close()
}

// Build wires every component. Any error here is fatal at startup.
func Build(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*App, error) {
	res := &Resources{}
	app, err := build(ctx, cfg, logger, res)
	if err != nil {
		_ = res.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, cfg *config.Config, logger *observability.Logger, res *Resources) (*App, error) {
	generator, judge, err := NewLLM(cfg, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := NewEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	kb, err := LoadKnowledgeBase(ctx, cfg, embedder, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("load knowledge base: %w", err)
	}

	clf, err := NewClassifier(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := res.NewSessionStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	searchCache, err := res.NewCache(cfg)
	if err != nil {
		return nil, err
	}

	pipeline := recommend.NewPipeline(NewSearcher(ctx, cfg, logger), searchCache, recommend.Config{
		PerKeyword: cfg.Search.PerKeyword,
		PerGroup:   cfg.Search.PerGroup,
		CacheTTL:   cfg.Cache.TTL,
		Timeout:    cfg.Search.Timeout,
	}, logger)

	asst := assistant.New(
		kb.Retriever,
		generator,
		conversation.NewMachine(judge, logger),
		conversation.NewSessions(store),
		logger,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Knowledge:   kb,
		Classifier:  clf,
		Assistant:   asst,
		Recommender: pipeline,
		Audit:       res.NewAudit(ctx, cfg, logger),
		resources:   res,
	}, nil
}
