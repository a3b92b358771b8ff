// Package app wires the services together and owns their lifecycles.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finpal/finpal-go/internal/api"
	"github.com/finpal/finpal-go/internal/config"
	"github.com/finpal/finpal-go/internal/constants"
	"github.com/finpal/finpal-go/internal/lesson"
	"github.com/finpal/finpal-go/internal/orchestrator"
	"github.com/finpal/finpal-go/internal/prompt"
	"github.com/finpal/finpal-go/internal/service/ai"
	"github.com/finpal/finpal-go/internal/service/cache"
	"github.com/finpal/finpal-go/internal/service/search"
	"github.com/finpal/finpal-go/internal/service/voice"
	"github.com/finpal/finpal-go/internal/store"
	"github.com/finpal/finpal-go/internal/tool"
	"go.uber.org/zap"
)

type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Cache        *cache.CacheService
	Store        store.Store
	Prompts      *prompt.PromptBuilder
	Search       *search.Client
	Models       *ai.ModelManager
	Voice        *voice.Service
	Orchestrator *orchestrator.Orchestrator
	Materializer *lesson.Materializer
	Server       *api.Server

	closers []func() error
}

func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	// Redis is optional. When disabled or unreachable the search tool simply
	// runs uncached.
	if cfg.Redis.Enabled {
		cacheService := cache.NewCacheService(cache.CacheConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err := cacheService.WaitUntilReady(ctx, constants.RedisConfig.ReadyTimeout); err != nil {
			logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			_ = cacheService.Close()
		} else {
			c.Cache = cacheService
			c.closers = append(c.closers, cacheService.Close)
		}
	}

	if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	sqliteStore, err := store.NewSQLiteStore(cfg.Store.SQLitePath, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Store = sqliteStore
	c.closers = append(c.closers, sqliteStore.Close)

	c.Prompts = prompt.NewPromptBuilder()

	c.Search = search.NewClient(cfg.Perplexity.BaseURL, cfg.Perplexity.APIKey, cfg.Perplexity.Model, logger)

	c.Models, err = ai.NewModelManager(ctx, ai.ModelManagerConfig{
		GeminiAPIKey:   cfg.Gemini.APIKey,
		GeminiModel:    cfg.Gemini.Model,
		OpenAIAPIKey:   cfg.OpenAI.APIKey,
		OpenAIModel:    cfg.OpenAI.ChatModel,
		EnableFallback: cfg.OpenAI.EnableFallback,
	}, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Voice = voice.NewService(cfg.OpenAI.APIKey, cfg.OpenAI.RealtimeModel, logger)

	toolDeps := tool.Deps{Searcher: c.Search, Logger: logger}
	if c.Cache != nil {
		toolDeps.Cache = c.Cache
	}
	c.Orchestrator = orchestrator.New(c.Prompts, c.Models, toolDeps, logger)

	c.Materializer = lesson.NewMaterializer(c.Store, logger)

	serverDeps := api.Deps{
		Orchestrator: c.Orchestrator,
		Voice:        c.Voice,
		Store:        c.Store,
		Materializer: c.Materializer,
		Circuit:      c.Models,
	}
	if c.Cache != nil {
		serverDeps.Cache = c.Cache
	}
	c.Server = api.NewServer(api.ServerConfig{
		Addr:           cfg.Server.Addr,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, serverDeps, logger)

	logger.Info("Container built",
		zap.Bool("redis", c.Cache != nil),
		zap.Bool("search", c.Search.Configured()),
		zap.Bool("voice", c.Voice.Configured()),
	)

	return c, nil
}

// Close tears services down in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Error("Failed to close service", zap.Error(err))
		}
	}
	c.closers = nil
}
