package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/p-n-ai/pai-course/internal/ai"
	"github.com/p-n-ai/pai-course/internal/batch"
	"github.com/p-n-ai/pai-course/internal/export"
	"github.com/p-n-ai/pai-course/internal/generator"
	"github.com/p-n-ai/pai-course/internal/platform/cache"
	"github.com/p-n-ai/pai-course/internal/platform/config"
	"github.com/p-n-ai/pai-course/internal/platform/database"
	"github.com/p-n-ai/pai-course/internal/player"
	"github.com/p-n-ai/pai-course/internal/server"
	"github.com/p-n-ai/pai-course/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.AddSource}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// backends are the connections the configured store driver opened.
type backends struct {
	db    *database.DB
	cache *cache.Cache
}

func (b backends) Close() {
	if b.db != nil {
		b.db.Close()
	}
	if b.cache != nil {
		if err := b.cache.Close(); err != nil {
			slog.Warn("failed to close cache", "error", err)
		}
	}
}

// openStore connects the configured store driver.
func openStore(ctx context.Context, cfg *config.Config) (*store.KVStore, backends, error) {
	opts := []store.Option{store.WithNamespace(cfg.Store.Namespace)}
	if cfg.Store.Secret != "" {
		sealer, err := store.NewSealer(cfg.Store.Secret)
		if err != nil {
			return nil, backends{}, fmt.Errorf("creating sealer: %w", err)
		}
		opts = append(opts, store.WithSealer(sealer))
	}

	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, backends{}, err
		}
		return store.NewPostgresStore(db, opts...), backends{db: db}, nil
	case config.StoreRedis:
		c, err := cache.New(ctx, cfg.Cache.URL, "learn")
		if err != nil {
			return nil, backends{}, err
		}
		return store.NewRedisStore(c, opts...), backends{cache: c}, nil
	default:
		slog.Warn("using in-memory store; the course is lost on restart")
		return store.NewMemoryStore(opts...), backends{}, nil
	}
}

// newBudget bounds provider usage per credential. Usage is shared through
// Redis when the store already runs on it.
func newBudget(cfg *config.Config, b backends) ai.BudgetChecker {
	if cfg.AI.TokenBudget <= 0 {
		return nil
	}
	if b.cache != nil {
		return ai.NewRedisBudget(b.cache.Client, b.cache.Key("budget"), cfg.AI.TokenBudget)
	}
	return ai.NewInMemoryBudget(cfg.AI.TokenBudget)
}

func newGenerator(cfg *config.Config, budget ai.BudgetChecker) (*generator.AIGenerator, error) {
	settings := ai.Settings{
		Provider:      cfg.AI.Provider,
		Model:         cfg.AI.Model,
		BaseURL:       cfg.AI.BaseURL,
		FallbackURL:   cfg.AI.FallbackURL,
		FallbackModel: cfg.AI.FallbackModel,
		Budget:        budget,
	}
	opts := []generator.Option{
		generator.WithLanguage(cfg.Content.Language),
		generator.WithImageBaseURL(cfg.Content.ImageBaseURL),
		generator.WithTimeout(cfg.AI.Timeout()),
	}
	if cfg.Content.PromptsPath != "" {
		prompts, err := generator.LoadPrompts(cfg.Content.PromptsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, generator.WithPrompts(prompts))
	}
	return generator.NewAIGenerator(settings, opts...)
}

func run(ctx context.Context, cfg *config.Config) error {
	st, conns, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer conns.Close()

	gen, err := newGenerator(cfg, newBudget(cfg, conns))
	if err != nil {
		return fmt.Errorf("creating generator: %w", err)
	}

	hub := server.NewHub(0)
	sinks := batch.Fanout{batch.LogSink{}, hub}
	var srvOpts []server.Option
	if conns.db != nil {
		runs := store.NewEventLog(conns.db, cfg.Store.Namespace)
		sinks = append(sinks, runs)
		srvOpts = append(srvOpts, server.WithRunLog(runs))
	}

	p := player.New(player.Config{
		Store:     st,
		Generator: gen,
		Sink:      sinks,
		Export:    export.Options{Lang: export.LangTag(cfg.Content.Language)},
	})
	if err := p.Load(ctx); err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           server.New(p, hub, st, srvOpts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// no WriteTimeout: exports hold the request until every unit is generated
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting",
			"addr", srv.Addr,
			"store", cfg.Store.Driver,
			"provider", cfg.AI.Provider,
			"configured", p.Configured(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
