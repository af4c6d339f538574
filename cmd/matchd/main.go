package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/codemate-app/matcher/internal/config"
	"github.com/codemate-app/matcher/internal/embedder"
	"github.com/codemate-app/matcher/internal/expander"
	"github.com/codemate-app/matcher/internal/feed"
	"github.com/codemate-app/matcher/internal/logger"
	"github.com/codemate-app/matcher/internal/matcher"
	"github.com/codemate-app/matcher/internal/server"
	"github.com/codemate-app/matcher/internal/store"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var cfgFile string
	var showVersion bool
	flag.StringVar(&cfgFile, "config", "", "path to config file")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("matchd %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if err := run(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "matchd: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogJSON, cfg.LogDebug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	emb, err := newEmbedder(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create embedder: %w", err)
	}
	defer func() { _ = emb.Close() }()

	log.Info("embedding provider ready",
		zap.String("provider", emb.Provider()),
		zap.Int("dimension", emb.Dimension()),
	)

	st, err := store.NewSQLiteStore(cfg.DBPath, emb.Dimension())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	exp, err := newExpander(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("create expander: %w", err)
	}

	chat := matcher.NewService(st, exp, emb, cfg.MatchThreshold, log)
	feedAgg := feed.New(st, cfg.PairThreshold, cfg.FeedLimit, log)

	// Threshold() reports the effective value after the <= 0 fallback
	log.Info("matcher ready", zap.Float64("matchThreshold", chat.Threshold()))

	srv := server.New(chat, feedAgg, st, emb, log)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("matchd listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("version", version),
		)
		errChan <- httpServer.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("server stopped")
	return nil
}

func newEmbedder(ctx context.Context, cfg *config.Config) (embedder.Embedder, error) {
	if cfg.Embedding.Provider != "" {
		return embedder.New(ctx, embedder.Config{
			Provider:  cfg.Embedding.Provider,
			APIKey:    cfg.Embedding.APIKey,
			CacheSize: cfg.Embedding.CacheSize,
		})
	}
	return embedder.NewFromEnv(ctx)
}

// newExpander builds the query expander. Without a Gemini key there is no
// generative provider, so expansion passes queries through unchanged.
func newExpander(ctx context.Context, cfg *config.Config, log *zap.Logger) (matcher.QueryExpander, error) {
	if cfg.Gemini.APIKey == "" {
		log.Warn("no gemini api key configured, query expansion disabled")
		return passthroughExpander{}, nil
	}

	gen, err := expander.NewGeminiGenerator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.ExpansionTTLHours) * time.Hour
	return expander.New(gen, expander.WithTTL(ttl)), nil
}

type passthroughExpander struct{}

func (passthroughExpander) Expand(_ context.Context, rawQuery string) (string, error) {
	return rawQuery, nil
}
