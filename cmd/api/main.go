package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ewilliams-labs/moodify/internal/adapters/gemini"
	"github.com/ewilliams-labs/moodify/internal/adapters/ollama"
	"github.com/ewilliams-labs/moodify/internal/adapters/rest"
	"github.com/ewilliams-labs/moodify/internal/adapters/saavn"
	"github.com/ewilliams-labs/moodify/internal/adapters/sqlite"
	"github.com/ewilliams-labs/moodify/internal/config"
	"github.com/ewilliams-labs/moodify/internal/core/ports"
	"github.com/ewilliams-labs/moodify/internal/core/services"
	"github.com/ewilliams-labs/moodify/internal/logging"
	"github.com/ewilliams-labs/moodify/internal/worker"
)

func main() {
	// 1. Configuration
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Driven adapters
	var (
		store      ports.HistoryRepository
		ready      rest.Pinger
		storeClose func() error
	)
	switch cfg.Storage.Driver {
	case "sqlite":
		db, err := sqlite.NewAdapter(cfg.Storage.Path)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("failed to initialize database")
		}
		store, ready, storeClose = db, db, db.Close
	default:
		logging.Fatal().Str("driver", cfg.Storage.Driver).Msg("unknown storage driver")
	}
	defer storeClose()

	pool := worker.NewPool(store, cfg.Worker.QueueSize, cfg.Worker.SaveTimeout)
	pool.Start(cfg.Worker.Workers)
	defer pool.Stop()

	httpClient := saavn.NewHTTPClient(ctx, cfg.Catalog.Timeout, saavn.OAuthConfig{
		TokenURL:     cfg.Catalog.OAuth.TokenURL,
		ClientID:     cfg.Catalog.OAuth.ClientID,
		ClientSecret: cfg.Catalog.OAuth.ClientSecret,
		Scopes:       cfg.Catalog.OAuth.Scopes,
	})
	catalog := saavn.NewClient(httpClient, cfg.Catalog.BaseURL, saavn.WithBreaker(saavn.BreakerConfig{
		MaxFailures: cfg.Catalog.Breaker.MaxFailures,
		OpenTimeout: cfg.Catalog.Breaker.OpenTimeout,
	}))

	llm := newTextGenerator(cfg.Oracle)

	// 3. Core services
	var candidates ports.CandidateSource
	if llm != nil {
		candidates = services.NewCandidateGenerator(llm)
	}
	resolver := services.NewResolver(catalog, candidates)
	chat := services.NewChat(
		services.NewReplyGenerator(llm),
		services.NewMoodAnalyzer(llm),
		resolver,
		pool,
		services.WithDuration(cfg.Chat.Duration),
		services.WithRecommendationCount(cfg.Chat.RecommendationCount),
		services.WithDefaultUser(cfg.Chat.DefaultUser),
	)

	// 4. Driving adapter
	handler := rest.NewHandler(chat, resolver, store,
		rest.WithCORSOrigins(cfg.Server.CORSOrigins),
		rest.WithReadiness(ready),
	)

	// 5. Start the server
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	logging.Info().
		Str("addr", cfg.Server.Addr).
		Str("oracle", cfg.Oracle.Provider).
		Str("catalog", cfg.Catalog.BaseURL).
		Dur("chat_duration", cfg.Chat.Duration).
		Msg("Moodify API is running")

	select {
	case err := <-serverErr:
		if err != nil {
			logging.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("shutdown error")
		}
	}
}

// newTextGenerator returns the configured oracle, or nil when none is set.
// Every caller falls back to defaults without one.
func newTextGenerator(cfg config.OracleConfig) ports.TextGenerator {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL, cfg.Timeout)
	case config.ProviderOllama:
		return ollama.NewClient(cfg.Ollama.Host, cfg.Ollama.Model, cfg.Timeout)
	default:
		logging.Warn().Msg("no language model configured; using canned replies and Neutral mood")
		return nil
	}
}
