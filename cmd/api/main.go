package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/mystery-engine/internal/config"
	"github.com/jwebster45206/mystery-engine/internal/game"
	"github.com/jwebster45206/mystery-engine/internal/handlers"
	"github.com/jwebster45206/mystery-engine/internal/logger"
	"github.com/jwebster45206/mystery-engine/internal/middleware"
	"github.com/jwebster45206/mystery-engine/internal/services"
	"github.com/jwebster45206/mystery-engine/internal/storage"
	"github.com/jwebster45206/mystery-engine/pkg/casefile"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.Setup(cfg)
	log.Info("starting mystery engine", "environment", cfg.Environment, "port", cfg.Port)

	cases, err := casefile.LoadDir(cfg.CasesDir)
	if err != nil {
		return fmt.Errorf("failed to load cases: %w", err)
	}
	log.Info("cases loaded", "count", len(cases), "dir", cfg.CasesDir)

	var store storage.Store
	var redisStore *storage.RedisStore
	if cfg.RedisURL != "" {
		redisStore = storage.NewRedisStore(cfg.RedisURL)
		store = redisStore
	} else {
		log.Warn("no REDIS_URL configured, using in-memory storage")
		store = storage.NewMemoryStore()
	}
	defer func() { _ = store.Close() }()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}

	var llm services.LLMService
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
		llm = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, log)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		llm = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, log)
	case "none":
		log.Warn("running without an LLM provider; dialogue is placeholder only")
		llm = services.NewNoopLLMService()
	default:
		return fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
	log.Info("llm provider ready", "provider", llm.Name())

	manager := game.NewManager(cases, store, llm, log)

	mux := http.NewServeMux()
	mux.Handle("/health", handlers.NewHealthHandler(store, log))
	mux.Handle("/v1/games", handlers.NewGameHandler(manager, log))
	mux.Handle("/v1/games/", handlers.NewGameHandler(manager, log))
	mux.Handle("/v1/chat", handlers.NewChatHandler(manager, log))
	mux.Handle("/v1/accuse", handlers.NewAccuseHandler(manager, log))
	mux.Handle("/v1/cases", handlers.NewCasesHandler(manager, log))

	if cfg.EnableImages {
		var cache services.Cache
		if redisStore != nil {
			cache = services.NewRedisCache(redisStore.Client())
		} else {
			cache = services.NewMemoryCache()
		}
		images := services.NewPollinationsService(cache, log)
		mux.Handle("/v1/image", handlers.NewImageHandler(manager, images, log))
		log.Info("scene images enabled")
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.Logger(mux, log),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}
