package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/saltmarsh-games/worldengine/internal/config"
	"github.com/saltmarsh-games/worldengine/internal/handlers"
	"github.com/saltmarsh-games/worldengine/internal/logger"
	"github.com/saltmarsh-games/worldengine/internal/middleware"
	"github.com/saltmarsh-games/worldengine/internal/services"
	"github.com/saltmarsh-games/worldengine/internal/storage"
	"github.com/saltmarsh-games/worldengine/pkg/textfilter"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting World Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"storage_driver", cfg.StorageDriver,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var narrator services.Narrator
	switch cfg.LLMProvider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("Anthropic API key is required when using anthropic provider")
			os.Exit(1)
		}
		narrator = services.NewAnthropicNarrator(cfg.AnthropicAPIKey, cfg.ModelName, log)
		log.Info("Using Anthropic narrator")
	case "ollama":
		narrator = services.NewOllamaNarrator(cfg.OllamaURL, cfg.ModelName, log)
		log.Info("Using Ollama narrator", "url", cfg.OllamaURL)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Error("Gemini API key is required when using gemini provider")
			os.Exit(1)
		}
		gemini, err := services.NewGeminiNarrator(context.Background(), cfg.GeminiAPIKey, cfg.ModelName, log)
		if err != nil {
			log.Error("Failed to create Gemini narrator", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		narrator = gemini
		log.Info("Using Gemini narrator")
	case "mock":
		narrator = services.NewMockNarrator()
		log.Info("Using mock narrator; narration is templated prose")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider, "supported", []string{"anthropic", "ollama", "gemini", "mock"})
		os.Exit(1)
	}

	var store storage.Storage
	switch cfg.StorageDriver {
	case config.StorageBolt:
		bs, err := storage.NewBoltStorage(cfg.BoltPath, cfg.DataDir, log)
		if err != nil {
			log.Error("Failed to open bolt storage", "error", err)
			os.Exit(1)
		}
		store = bs
	default:
		rs := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SessionTTL, log)
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		if err := rs.WaitForConnection(storageCtx); err != nil {
			storageCancel()
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		storageCancel()
		store = rs
	}
	log.Info("Storage connection established successfully")

	var filter *textfilter.Filter
	if cfg.FamilyFriendly {
		filter = textfilter.New()
		log.Info("Family-friendly content filter enabled")
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, narrator, log)
	mux.Handle("/health", healthHandler)

	worldsHandler := handlers.NewWorldsHandler(store, log)
	mux.Handle("/v1/worlds", worldsHandler)
	mux.Handle("/v1/worlds/", worldsHandler)

	sessionHandler := handlers.NewSessionHandler(store, narrator, filter, log)
	turnHandler := handlers.NewTurnHandler(store, narrator, filter, log)
	mux.Handle("/v1/session", sessionHandler)
	mux.HandleFunc("/v1/session/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			turnHandler.ServeHTTP(w, r)
			return
		}
		sessionHandler.ServeHTTP(w, r)
	})

	handler := middleware.Logger(log, mux)
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}
