package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/jwebster45206/nest-trail/internal/config"
	"github.com/jwebster45206/nest-trail/internal/game"
	"github.com/jwebster45206/nest-trail/internal/handlers"
	"github.com/jwebster45206/nest-trail/internal/logger"
	"github.com/jwebster45206/nest-trail/internal/middleware"
	"github.com/jwebster45206/nest-trail/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Nest Trail API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"llm_provider", cfg.LLMProvider,
		"model_name", cfg.ModelName)

	var llmService services.LLMService
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		llmService = services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName, cfg.SummaryModelName, log)
		log.Info("Using OpenAI LLM provider")
	case config.ProviderAnthropic:
		llmService = services.NewAnthropicService(cfg.AnthropicAPIKey, cfg.ModelName, cfg.SummaryModelName, log)
		log.Info("Using Anthropic LLM provider")
	case config.ProviderOllama:
		llmService = services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
		log.Info("Using Ollama LLM provider", "url", cfg.OllamaURL)
	case config.ProviderMock:
		llmService = services.NewMockLLMAPI()
		log.Warn("Using mock LLM provider; responses are canned")
	default:
		log.Error("Invalid LLM provider specified", "provider", cfg.LLMProvider,
			"supported", []string{config.ProviderOpenAI, config.ProviderAnthropic, config.ProviderOllama, config.ProviderMock})
		os.Exit(1)
	}

	initCtx, initCancel := context.WithTimeout(context.Background(), time.Minute)
	defer initCancel()
	if err := llmService.InitModel(initCtx, cfg.ModelName); err != nil {
		log.Error("Failed to initialize LLM model", "error", err, "model", cfg.ModelName)
		os.Exit(1)
	}

	gameService, err := game.NewService(llmService, log)
	if err != nil {
		log.Error("Failed to start game", "error", err)
		os.Exit(1)
	}
	log.Info("New game started", "spawn", gameService.Stats().CurrentLocation)

	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(allowedOrigins()))

	router.Handle("/health", handlers.NewHealthHandler(cfg.LLMProvider, log)).Methods("GET", "OPTIONS")
	router.Handle("/v1/chat", handlers.NewChatHandler(gameService, cfg.LLMTimeout, log)).Methods("POST", "OPTIONS")
	router.Handle("/v1/inventory", handlers.NewInventoryHandler(gameService, log)).Methods("GET", "OPTIONS")
	router.Handle("/v1/stats", handlers.NewStatsHandler(gameService, log)).Methods("GET", "OPTIONS")
	router.Handle("/v1/toasts", handlers.NewToastsHandler(gameService, log)).Methods("GET", "OPTIONS")
	router.Handle("/v1/routes/leaderboard", handlers.NewRoutesHandler(gameService, log)).Methods("GET", "OPTIONS")
	router.Handle("/v1/reset", handlers.NewResetHandler(gameService, log)).Methods("POST", "OPTIONS")

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

func allowedOrigins() []string {
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		return strings.Split(env, ",")
	}
	// Development defaults for the local frontend.
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
}
