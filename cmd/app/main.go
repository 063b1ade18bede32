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

	"mychatme/internal/config"
	aiAdapters "mychatme/internal/infra/adapters/ai"
	"mychatme/internal/infra/api"
	"mychatme/internal/infra/i18n"
	"mychatme/internal/infra/logging"
	"mychatme/internal/infra/memory"
	"mychatme/internal/infra/metrics"
	"mychatme/internal/infra/tokens"
	"mychatme/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (console logs, verbose)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath, *devMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	if cfg.AI.OpenAIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set: GPT-4 routing and summarization disabled")
	}
	if cfg.AI.OpenRouterKey == "" {
		logger.Warn().Msg("OPENROUTER_API_KEY not set: Gemini/Claude routing disabled")
	}

	// ---- Providers ----
	var openaiAdapter *aiAdapters.OpenAIAdapter
	if cfg.AI.OpenAIKey != "" {
		openaiAdapter, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("openai adapter")
		}
	}
	gateway := aiAdapters.NewOpenRouterClient(cfg.AI.OpenRouterKey, cfg.AI.OpenRouterBase, cfg.AI.Referer, cfg.AI.AppTitle, logger)
	router := aiAdapters.NewRouter(openaiAdapter, gateway, aiAdapters.Routes{
		OpenAIModel: cfg.AI.OpenAIModel,
		GeminiModel: cfg.AI.GeminiModel,
		ClaudeModel: cfg.AI.ClaudeModel,
	}, cfg.Chat.MemorySummaryTokens, cfg.Chat.ContextWindowMessages, cfg.AI.ConcurrentLimit, logger)

	// ---- Token budget ----
	var counter usecase.TokenCounter
	if c, err := tokens.New(); err != nil {
		logger.Warn().Err(err).Msg("token counter unavailable: context token budget disabled")
	} else {
		counter = c
	}

	// ---- Core ----
	store := memory.NewSessionStore(cfg.Chat.MaxHistoryChats, cfg.Chat.ContextWindowMessages)
	chatUC := usecase.NewChatUseCase(store, router, counter, cfg.Chat.MaxContextLength, logger)

	// ---- HTTP surface ----
	bundles, err := i18n.LoadAll(cfg.Locale.Supported)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n bundles")
	}
	auth := api.NewAuthManager(cfg.Server.AdminSecret, 30*time.Minute)
	server := api.NewServer(chatUC, bundles, cfg.Locale.Default, auth, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown")
	}
}
