package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/api"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/cache"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/config"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/logger"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/ollama"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/policy"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/store"
	"github.com/Battula-Karthik-yadav/OpenGPT-AI-Chatbot/turn"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting chat backend",
		"http_port", cfg.HTTPPort,
		"database", cfg.DatabaseURL,
		"ollama_url", cfg.OllamaURL,
		"ollama_model", cfg.OllamaModel,
	)

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialize store", "error", err)
	}
	defer db.Close()

	ctx := context.Background()

	msgCache, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
	}
	if msgCache == nil {
		log.Warn("redis address not configured, message cache disabled")
	} else {
		defer msgCache.Close()
	}

	llmClient := ollama.NewClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout)

	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatal("failed to initialize policy engine", "error", err)
	}

	orchestrator := turn.New(db, llmClient, msgCache, policyEngine, cfg.MaxUploadBytes, log)

	h := api.NewHandler(db, msgCache, orchestrator, cfg, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", "error", err)
		}
	}()

	log.Info("server started", "port", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server gracefully", "error", err)
	}

	log.Info("server stopped")
}
