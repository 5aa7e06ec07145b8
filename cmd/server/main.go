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

	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/insights"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/metrics"
	"trade-journal-go/internal/server"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	if cfg.Auth.Secret == "" {
		log.Fatal("auth.secret must be configured")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	fees := metrics.Fees{EntryRate: cfg.Fees.EntryRate, ExitRate: cfg.Fees.ExitRate}
	tokenTTL := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	// The review client is optional; without an API key the endpoint
	// reports the feature as unavailable.
	var reviewClient *insights.Client
	if cfg.Insights.ApiKey != "" {
		reviewClient = insights.NewClient(&cfg.Insights, log.Named("insights"))
		log.Info("Trade review client enabled", zap.String("model", cfg.Insights.Model))
	}

	srv := server.New(
		log,
		auth.NewService(db, log.Named("auth"), cfg.Auth.Secret, tokenTTL),
		journal.NewCoinService(db, log.Named("coins")),
		journal.NewStrategyService(db, log.Named("strategies")),
		journal.NewTradeService(db, log.Named("trades"), fees),
		journal.NewBacktestService(db, log.Named("backtest")),
		reviewClient,
		cfg.Server.RateLimit,
		cfg.Server.RateLimitBurst,
	)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Handler(),
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting API server", zap.String("address", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("API server failed", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
