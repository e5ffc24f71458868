package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/xiaot623/gogo/unitlink/discovery"
	"github.com/xiaot623/gogo/unitlink/internal/config"
	"github.com/xiaot623/gogo/unitlink/internal/observability"
	"github.com/xiaot623/gogo/unitlink/internal/service"
	handler "github.com/xiaot623/gogo/unitlink/internal/transport/http"
	"github.com/xiaot623/gogo/unitlink/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := observability.SetupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting unitlink inspector",
		zap.Int("http_port", cfg.HTTPPort),
		zap.String("database", cfg.DatabaseURL),
		zap.Strings("allowed_stages", cfg.AllowedStages))

	// Initialize catalog
	catalog, err := discovery.NewSQLiteCatalog(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize catalog", zap.Error(err))
	}
	defer catalog.Close()

	// Initialize policy engine
	policyContent := policy.DefaultPolicy
	if cfg.PolicyFile != "" {
		data, err := os.ReadFile(cfg.PolicyFile)
		if err != nil {
			logger.Fatal("failed to read policy file", zap.String("path", cfg.PolicyFile), zap.Error(err))
		}
		policyContent = string(data)
	}
	policyEngine, err := policy.NewEngine(context.Background(), policyContent)
	if err != nil {
		logger.Fatal("failed to initialize policy engine", zap.Error(err))
	}

	svc := service.New(catalog, policyEngine, cfg, logger)
	server := handler.NewServer(svc, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down gracefully", zap.Error(err))
	}

	logger.Info("stopped")
}
