// Command healthpulse-mockd serves the HealthPulse API contract from a
// seeded in-memory dataset, for development and demos.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yassnemo/health-pulse-sub000/internal/config"
	"github.com/yassnemo/health-pulse-sub000/internal/logging"
	"github.com/yassnemo/health-pulse-sub000/internal/mockapi"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, "healthpulse-mockd")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)
	server := mockapi.New(mockapi.Options{
		Secret: []byte(cfg.JWTSecret),
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.MockPort,
		Handler: server.Routes(),
	}

	go func() {
		logger.Info("mock gateway listening",
			zap.String("addr", httpServer.Addr),
			zap.String("docs", "seeded users: admin/admin123, jchen/clinician123, rpatel/nurse123"))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, draining connections")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
	logger.Info("mock gateway stopped")
}
