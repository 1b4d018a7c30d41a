package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/room-booking-backend/internal/app"
	"github.com/nekogravitycat/room-booking-backend/internal/config"
	"github.com/nekogravitycat/room-booking-backend/internal/db"
	"github.com/nekogravitycat/room-booking-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal("failed to load config", "error", err)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "room-booking-backend",
	})

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		log.Fatal("failed to connect to db", "error", err)
	}
	defer pool.Close()

	container, err := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		KafkaBrokers: cfg.KafkaBrokers,
		KafkaTopic:   cfg.KafkaTopic,
		Logger:       log,
	})
	if err != nil {
		log.Fatal("failed to initialize application", "error", err)
	}
	defer func() {
		if err := container.Publisher.Close(); err != nil {
			log.Warn("failed to close event publisher", "error", err)
		}
	}()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.Info("server running", "addr", cfg.HTTPAddr, "production", cfg.IsProduction)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited gracefully")
}
