// Package main provides the entry point for the Chef Planner API server
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/jenz26/Chef-Generator/internal/infrastructure/config"
	"github.com/jenz26/Chef-Generator/internal/infrastructure/container"
)

func main() {
	// Local development reads CHEFPLANNER_* overrides from .env
	if os.Getenv("CHEFPLANNER_APP_ENVIRONMENT") != "production" {
		_ = godotenv.Load()
	}

	var cfg *config.Config
	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		container.Module,
		fx.Populate(&cfg),
	)
	if err := app.Err(); err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, 30*time.Second)
	defer startCancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	// Wait for interrupt signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
