package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksmith/ai-rap-battle/internal/adapter/llm"
	"github.com/oksmith/ai-rap-battle/internal/config"
	"github.com/oksmith/ai-rap-battle/internal/hub"
	"github.com/oksmith/ai-rap-battle/internal/registry"
	"github.com/oksmith/ai-rap-battle/internal/repository"
	"github.com/oksmith/ai-rap-battle/internal/service"
	transport "github.com/oksmith/ai-rap-battle/internal/transport/http"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Printf("INFO: loaded environment from .env")
	}

	cfg := config.Load()

	log.Printf("Starting battle service...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("LLM mode: %s (model %s)", cfg.LLMMode, cfg.LLMModel)

	// Initialize transcript store
	store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	// Initialize verse generator
	generator, err := llm.NewVerseGenerator(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize verse generator: %v", err)
	}

	// Observer hub for read-only battle watchers
	observers := hub.NewHub()

	// Initialize service
	svc := service.New(registry.New(), store, generator, observers, cfg)

	server := transport.NewServer(svc, observers)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Battle API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down battle service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Battle service stopped")
}
