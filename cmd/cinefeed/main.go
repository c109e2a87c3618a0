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

	"github.com/cinefeed/cinefeed/internal/config"
	"github.com/cinefeed/cinefeed/internal/database"
	"github.com/cinefeed/cinefeed/internal/server"
)

func main() {
	// Initialize configuration system first
	configPath := os.Getenv("CINEFEED_CONFIG_PATH")
	if configPath == "" {
		if _, err := os.Stat("./cinefeed.yaml"); err == nil {
			configPath = "./cinefeed.yaml"
		}
	}

	if err := config.Load(configPath); err != nil {
		log.Printf("Warning: failed to load configuration from %s: %v", configPath, err)
		log.Printf("Using default configuration")
	} else if configPath != "" {
		log.Printf("Configuration loaded from: %s", configPath)
	} else {
		log.Printf("Using default configuration")
	}

	cfg := config.Get()

	if err := database.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	db := database.GetDB()

	r := server.SetupRouter(cfg, db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reload configuration on file change
	if configPath != "" {
		watcher, err := config.NewFileWatcher(config.GetManager())
		if err != nil {
			log.Printf("Warning: config watcher unavailable: %v", err)
		} else {
			if err := watcher.Start(ctx); err != nil {
				log.Printf("Warning: failed to start config watcher: %v", err)
			}
			defer watcher.Stop()
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\nShutting down gracefully...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		cancel()
	}()

	log.Printf("Starting cinefeed server on %s:%d", cfg.Server.Host, cfg.Server.Port)
	err := srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
