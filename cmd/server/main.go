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

	"github.com/edupainel/leads-panel/internal/api"
	"github.com/edupainel/leads-panel/internal/archive"
	"github.com/edupainel/leads-panel/internal/config"
	"github.com/edupainel/leads-panel/internal/ingest"
	"github.com/edupainel/leads-panel/internal/leads"
	"github.com/edupainel/leads-panel/internal/snowflake"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	client, err := snowflake.NewClient(cfg.Snowflake)
	if err != nil {
		log.Fatalf("Failed to create snowflake client: %v", err)
	}
	defer client.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := client.Ping(pingCtx); err != nil {
		log.Printf("WARNING: warehouse ping failed (continuing): %v", err)
	}
	pingCancel()

	archiver, err := archive.New(context.Background(), cfg.Archive)
	if err != nil {
		log.Fatalf("Failed to initialize S3 archiver: %v", err)
	}
	if archiver != nil {
		log.Printf("Upload archival enabled: s3://%s/%s", cfg.Archive.S3Bucket, cfg.Archive.Prefix)
	}

	leadsSvc := leads.NewService(client.DB(), cfg.Panel)
	pipeline := ingest.NewPipeline(client.DB(), cfg.Panel)
	handlers := api.NewHandlers(leadsSvc, pipeline, archiver, cfg)
	router := api.SetupRoutes(handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.GetHost(), cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute, // exports can be large
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting leads panel on %s (fact table %s.%s.%s)",
			addr, cfg.Snowflake.Database, cfg.Snowflake.Schema, cfg.Panel.FactTable)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
