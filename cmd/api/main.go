package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sentiment-backend/cmd"
	"sentiment-backend/internal/config"
	"sentiment-backend/internal/core"
	"sentiment-backend/internal/translation"
	"syscall"
	"time"
)

func main() {
	log.Println("Starting Sentiment API Server...")

	cmd.LoadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	classifier, releaseClassifier := cmd.LoadClassifier(cfg)
	defer releaseClassifier()

	provider, closeTranslator, err := cmd.NewTranslationProvider(cfg)
	if err != nil {
		log.Fatalf("failed to initialize translator: %v", err)
	}
	defer closeTranslator()

	sink, closeSink, err := cmd.NewFeedbackSink(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize feedback sink: %v", err)
	}
	defer closeSink()

	pipeline := core.NewPipeline(translation.NewAdapter(provider), classifier, sink, cfg.MaxTextLength)

	server := cmd.NewServer(cfg, pipeline)

	done := make(chan struct{})
	go func() {
		defer close(done)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("API server listening on port %d", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	<-done
	log.Println("Server stopped.")
}
