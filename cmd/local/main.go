package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sentiment-backend/cmd"
	"sentiment-backend/internal/config"
	"sentiment-backend/internal/core"
	"sentiment-backend/internal/database"
	"sentiment-backend/internal/feedback"
	"sentiment-backend/internal/messaging"
	"sentiment-backend/internal/translation"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"gorm.io/gorm"
)

// Runs the api and the feedback consumer in one process. Feedback goes through
// an in-memory queue into a sqlite database under APP_DATA_DIR.
type LocalConfig struct {
	AppDataDir string `env:"APP_DATA_DIR" envDefault:"./sentiment-data"`
	QueueSize  int    `env:"LOCAL_QUEUE_SIZE" envDefault:"1000"`
}

func createDatabase(root string) *gorm.DB {
	path := filepath.Join(root, "db", "feedback.db")
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := database.NewDatabase(path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	return db
}

func main() {
	cmd.LoadEnvFile()

	var localCfg LocalConfig
	if err := env.Parse(&localCfg); err != nil {
		log.Fatalf("error parsing config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := os.MkdirAll(localCfg.AppDataDir, os.ModePerm); err != nil {
		log.Fatalf("error creating app data directory: %v", err)
	}

	f, err := os.OpenFile(filepath.Join(localCfg.AppDataDir, "backend.log"), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer f.Close()

	log.SetOutput(io.MultiWriter(f, os.Stderr))

	slog.Info("starting local backend", "app_data_dir", localCfg.AppDataDir, "port", cfg.Port, "model_type", cfg.ModelType)

	classifier, releaseClassifier := cmd.LoadClassifier(cfg)
	defer releaseClassifier()

	provider, closeTranslator, err := cmd.NewTranslationProvider(cfg)
	if err != nil {
		log.Fatalf("failed to initialize translator: %v", err)
	}
	defer closeTranslator()

	db := createDatabase(localCfg.AppDataDir)

	queue := messaging.NewInMemoryQueue(localCfg.QueueSize)
	sink := feedback.NewAsyncSink(feedback.NewQueueSink(queue), cfg.FeedbackBuffer, cfg.FeedbackWorkers)

	consumer := feedback.NewConsumer(queue, feedback.NewDatabaseSink(db))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Run(context.Background())
	}()

	pipeline := core.NewPipeline(translation.NewAdapter(provider), classifier, sink, cfg.MaxTextLength)
	server := cmd.NewServer(cfg, pipeline)

	done := make(chan struct{})
	go func() {
		defer close(done)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		slog.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %d: %v\n", cfg.Port, err)
	}

	<-done

	// flush pending feedback through the queue before the consumer stops
	sink.Close()
	queue.Close()
	wg.Wait()

	slog.Info("server stopped")
}
