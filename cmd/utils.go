package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"sentiment-backend/internal/api"
	"sentiment-backend/internal/config"
	"sentiment-backend/internal/core"
	"sentiment-backend/internal/database"
	"sentiment-backend/internal/feedback"
	"sentiment-backend/internal/messaging"
	"sentiment-backend/internal/storage"
	"sentiment-backend/internal/translation"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	ort "github.com/yalue/onnxruntime_go"
)

func LoadEnvFile() {
	var configPath string

	flag.StringVar(&configPath, "env", "", "path to load env from")
	flag.Parse()

	if configPath == "" {
		log.Printf("no env file specified, using os.Environ only")
		return
	}

	log.Printf("loading env from file %s", configPath)
	err := godotenv.Load(configPath)
	if err != nil {
		log.Fatalf("error loading .env file '%s': %v", configPath, err)
	}
}

// NewTranslationProvider builds the configured provider, wrapped in a redis
// cache when REDIS_URL is set. The returned cleanup func releases the cache.
func NewTranslationProvider(cfg *config.Config) (translation.Provider, func(), error) {
	var provider translation.Provider
	switch cfg.Translator {
	case config.TranslatorGoogle:
		baseURL := cfg.TranslatorURL
		if baseURL == "" {
			baseURL = translation.DefaultGoogleURL
		}
		provider = translation.NewGoogleTranslator(baseURL, cfg.TranslatorTimeout)
	case config.TranslatorLibre:
		provider = translation.NewLibreTranslator(cfg.TranslatorURL, cfg.TranslatorAPIKey, cfg.TranslatorTimeout)
	case config.TranslatorNone:
		return translation.NoopProvider{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported translator '%s'", cfg.Translator)
	}

	if cfg.RedisURL == "" {
		return provider, func() {}, nil
	}

	cache, err := translation.NewRedisCache(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to translation cache: %w", err)
	}

	cleanup := func() {
		if err := cache.Close(); err != nil {
			slog.Error("error closing translation cache", "error", err)
		}
	}
	return translation.NewCachedTranslator(provider, cache, cfg.TranslationCacheTTL), cleanup, nil
}

// NewFeedbackSink builds the configured sink behind an AsyncSink. The returned
// cleanup func drains pending events and then closes the underlying sink.
func NewFeedbackSink(ctx context.Context, cfg *config.Config) (feedback.Sink, func(), error) {
	var sink feedback.Sink
	closeSink := func() {}

	switch cfg.FeedbackSink {
	case config.SinkLog:
		sink = feedback.NewLogSink(slog.Default())

	case config.SinkDatabase:
		db, err := database.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sink = feedback.NewDatabaseSink(db)
		closeSink = func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}

	case config.SinkRabbitMQ:
		publisher, err := messaging.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		sink = feedback.NewQueueSink(publisher)
		closeSink = publisher.Close

	case config.SinkS3:
		store, err := storage.NewS3ObjectStore(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3EndpointURL,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, nil, err
		}
		if sink, err = feedback.NewObjectSink(ctx, store, cfg.FeedbackBucket); err != nil {
			return nil, nil, err
		}

	case config.SinkLocal:
		store, err := storage.NewLocalObjectStore(cfg.FeedbackDir)
		if err != nil {
			return nil, nil, err
		}
		if sink, err = feedback.NewObjectSink(ctx, store, cfg.FeedbackBucket); err != nil {
			return nil, nil, err
		}

	default:
		return nil, nil, fmt.Errorf("unsupported feedback sink '%s'", cfg.FeedbackSink)
	}

	slog.Info("feedback sink initialized", "sink", cfg.FeedbackSink, "buffer", cfg.FeedbackBuffer, "workers", cfg.FeedbackWorkers)

	async := feedback.NewAsyncSink(sink, cfg.FeedbackBuffer, cfg.FeedbackWorkers)
	cleanup := func() {
		async.Close()
		closeSink()
	}
	return async, cleanup, nil
}

// LoadClassifier initializes the onnx runtime if needed and loads the model
// from the mounted model store, exiting the process on failure. The returned
// func releases the model and the runtime.
func LoadClassifier(cfg *config.Config) (core.Classifier, func()) {
	modelType := core.ModelType(cfg.ModelType)

	if modelType == core.OnnxClassifierType {
		ort.SetSharedLibraryPath(cfg.OnnxRuntimeDylib)
		if err := ort.InitializeEnvironment(); err != nil {
			log.Fatalf("could not init ONNX Runtime: %v", err)
		}
	}

	loaders := core.NewClassifierLoaders(cfg.PythonExecutable, cfg.ModelPluginScript)

	classifier, err := core.LoadClassifier(loaders, modelType, config.ModelDir)
	if err != nil {
		log.Fatalf("could not load sentiment model: %v", err)
	}
	slog.Info("loaded sentiment model", "model_type", modelType, "model_dir", config.ModelDir)

	release := func() {
		classifier.Release()
		if modelType == core.OnnxClassifierType {
			if err := ort.DestroyEnvironment(); err != nil {
				slog.Error("error destroying onnx env", "error", err)
			}
		}
	}
	return classifier, release
}

func NewServer(cfg *config.Config, pipeline *core.Pipeline) *http.Server {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300, // Cache preflight response for 5 minutes
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	api.NewSentimentService(pipeline, cfg.UILocale).AddRoutes(r)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}
}
