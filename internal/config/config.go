package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
)

// ModelDir is where the model store is mounted. It is not configurable.
const ModelDir = "/mnt/azureblob"

const (
	TranslatorGoogle = "google"
	TranslatorLibre  = "libre"
	TranslatorNone   = "none"

	SinkLog      = "log"
	SinkDatabase = "database"
	SinkRabbitMQ = "rabbitmq"
	SinkS3       = "s3"
	SinkLocal    = "local"
)

var (
	modelTypes  = []string{"onnx", "python_mlflow"}
	locales     = []string{"en", "fr"}
	translators = []string{TranslatorGoogle, TranslatorLibre, TranslatorNone}
	sinks       = []string{SinkLog, SinkDatabase, SinkRabbitMQ, SinkS3, SinkLocal}
)

type Config struct {
	Port int `env:"PORT" envDefault:"5001"`

	ModelType         string `env:"MODEL_TYPE" envDefault:"onnx"`
	OnnxRuntimeDylib  string `env:"ONNX_RUNTIME_DYLIB"`
	PythonExecutable  string `env:"PYTHON_EXECUTABLE" envDefault:"python3"`
	ModelPluginScript string `env:"MODEL_PLUGIN_SCRIPT" envDefault:"plugin/plugin-python/plugin.py"`

	MaxTextLength int    `env:"MAX_TEXT_LENGTH" envDefault:"500"`
	UILocale      string `env:"UI_LOCALE" envDefault:"en"`

	Translator          string        `env:"TRANSLATOR" envDefault:"google"`
	TranslatorURL       string        `env:"TRANSLATOR_URL"`
	TranslatorAPIKey    string        `env:"TRANSLATOR_API_KEY"`
	TranslatorTimeout   time.Duration `env:"TRANSLATOR_TIMEOUT" envDefault:"5s"`
	RedisURL            string        `env:"REDIS_URL"`
	TranslationCacheTTL time.Duration `env:"TRANSLATION_CACHE_TTL" envDefault:"24h"`

	FeedbackSink      string `env:"FEEDBACK_SINK" envDefault:"log"`
	DatabaseURL       string `env:"DATABASE_URL"`
	RabbitMQURL       string `env:"RABBITMQ_URL"`
	S3EndpointURL     string `env:"S3_ENDPOINT_URL"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	FeedbackBucket    string `env:"FEEDBACK_BUCKET" envDefault:"feedback"`
	FeedbackDir       string `env:"FEEDBACK_DIR" envDefault:"./feedback"`
	FeedbackBuffer    int    `env:"FEEDBACK_BUFFER" envDefault:"100"`
	FeedbackWorkers   int    `env:"FEEDBACK_WORKERS" envDefault:"2"`
}

// Load parses the process environment and validates the result.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom is Load over an explicit environment instead of os.Environ.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks enumerated options and that every credential needed by the
// selected model, translator and feedback sink is present.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	if !slices.Contains(modelTypes, c.ModelType) {
		errs = append(errs, fmt.Errorf("MODEL_TYPE must be one of %v, got '%s'", modelTypes, c.ModelType))
	}
	if c.ModelType == "onnx" && c.OnnxRuntimeDylib == "" {
		errs = append(errs, errors.New("ONNX_RUNTIME_DYLIB must be set when MODEL_TYPE=onnx"))
	}

	if c.MaxTextLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_TEXT_LENGTH must be positive, got %d", c.MaxTextLength))
	}
	if !slices.Contains(locales, c.UILocale) {
		errs = append(errs, fmt.Errorf("UI_LOCALE must be one of %v, got '%s'", locales, c.UILocale))
	}

	switch c.Translator {
	case TranslatorGoogle, TranslatorNone:
	case TranslatorLibre:
		if c.TranslatorURL == "" {
			errs = append(errs, errors.New("TRANSLATOR_URL must be set when TRANSLATOR=libre"))
		}
	default:
		errs = append(errs, fmt.Errorf("TRANSLATOR must be one of %v, got '%s'", translators, c.Translator))
	}
	if c.TranslatorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("TRANSLATOR_TIMEOUT must be positive, got %s", c.TranslatorTimeout))
	}

	switch c.FeedbackSink {
	case SinkLog:
	case SinkDatabase:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL must be set when FEEDBACK_SINK=database"))
		}
	case SinkRabbitMQ:
		if c.RabbitMQURL == "" {
			errs = append(errs, errors.New("RABBITMQ_URL must be set when FEEDBACK_SINK=rabbitmq"))
		}
	case SinkS3:
		if c.S3AccessKeyID == "" || c.S3SecretAccessKey == "" {
			errs = append(errs, errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set when FEEDBACK_SINK=s3"))
		}
		if c.FeedbackBucket == "" {
			errs = append(errs, errors.New("FEEDBACK_BUCKET must be set when FEEDBACK_SINK=s3"))
		}
	case SinkLocal:
		if c.FeedbackDir == "" {
			errs = append(errs, errors.New("FEEDBACK_DIR must be set when FEEDBACK_SINK=local"))
		}
	default:
		errs = append(errs, fmt.Errorf("FEEDBACK_SINK must be one of %v, got '%s'", sinks, c.FeedbackSink))
	}
	if c.FeedbackBuffer <= 0 || c.FeedbackWorkers <= 0 {
		errs = append(errs, errors.New("FEEDBACK_BUFFER and FEEDBACK_WORKERS must be positive"))
	}

	return errors.Join(errs...)
}

// ConsumerConfig configures the feedback queue consumer process.
type ConsumerConfig struct {
	RabbitMQURL string `env:"RABBITMQ_URL,notEmpty,required"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty,required"`
}

func LoadConsumer() (*ConsumerConfig, error) {
	var cfg ConsumerConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	return &cfg, nil
}
