package config

import (
	"errors"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Store       string   `envconfig:"STORE"         default:"postgres"`
	DatabaseURL string   `envconfig:"DATABASE_URL"`
	HTTPPort    string   `envconfig:"HTTP_PORT"     default:":8081"`
	GrpcPort    string   `envconfig:"GRPC_PORT"     default:":50051"` //gRPC port for the read API
	LogLevel    string   `envconfig:"LOG_LEVEL"     default:"info"`
	JWTSecret   string   `envconfig:"JWT_SECRET"    required:"true"`
	MediaRoot   string   `envconfig:"MEDIA_ROOT"    default:"media"`
	MediaURL    string   `envconfig:"MEDIA_URL"     default:"/media/"`
	MaxUploadMB int64    `envconfig:"MAX_UPLOAD_MB" default:"8"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"  default:"http://localhost:3000"`
}

func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

var (
	config Config
	once   sync.Once
)

// Process reads the environment into a fresh Config.
func Process() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	switch cfg.Store {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required when STORE=postgres")
		}
	case StoreMemory:
	default:
		return nil, errors.New("STORE must be 'postgres' or 'memory'")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, errors.New("MAX_UPLOAD_MB must be positive")
	}
	return &cfg, nil
}

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Process()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: Store=%s, HTTP Port=%s, GRPC Port=%s, LogLevel=%s", config.Store, config.HTTPPort, config.GrpcPort, config.LogLevel)
		if config.DatabaseURL != "" {
			logger.Info("Configuration loaded: DatabaseURL is set")
		}
	})
	return &config
}
