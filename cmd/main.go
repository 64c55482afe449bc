package main

import (
	"fmt"
	"os"

	"catalog_service/config"
	"catalog_service/internal/domain"
	"catalog_service/internal/repository"
	"catalog_service/pkg/db"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Product catalog service",
	Long:          `Serves the product catalog over HTTP and gRPC and maintains its database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, loaddataCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the service logger.
func setup() (*config.Config, *logrus.Logger) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
		logger.Warnf("Invalid LOG_LEVEL '%s', using default: %s", cfg.LogLevel, logLevel.String())
	}
	logger.SetLevel(logLevel)
	return cfg, logger
}

type store struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	db         *sqlx.DB
}

func (s *store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func openStore(cfg *config.Config, logger *logrus.Logger) (*store, error) {
	if cfg.Store == config.StoreMemory {
		catalog := repository.NewMemoryCatalog()
		logger.Info("Using in-memory catalog store.")
		return &store{
			products:   repository.NewMemoryProductRepository(catalog, logger),
			categories: repository.NewMemoryCategoryRepository(catalog, logger),
		}, nil
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("Database connection established.")
	return &store{
		products:   repository.NewPostgresProductRepository(database, logger),
		categories: repository.NewPostgresCategoryRepository(database, logger),
		db:         database,
	}, nil
}
