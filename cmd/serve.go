package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog_service/config"
	"catalog_service/internal/delivery"
	grpcdelivery "catalog_service/internal/delivery/grpc"
	"catalog_service/internal/fixtures"
	"catalog_service/internal/media"
	"catalog_service/internal/usecase"
	"catalog_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveFixtures []string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringSliceVar(&serveFixtures, "fixtures", nil, "fixture files to load before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger := setup()
	logger.Info("Starting Catalog Service...")

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if st.db != nil {
		if err := db.Migrate(ctx, st.db); err != nil {
			return err
		}
	}
	if len(serveFixtures) > 0 {
		loader := fixtures.NewLoader(st.categories, st.products, logger)
		for _, path := range serveFixtures {
			if err := loadFixtureFile(ctx, loader, path); err != nil {
				return err
			}
		}
	}

	images, err := media.NewLocalStorage(cfg.MediaRoot, cfg.MediaURL, logger)
	if err != nil {
		return err
	}

	// --- Dependency Injection ---
	categoryUseCase := usecase.NewCategoryUseCase(st.categories, logger)
	productUseCase := usecase.NewProductUseCase(st.products, st.categories, images, cfg.MaxUploadBytes(), logger)
	logger.Info("Use cases initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.RouterConfig{
		ProductHandler:  delivery.NewProductHandler(productUseCase, logger),
		CategoryHandler: delivery.NewCategoryHandler(categoryUseCase, logger),
		JWTSecret:       []byte(cfg.JWTSecret),
		CORSOrigins:     cfg.CORSOrigins,
		MediaRoot:       images.Root(),
		MediaURL:        cfg.MediaURL,
		Logger:          logger,
	})
	router.MaxMultipartMemory = cfg.MaxUploadBytes()
	logger.Info("API Routes registered.")

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grpcServer := grpcdelivery.NewServer(grpcdelivery.NewCatalogHandler(productUseCase, categoryUseCase, logger), logger)

	listener, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port %s: %w", cfg.GrpcPort, err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Infof("Starting gRPC server on port %s", cfg.GrpcPort)
		errCh <- grpcServer.Serve(listener)
	}()
	go func() {
		logger.Infof("Starting HTTP server on port %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case err = <-errCh:
		logger.Errorf("Server failed: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Warnf("HTTP shutdown: %v", shutdownErr)
	}
	grpcServer.GracefulStop()
	return err
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the catalog tables if they are missing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger := setup()
		if cfg.Store != config.StorePostgres {
			return errors.New("migrate needs STORE=postgres")
		}
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := db.Migrate(cmd.Context(), st.db); err != nil {
			return err
		}
		logger.Info("Catalog schema is up to date.")
		return nil
	},
}
