package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"catalog_service/config"
	"catalog_service/internal/fixtures"
	"catalog_service/internal/middleware"

	"github.com/spf13/cobra"
)

var loaddataCmd = &cobra.Command{
	Use:   "loaddata [fixture.json...]",
	Short: "Load category and product fixtures into the database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup()
		if cfg.Store != config.StorePostgres {
			return errors.New("loaddata needs STORE=postgres; use 'serve --fixtures' with the memory store")
		}
		st, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		loader := fixtures.NewLoader(st.categories, st.products, logger)
		for _, path := range args {
			if err := loadFixtureFile(cmd.Context(), loader, path); err != nil {
				return err
			}
		}
		return nil
	},
}

func loadFixtureFile(ctx context.Context, loader *fixtures.Loader, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open fixture %s: %w", path, err)
	}
	defer f.Close()

	result, err := loader.Load(ctx, f)
	if err != nil {
		return fmt.Errorf("fixture %s: %w", path, err)
	}
	fmt.Printf("Installed %d categories and %d products from %s\n", result.Categories, result.Products, path)
	return nil
}

var (
	tokenUser      string
	tokenSuperuser bool
	tokenTTL       time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token signed with JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _ := setup()
		if tokenUser == "" {
			return errors.New("--user is required")
		}
		token, err := middleware.IssueToken([]byte(cfg.JWTSecret), tokenUser, tokenSuperuser, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "subject of the token")
	tokenCmd.Flags().BoolVar(&tokenSuperuser, "superuser", false, "grant the store-owner capability")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
