package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func Connect(databaseURL string) (*sqlx.DB, error) {

	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	err = db.Ping()
	if err != nil {

		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS categories (
    id            SERIAL PRIMARY KEY,
    name          VARCHAR(254) NOT NULL UNIQUE,
    friendly_name VARCHAR(254)
);

CREATE TABLE IF NOT EXISTS products (
    id          SERIAL PRIMARY KEY,
    category_id INTEGER REFERENCES categories (id) ON DELETE SET NULL,
    sku         VARCHAR(254),
    name        VARCHAR(254) NOT NULL,
    description TEXT NOT NULL,
    has_sizes   BOOLEAN,
    price       NUMERIC(6, 2) NOT NULL CHECK (price >= 0),
    rating      NUMERIC(6, 2),
    image_url   VARCHAR(1024),
    image       VARCHAR(255)
);

CREATE INDEX IF NOT EXISTS products_category_id_idx ON products (category_id);
`

// Migrate creates the catalog tables when they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply catalog schema: %w", err)
	}
	return nil
}
