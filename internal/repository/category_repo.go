package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"catalog_service/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sqlx.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

// CreateCategory inserts a category. With a preset ID the row is upserted
// under that key, which is how fixtures keep their primary keys.
func (r *postgresCategoryRepository) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	var err error
	if category.ID != 0 {
		_, err = r.db.ExecContext(ctx, `
            INSERT INTO categories (id, name, friendly_name) VALUES ($1, $2, $3)
            ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, friendly_name = EXCLUDED.friendly_name`,
			category.ID, category.Name, category.FriendlyName)
		if err == nil {
			_, err = r.db.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('categories', 'id'), (SELECT MAX(id) FROM categories))`)
		}
	} else {
		query := `INSERT INTO categories (name, friendly_name) VALUES ($1, $2) RETURNING id`
		err = r.db.QueryRowxContext(ctx, query, category.Name, category.FriendlyName).Scan(&category.ID)
	}
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.Warnf("Repository: Attempted to create category with duplicate name: %s", category.Name)
			verr := domain.NewValidationError("invalid category data")
			verr.Add("name", fmt.Sprintf("category with name '%s' already exists", category.Name))
			return nil, verr
		}
		r.log.Errorf("Repository: Failed to create category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}
	r.log.Infof("Repository: Category stored with ID: %d, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	query := `SELECT id, name, friendly_name FROM categories WHERE id = $1`
	category := &domain.Category{}
	err := r.db.GetContext(ctx, category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Category with ID %d not found", id)
			return nil, &domain.NotFoundError{Resource: "category", ID: id}
		}
		r.log.Errorf("Repository: Failed to get category by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	return category, nil
}

func (r *postgresCategoryRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT id, name, friendly_name FROM categories ORDER BY id ASC`
	categories := []domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		r.log.Errorf("Repository: Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	r.log.Infof("Repository: Retrieved %d categories", len(categories))
	return categories, nil
}

func (r *postgresCategoryRepository) ListCategoriesByNames(ctx context.Context, names []string) ([]domain.Category, error) {
	query := `SELECT id, name, friendly_name FROM categories WHERE name = ANY($1) ORDER BY id ASC`
	categories := []domain.Category{}
	if err := r.db.SelectContext(ctx, &categories, query, pq.Array(names)); err != nil {
		r.log.Errorf("Repository: Failed to list categories by names %v: %v", names, err)
		return nil, fmt.Errorf("could not list categories by names: %w", err)
	}
	return categories, nil
}
