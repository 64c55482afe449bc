package repository

import (
	"context"
	"regexp"
	"testing"

	"catalog_service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresCreateCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCategoryRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories (name, friendly_name) VALUES ($1, $2) RETURNING id")).
		WithArgs("kitchen", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	category, err := repo.CreateCategory(context.Background(), &domain.Category{Name: "kitchen"})
	require.NoError(t, err)
	assert.Equal(t, 4, category.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateCategoryWithFixedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCategoryRepository(db, discardLogger())

	friendly := "Kitchen"
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WithArgs(3, "kitchen", "Kitchen").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('categories', 'id')")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	category, err := repo.CreateCategory(context.Background(), &domain.Category{ID: 3, Name: "kitchen", FriendlyName: &friendly})
	require.NoError(t, err)
	assert.Equal(t, 3, category.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateCategoryDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCategoryRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := repo.CreateCategory(context.Background(), &domain.Category{Name: "kitchen"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCategoryByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCategoryRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, friendly_name FROM categories WHERE id = $1")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "friendly_name"}).AddRow(2, "garden", nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, friendly_name FROM categories WHERE id = $1")).
		WithArgs(8).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "friendly_name"}))

	category, err := repo.GetCategoryByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "garden", category.Name)
	assert.Nil(t, category.FriendlyName)
	assert.Equal(t, "garden", category.DisplayName())

	_, err = repo.GetCategoryByID(context.Background(), 8)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListCategoriesByNames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCategoryRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE name = ANY($1) ORDER BY id ASC")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "friendly_name"}).
			AddRow(1, "kitchen", "Kitchen").
			AddRow(2, "garden", "Garden"))

	categories, err := repo.ListCategoriesByNames(context.Background(), []string{"garden", "kitchen"})
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "kitchen", categories[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListCategories(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresCategoryRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, friendly_name FROM categories ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "friendly_name"}))

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)
	require.NoError(t, mock.ExpectationsWereMet())
}
