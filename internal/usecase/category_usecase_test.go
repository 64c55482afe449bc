package usecase

import (
	"context"
	"errors"
	"testing"

	"catalog_service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCategoryRepo struct {
	domain.CategoryRepository
}

func (failingCategoryRepo) ListCategories(context.Context) ([]domain.Category, error) {
	return nil, errors.New("connection reset")
}

func TestCategoryUseCase(t *testing.T) {
	f := newCatalogFixture(t)
	uc := NewCategoryUseCase(f.categories, newTestLogger())
	ctx := context.Background()

	categories, err := uc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "kitchen", categories[0].Name)

	category, err := uc.GetCategoryByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "garden", category.Name)

	var notFound *domain.NotFoundError
	_, err = uc.GetCategoryByID(ctx, 0)
	assert.ErrorAs(t, err, &notFound)
	_, err = uc.GetCategoryByID(ctx, 7)
	assert.ErrorAs(t, err, &notFound)
}

func TestCategoryUseCaseWrapsStoreErrors(t *testing.T) {
	uc := NewCategoryUseCase(failingCategoryRepo{}, newTestLogger())

	_, err := uc.ListCategories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not retrieve categories")
}
