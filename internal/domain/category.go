package domain

import "context"

type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *Category) (*Category, error)
	GetCategoryByID(ctx context.Context, id int) (*Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListCategoriesByNames(ctx context.Context, names []string) ([]Category, error)
}
