package usecase

import (
	"context"
	"fmt"

	"catalog_service/internal/domain"

	"github.com/sirupsen/logrus"
)

// CategoryUseCase is read-only; categories are maintained with fixtures.
type CategoryUseCase interface {
	GetCategoryByID(ctx context.Context, id int) (*domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		log:          logger,
	}
}

func (uc *categoryUseCase) GetCategoryByID(ctx context.Context, id int) (*domain.Category, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Rejected category lookup for ID %d", id)
		return nil, &domain.NotFoundError{Resource: "category", ID: id}
	}

	category, err := uc.categoryRepo.GetCategoryByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Category ID %d lookup failed: %v", id, err)
		return nil, err
	}
	uc.log.Debugf("Use Case: Found category %d (%s)", category.ID, category.Name)
	return category, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := uc.categoryRepo.ListCategories(ctx)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, fmt.Errorf("could not retrieve categories: %w", err)
	}

	uc.log.Infof("Use Case: Retrieved %d categories", len(categories))
	return categories, nil
}
