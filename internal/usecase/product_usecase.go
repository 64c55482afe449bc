package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"catalog_service/internal/domain"
	"catalog_service/internal/media"

	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	ListProducts(ctx context.Context, params map[string]string) (*domain.ProductListing, error)
	GetProductByID(ctx context.Context, id int) (*domain.Product, error)
	AuthorizeOwner(isOwner bool) error
	GetProductForEdit(ctx context.Context, isOwner bool, id int) (*domain.Product, error)
	CreateProduct(ctx context.Context, isOwner bool, payload domain.ProductPayload) (*domain.Product, error)
	UpdateProduct(ctx context.Context, isOwner bool, id int, payload domain.ProductPayload) (*domain.Product, error)
	DeleteProduct(ctx context.Context, isOwner bool, id int) error
}

type productUseCase struct {
	productRepo   domain.ProductRepository
	categoryRepo  domain.CategoryRepository
	images        domain.ImageStorage
	maxImageBytes int64
	log           *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, images domain.ImageStorage, maxImageBytes int64, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:   pRepo,
		categoryRepo:  cRepo,
		images:        images,
		maxImageBytes: maxImageBytes,
		log:           logger,
	}
}

func (uc *productUseCase) ListProducts(ctx context.Context, params map[string]string) (*domain.ProductListing, error) {
	query, currentSorting, err := BuildProductQuery(params)
	if err != nil {
		uc.log.Warnf("Use Case: Rejected product listing parameters %v: %v", params, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to list products (params: %v)", params)
	products, err := uc.productRepo.ListProducts(ctx, query)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, err
	}

	listing := &domain.ProductListing{
		Products:       products,
		SearchTerm:     query.Search,
		CurrentSorting: currentSorting,
	}
	if query.CategoryNames != nil {
		categories, err := uc.categoryRepo.ListCategoriesByNames(ctx, query.CategoryNames)
		if err != nil {
			uc.log.Errorf("Use Case: Repository failed to resolve categories %v: %v", query.CategoryNames, err)
			return nil, fmt.Errorf("could not resolve categories: %w", err)
		}
		listing.CurrentCategories = categories
	}

	uc.log.Infof("Use Case: Retrieved %d products", len(products))
	return listing, nil
}

func (uc *productUseCase) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %d", id)
		return nil, &domain.NotFoundError{Resource: "product", ID: id}
	}

	product, err := uc.productRepo.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get product ID %d: %v", id, err)
		return nil, err
	}
	return product, nil
}

// AuthorizeOwner is the first step of every mutation.
func (uc *productUseCase) AuthorizeOwner(isOwner bool) error {
	if !isOwner {
		uc.log.Warn("Use Case: Non-owner attempted a catalog mutation")
		return &domain.AuthorizationError{Message: domain.MsgOwnersOnly}
	}
	return nil
}

func (uc *productUseCase) GetProductForEdit(ctx context.Context, isOwner bool, id int) (*domain.Product, error) {
	if err := uc.AuthorizeOwner(isOwner); err != nil {
		return nil, err
	}
	return uc.GetProductByID(ctx, id)
}

func (uc *productUseCase) CreateProduct(ctx context.Context, isOwner bool, payload domain.ProductPayload) (*domain.Product, error) {
	if err := uc.AuthorizeOwner(isOwner); err != nil {
		return nil, err
	}

	product, err := uc.validate(ctx, payload, nil)
	if err != nil {
		uc.log.Warnf("Use Case: Product creation rejected: %v", err)
		return nil, err
	}

	stored, err := uc.storeImage(payload.Image)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		product.Image = &stored
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	created, err := uc.productRepo.CreateProduct(ctx, &product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		uc.discardImage(stored)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", created.Name, created.ID)
	return created, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, isOwner bool, id int, payload domain.ProductPayload) (*domain.Product, error) {
	if err := uc.AuthorizeOwner(isOwner); err != nil {
		return nil, err
	}

	existing, err := uc.GetProductByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Product ID %d not found for update: %v", id, err)
		return nil, err
	}

	product, err := uc.validate(ctx, payload, existing)
	if err != nil {
		uc.log.Warnf("Use Case: Update of product ID %d rejected: %v", id, err)
		return nil, err
	}

	stored, err := uc.storeImage(payload.Image)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		product.Image = &stored
	}

	uc.log.Infof("Use Case: Attempting update for product ID %d", id)
	updated, err := uc.productRepo.UpdateProduct(ctx, &product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed update for product ID %d: %v", id, err)
		uc.discardImage(stored)
		return nil, err
	}

	if existing.Image != nil && (updated.Image == nil || *updated.Image != *existing.Image) {
		uc.discardImage(*existing.Image)
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updated.ID)
	return updated, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, isOwner bool, id int) error {
	if err := uc.AuthorizeOwner(isOwner); err != nil {
		return err
	}

	existing, err := uc.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	uc.log.Infof("Use Case: Attempting to delete product ID %d", id)
	if err := uc.productRepo.DeleteProduct(ctx, id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %d: %v", id, err)
		return err
	}
	if existing.Image != nil {
		uc.discardImage(*existing.Image)
	}
	uc.log.Infof("Use Case: Product deleted successfully for ID %d", id)
	return nil
}

// validate merges payload over base (nil for create) and checks the result,
// including the category reference and the uploaded image.
func (uc *productUseCase) validate(ctx context.Context, payload domain.ProductPayload, base *domain.Product) (domain.Product, error) {
	form := NewProductForm(base)
	form.Apply(payload)

	verr := form.Validate()
	if form.Category != "" && len(verr.Fields["category"]) == 0 {
		categoryID, err := strconv.Atoi(form.Category)
		if err != nil || categoryID <= 0 {
			verr.Add("category", msgInvalidChoice)
		} else if _, err := uc.categoryRepo.GetCategoryByID(ctx, categoryID); err != nil {
			var notFound *domain.NotFoundError
			if !errors.As(err, &notFound) {
				return domain.Product{}, fmt.Errorf("could not check category %d: %w", categoryID, err)
			}
			verr.Add("category", msgInvalidChoice)
		}
	}
	if upload := payload.Image; upload != nil {
		if uc.maxImageBytes > 0 && upload.Size > uc.maxImageBytes {
			verr.Add("image", fmt.Sprintf("Image files may not exceed %d bytes.", uc.maxImageBytes))
		} else if _, err := media.SniffImage(upload.Content); err != nil {
			verr.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		}
	}
	if verr.HasErrors() {
		return domain.Product{}, verr
	}
	return form.Product(base), nil
}

func (uc *productUseCase) storeImage(upload *domain.ImageUpload) (string, error) {
	if upload == nil {
		return "", nil
	}
	ext, err := media.SniffImage(upload.Content)
	if err != nil {
		return "", fmt.Errorf("could not read image upload: %w", err)
	}
	stored, err := uc.images.Save("image"+ext, upload.Content)
	if err != nil {
		uc.log.Errorf("Use Case: Failed to store image '%s': %v", upload.Filename, err)
		return "", fmt.Errorf("could not store image: %w", err)
	}
	return stored, nil
}

func (uc *productUseCase) discardImage(name string) {
	if name == "" {
		return
	}
	if err := uc.images.Delete(name); err != nil {
		uc.log.Warnf("Use Case: Failed to remove image %s: %v", name, err)
	}
}
