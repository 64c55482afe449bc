// Package fixtures loads catalog records from Django-style JSON fixtures:
//
//	[{"pk": 1, "model": "products.category", "fields": {"name": "jeans", "friendly_name": "Jeans"}}]
//
// Primary keys are kept so products can reference categories by id.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	ModelCategory = "products.category"
	ModelProduct  = "products.product"
)

type record struct {
	PK     int             `json:"pk"`
	Model  string          `json:"model"`
	Fields json.RawMessage `json:"fields"`
}

type categoryFields struct {
	Name         string  `json:"name"`
	FriendlyName *string `json:"friendly_name"`
}

type productFields struct {
	Category    *int             `json:"category"`
	SKU         *string          `json:"sku"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	HasSizes    *bool            `json:"has_sizes"`
	Price       decimal.Decimal  `json:"price"`
	Rating      *decimal.Decimal `json:"rating"`
	ImageURL    *string          `json:"image_url"`
	Image       *string          `json:"image"`
}

type Result struct {
	Categories int
	Products   int
}

type Loader struct {
	categoryRepo domain.CategoryRepository
	productRepo  domain.ProductRepository
	log          *logrus.Logger
}

func NewLoader(cRepo domain.CategoryRepository, pRepo domain.ProductRepository, logger *logrus.Logger) *Loader {
	return &Loader{categoryRepo: cRepo, productRepo: pRepo, log: logger}
}

// Load stores every record of one fixture file. Categories are written
// before products whatever their order in the file.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Result, error) {
	var (
		records []record
		result  Result
	)
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return result, fmt.Errorf("could not decode fixture: %w", err)
	}

	var categories, products []record
	for i, rec := range records {
		if rec.PK <= 0 {
			return result, fmt.Errorf("record %d: pk must be positive", i)
		}
		switch rec.Model {
		case ModelCategory:
			categories = append(categories, rec)
		case ModelProduct:
			products = append(products, rec)
		default:
			return result, fmt.Errorf("record %d: unsupported model %q", i, rec.Model)
		}
	}

	for _, rec := range categories {
		var fields categoryFields
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return result, fmt.Errorf("category %d: %w", rec.PK, err)
		}
		category := &domain.Category{ID: rec.PK, Name: fields.Name, FriendlyName: fields.FriendlyName}
		if _, err := l.categoryRepo.CreateCategory(ctx, category); err != nil {
			return result, fmt.Errorf("category %d: %w", rec.PK, err)
		}
		result.Categories++
	}

	for _, rec := range products {
		var fields productFields
		if err := json.Unmarshal(rec.Fields, &fields); err != nil {
			return result, fmt.Errorf("product %d: %w", rec.PK, err)
		}
		product := &domain.Product{
			ID:          rec.PK,
			CategoryID:  fields.Category,
			SKU:         fields.SKU,
			Name:        fields.Name,
			Description: fields.Description,
			HasSizes:    fields.HasSizes,
			Price:       fields.Price,
			Rating:      fields.Rating,
			ImageURL:    fields.ImageURL,
			Image:       fields.Image,
		}
		if _, err := l.productRepo.CreateProduct(ctx, product); err != nil {
			return result, fmt.Errorf("product %d: %w", rec.PK, err)
		}
		result.Products++
	}

	l.log.Infof("Fixtures: Loaded %d categories and %d products", result.Categories, result.Products)
	return result, nil
}
