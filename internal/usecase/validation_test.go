package usecase

import (
	"strings"
	"testing"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() ProductForm {
	return ProductForm{
		Name:        "Blue Mug",
		Description: "Holds coffee",
		Price:       "12.50",
	}
}

func TestProductFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(f *ProductForm)
		wantField string
	}{
		{name: "valid", mutate: func(f *ProductForm) {}},
		{name: "missing name", mutate: func(f *ProductForm) { f.Name = "" }, wantField: "name"},
		{name: "long name", mutate: func(f *ProductForm) { f.Name = strings.Repeat("a", 255) }, wantField: "name"},
		{name: "missing description", mutate: func(f *ProductForm) { f.Description = "" }, wantField: "description"},
		{name: "missing price", mutate: func(f *ProductForm) { f.Price = "" }, wantField: "price"},
		{name: "negative price", mutate: func(f *ProductForm) { f.Price = "-1.00" }, wantField: "price"},
		{name: "too many decimals", mutate: func(f *ProductForm) { f.Price = "1.005" }, wantField: "price"},
		{name: "too many digits", mutate: func(f *ProductForm) { f.Price = "10000.00" }, wantField: "price"},
		{name: "largest price", mutate: func(f *ProductForm) { f.Price = "9999.99" }},
		{name: "text price", mutate: func(f *ProductForm) { f.Price = "cheap" }, wantField: "price"},
		{name: "bad category", mutate: func(f *ProductForm) { f.Category = "kitchen" }, wantField: "category"},
		{name: "bad has_sizes", mutate: func(f *ProductForm) { f.HasSizes = "maybe" }, wantField: "has_sizes"},
		{name: "bad rating", mutate: func(f *ProductForm) { f.Rating = "4.555" }, wantField: "rating"},
		{name: "bad image url", mutate: func(f *ProductForm) { f.ImageURL = "not a url" }, wantField: "image_url"},
		{name: "full form", mutate: func(f *ProductForm) {
			f.Category = "3"
			f.SKU = "pp5001340155"
			f.HasSizes = "on"
			f.Rating = "4.5"
			f.ImageURL = "https://example.com/mug.jpg"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			verr := form.Validate()
			require.NotNil(t, verr)
			if tt.wantField == "" {
				assert.False(t, verr.HasErrors(), verr.Error())
				return
			}
			assert.True(t, verr.HasErrors())
			assert.Contains(t, verr.Fields, tt.wantField)
			assert.Len(t, verr.Fields, 1)
		})
	}
}

func TestProductFormRequiredMessage(t *testing.T) {
	form := ProductForm{}
	verr := form.Validate()
	assert.Equal(t, []string{"This field is required."}, verr.Fields["name"])
	assert.Equal(t, []string{"This field is required."}, verr.Fields["description"])
	assert.Equal(t, []string{"This field is required."}, verr.Fields["price"])
}

func TestNewProductFormPrefillsAndApplyOverwrites(t *testing.T) {
	categoryID := 2
	image := "old.png"
	rating := decimal.RequireFromString("4.2")
	product := &domain.Product{
		ID:          7,
		CategoryID:  &categoryID,
		Name:        "Blue Mug",
		Description: "Holds coffee",
		Price:       decimal.RequireFromString("12.5"),
		Rating:      &rating,
		Image:       &image,
	}

	form := NewProductForm(product)
	assert.Equal(t, "2", form.Category)
	assert.Equal(t, "12.50", form.Price)
	assert.Equal(t, "4.20", form.Rating)
	assert.Equal(t, "old.png", form.Image)

	form.Apply(domain.ProductPayload{
		Name:  strPtr("  Red Mug  "),
		Price: strPtr("9.99"),
	})
	assert.Equal(t, "Red Mug", form.Name)
	assert.Equal(t, "Holds coffee", form.Description)
	assert.Equal(t, "9.99", form.Price)

	updated := form.Product(product)
	assert.Equal(t, 7, updated.ID)
	assert.Equal(t, "Red Mug", updated.Name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(updated.Price))
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, 2, *updated.CategoryID)
	require.NotNil(t, updated.Image)
	assert.Equal(t, "old.png", *updated.Image)
}

func TestProductFormClearImage(t *testing.T) {
	image := "old.png"
	product := &domain.Product{ID: 1, Name: "Mug", Description: "d", Image: &image}

	form := NewProductForm(product)
	form.Apply(domain.ProductPayload{ClearImage: true})
	assert.Empty(t, form.Image)
	assert.Nil(t, form.Product(product).Image)
}

func TestProductFormHasSizes(t *testing.T) {
	form := validForm()
	form.HasSizes = "off"
	product := form.Product(nil)
	require.NotNil(t, product.HasSizes)
	assert.False(t, *product.HasSizes)

	form.HasSizes = "unknown"
	assert.Nil(t, form.Product(nil).HasSizes)
}
