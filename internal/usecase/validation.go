package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"catalog_service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	msgInvalidForm   = "invalid product data"
)

// ProductForm holds the string values of a product form, as submitted or as
// prefilled from a stored product.
type ProductForm struct {
	Category    string `json:"category"    validate:"omitempty,number"`
	SKU         string `json:"sku"         validate:"max=254"`
	Name        string `json:"name"        validate:"required,max=254"`
	Description string `json:"description" validate:"required"`
	HasSizes    string `json:"has_sizes"   validate:"omitempty,oneof=true false on off 1 0 unknown"`
	Price       string `json:"price"       validate:"required,money"`
	Rating      string `json:"rating"      validate:"omitempty,money"`
	ImageURL    string `json:"image_url"   validate:"omitempty,url,max=1024"`
	Image       string `json:"image"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// money: non-negative, at most 6 digits of which at most 2 decimals.
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil || d.IsNegative() || d.Exponent() < -2 {
			return false
		}
		return d.Truncate(0).Abs().LessThan(decimal.NewFromInt(10000))
	})
	return v
}

// NewProductForm prefills a form from product; a nil product gives an empty
// form.
func NewProductForm(product *domain.Product) ProductForm {
	if product == nil {
		return ProductForm{}
	}
	form := ProductForm{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.StringFixed(2),
	}
	if product.CategoryID != nil {
		form.Category = strconv.Itoa(*product.CategoryID)
	}
	if product.SKU != nil {
		form.SKU = *product.SKU
	}
	if product.HasSizes != nil {
		form.HasSizes = strconv.FormatBool(*product.HasSizes)
	}
	if product.Rating != nil {
		form.Rating = product.Rating.StringFixed(2)
	}
	if product.ImageURL != nil {
		form.ImageURL = *product.ImageURL
	}
	if product.Image != nil {
		form.Image = *product.Image
	}
	return form
}

// Apply overwrites every submitted field. Values are trimmed.
func (f *ProductForm) Apply(payload domain.ProductPayload) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&f.Category, payload.Category)
	set(&f.SKU, payload.SKU)
	set(&f.Name, payload.Name)
	set(&f.Description, payload.Description)
	set(&f.HasSizes, payload.HasSizes)
	set(&f.Price, payload.Price)
	set(&f.Rating, payload.Rating)
	set(&f.ImageURL, payload.ImageURL)
	if payload.ClearImage {
		f.Image = ""
	}
	if payload.Image != nil {
		f.Image = payload.Image.Filename
	}
}

// Validate checks the field values only; references to other records are
// checked by the use case.
func (f ProductForm) Validate() *domain.ValidationError {
	verr := domain.NewValidationError(msgInvalidForm)
	err := validate.Struct(f)
	if err == nil {
		return verr
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.Add("__all__", err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "number":
		return msgInvalidChoice
	case "oneof":
		return "Enter a valid choice: yes, no or unknown."
	case "money":
		return "Enter a non-negative number with at most 6 digits and 2 decimal places."
	case "url":
		return "Enter a valid URL."
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

// Product builds the record a validated form describes, keeping the ID and
// stored image of base.
func (f ProductForm) Product(base *domain.Product) domain.Product {
	var product domain.Product
	if base != nil {
		product.ID = base.ID
		product.Image = base.Image
	}
	product.Name = f.Name
	product.Description = f.Description
	product.Price = decimal.RequireFromString(f.Price)
	if f.Category != "" {
		id, _ := strconv.Atoi(f.Category)
		product.CategoryID = &id
	}
	if f.SKU != "" {
		sku := f.SKU
		product.SKU = &sku
	}
	switch f.HasSizes {
	case "true", "on", "1":
		v := true
		product.HasSizes = &v
	case "false", "off", "0":
		v := false
		product.HasSizes = &v
	}
	if f.Rating != "" {
		rating := decimal.RequireFromString(f.Rating)
		product.Rating = &rating
	}
	if f.ImageURL != "" {
		imageURL := f.ImageURL
		product.ImageURL = &imageURL
	}
	if f.Image == "" {
		product.Image = nil
	}
	return product
}
