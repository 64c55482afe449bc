package domain

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int              `json:"id"          db:"id"`
	CategoryID  *int             `json:"category_id" db:"category_id"`
	SKU         *string          `json:"sku"         db:"sku"`
	Name        string           `json:"name"        db:"name"`
	Description string           `json:"description" db:"description"`
	HasSizes    *bool            `json:"has_sizes"   db:"has_sizes"`
	Price       decimal.Decimal  `json:"price"       db:"price"`
	Rating      *decimal.Decimal `json:"rating"      db:"rating"`
	ImageURL    *string          `json:"image_url"   db:"image_url"`
	Image       *string          `json:"image"       db:"image"` // stored file name under MEDIA_ROOT

	Category *Category `json:"category,omitempty" db:"-"` // joined on read
}

type Category struct {
	ID           int     `json:"id"            db:"id"`
	Name         string  `json:"name"          db:"name"` // programmatic name, used as filter key
	FriendlyName *string `json:"friendly_name" db:"friendly_name"`
}

// DisplayName falls back to Name when no friendly name is set.
func (c Category) DisplayName() string {
	if c.FriendlyName != nil && *c.FriendlyName != "" {
		return *c.FriendlyName
	}
	return c.Name
}

// ProductListing is the context handed to the presentation layer for the
// product list page.
type ProductListing struct {
	Products          []Product  `json:"products"`
	SearchTerm        *string    `json:"search_term"`
	CurrentCategories []Category `json:"current_categories"`
	CurrentSorting    string     `json:"current_sorting"`
}
