// domain/product.go
package domain

import (
	"context"
	"io"
)

type ProductRepository interface {
	// CreateProduct inserts p. A preset ID is kept (fixture loading); otherwise
	// the store assigns one and writes it back into p.
	CreateProduct(ctx context.Context, product *Product) (*Product, error)
	GetProductByID(ctx context.Context, id int) (*Product, error)
	UpdateProduct(ctx context.Context, product *Product) (*Product, error)
	DeleteProduct(ctx context.Context, id int) error
	ListProducts(ctx context.Context, query ProductQuery) ([]Product, error)
}

// ImageStorage keeps uploaded product images.
type ImageStorage interface {
	Save(name string, r io.Reader) (string, error)
	Delete(name string) error
	URL(name string) string
}

// ImageUpload is an image file attached to a create/update request.
type ImageUpload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// ProductPayload carries the submitted form. A nil field was not submitted;
// for updates that keeps the stored value.
type ProductPayload struct {
	Category    *string
	SKU         *string
	Name        *string
	Description *string
	HasSizes    *string
	Price       *string
	Rating      *string
	ImageURL    *string
	Image       *ImageUpload
	ClearImage  bool
}
