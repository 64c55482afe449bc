package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"catalog_service/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MemoryCatalog is an in-process Catalog Store. Insertion order is its
// natural iteration order. It is safe for concurrent use.
type MemoryCatalog struct {
	mu             sync.RWMutex
	categories     map[int]domain.Category
	categoryOrder  []int
	products       map[int]domain.Product
	productOrder   []int
	lastCategoryID int
	lastProductID  int
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		categories: map[int]domain.Category{},
		products:   map[int]domain.Product{},
	}
}

type memoryProductRepository struct {
	catalog *MemoryCatalog
	log     *logrus.Logger
}

type memoryCategoryRepository struct {
	catalog *MemoryCatalog
	log     *logrus.Logger
}

func NewMemoryProductRepository(catalog *MemoryCatalog, logger *logrus.Logger) domain.ProductRepository {
	return &memoryProductRepository{catalog: catalog, log: logger}
}

func NewMemoryCategoryRepository(catalog *MemoryCatalog, logger *logrus.Logger) domain.CategoryRepository {
	return &memoryCategoryRepository{catalog: catalog, log: logger}
}

func (r *memoryCategoryRepository) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	c := r.catalog
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, existing := range c.categories {
		if existing.Name == category.Name && id != category.ID {
			verr := domain.NewValidationError("invalid category data")
			verr.Add("name", fmt.Sprintf("category with name '%s' already exists", category.Name))
			return nil, verr
		}
	}

	if category.ID == 0 {
		c.lastCategoryID++
		category.ID = c.lastCategoryID
	} else if category.ID > c.lastCategoryID {
		c.lastCategoryID = category.ID
	}
	if _, exists := c.categories[category.ID]; !exists {
		c.categoryOrder = append(c.categoryOrder, category.ID)
	}
	c.categories[category.ID] = cloneCategory(*category)
	r.log.Infof("Repository: Category stored with ID: %d, Name: %s", category.ID, category.Name)
	return category, nil
}

func (r *memoryCategoryRepository) GetCategoryByID(_ context.Context, id int) (*domain.Category, error) {
	c := r.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()

	category, ok := c.categories[id]
	if !ok {
		return nil, &domain.NotFoundError{Resource: "category", ID: id}
	}
	category = cloneCategory(category)
	return &category, nil
}

func (r *memoryCategoryRepository) ListCategories(_ context.Context) ([]domain.Category, error) {
	c := r.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()

	categories := make([]domain.Category, 0, len(c.categoryOrder))
	for _, id := range sortedIDs(c.categoryOrder) {
		categories = append(categories, cloneCategory(c.categories[id]))
	}
	return categories, nil
}

func (r *memoryCategoryRepository) ListCategoriesByNames(_ context.Context, names []string) ([]domain.Category, error) {
	c := r.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, name := range names {
		wanted[name] = struct{}{}
	}
	categories := []domain.Category{}
	for _, id := range sortedIDs(c.categoryOrder) {
		if _, ok := wanted[c.categories[id].Name]; ok {
			categories = append(categories, cloneCategory(c.categories[id]))
		}
	}
	return categories, nil
}

func (r *memoryProductRepository) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	c := r.catalog
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkCategoryRef(product.CategoryID); err != nil {
		return nil, err
	}
	if product.ID == 0 {
		c.lastProductID++
		product.ID = c.lastProductID
	} else if product.ID > c.lastProductID {
		c.lastProductID = product.ID
	}
	if _, exists := c.products[product.ID]; !exists {
		c.productOrder = append(c.productOrder, product.ID)
	}
	c.products[product.ID] = cloneProduct(*product)
	r.log.Infof("Repository: Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return c.hydrate(c.products[product.ID]), nil
}

func (r *memoryProductRepository) GetProductByID(_ context.Context, id int) (*domain.Product, error) {
	c := r.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()

	product, ok := c.products[id]
	if !ok {
		r.log.Warnf("Repository: Product with ID %d not found", id)
		return nil, &domain.NotFoundError{Resource: "product", ID: id}
	}
	return c.hydrate(product), nil
}

func (r *memoryProductRepository) UpdateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	c := r.catalog
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[product.ID]; !ok {
		return nil, &domain.NotFoundError{Resource: "product", ID: product.ID}
	}
	if err := c.checkCategoryRef(product.CategoryID); err != nil {
		return nil, err
	}
	c.products[product.ID] = cloneProduct(*product)
	r.log.Infof("Repository: Product ID %d updated", product.ID)
	return c.hydrate(c.products[product.ID]), nil
}

func (r *memoryProductRepository) DeleteProduct(_ context.Context, id int) error {
	c := r.catalog
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.products[id]; !ok {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %d", id)
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	delete(c.products, id)
	for i, existing := range c.productOrder {
		if existing == id {
			c.productOrder = append(c.productOrder[:i], c.productOrder[i+1:]...)
			break
		}
	}
	r.log.Infof("Repository: Product deleted successfully with ID: %d", id)
	return nil
}

func (r *memoryProductRepository) ListProducts(_ context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	c := r.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()

	var wanted map[string]struct{}
	if q.CategoryNames != nil {
		wanted = make(map[string]struct{}, len(q.CategoryNames))
		for _, name := range q.CategoryNames {
			wanted[name] = struct{}{}
		}
	}
	var needle string
	if q.Search != nil {
		needle = strings.ToLower(*q.Search)
	}

	products := []domain.Product{}
	for _, id := range c.productOrder {
		product := *c.hydrate(c.products[id])
		if wanted != nil {
			if product.Category == nil {
				continue
			}
			if _, ok := wanted[product.Category.Name]; !ok {
				continue
			}
		}
		if q.Search != nil &&
			!strings.Contains(strings.ToLower(product.Name), needle) &&
			!strings.Contains(strings.ToLower(product.Description), needle) {
			continue
		}
		products = append(products, product)
	}

	if q.Sort != nil {
		if err := sortProducts(products, *q.Sort); err != nil {
			r.log.Warnf("Repository: Product listing rejected: %v", err)
			return nil, err
		}
	}
	r.log.Infof("Repository: Retrieved %d products", len(products))
	return products, nil
}

func (c *MemoryCatalog) checkCategoryRef(categoryID *int) error {
	if categoryID == nil {
		return nil
	}
	if _, ok := c.categories[*categoryID]; !ok {
		verr := domain.NewValidationError("invalid product data")
		verr.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		return verr
	}
	return nil
}

// hydrate returns a copy of product with its category attached.
func (c *MemoryCatalog) hydrate(product domain.Product) *domain.Product {
	out := cloneProduct(product)
	out.Category = nil
	if out.CategoryID != nil {
		if category, ok := c.categories[*out.CategoryID]; ok {
			category = cloneCategory(category)
			out.Category = &category
		}
	}
	return &out
}

func sortedIDs(ids []int) []int {
	out := append([]int(nil), ids...)
	sort.Ints(out)
	return out
}

// sortProducts orders products the way Postgres would: NULLs sort after
// every value ascending and before every value descending.
func sortProducts(products []domain.Product, order domain.SortOrder) error {
	if _, known := productField(domain.Product{}, order); !known {
		return domain.NewValidationError(fmt.Sprintf("cannot order products: column %q does not exist", order.Field))
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, _ := productField(products[i], order)
		b, _ := productField(products[j], order)
		cmp := compareValues(a, b)
		if order.Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return nil
}

func productField(p domain.Product, order domain.SortOrder) (interface{}, bool) {
	switch order.Field {
	case "id":
		return p.ID, true
	case "name":
		if order.CaseInsensitive {
			return strings.ToLower(p.Name), true
		}
		return p.Name, true
	case "description":
		return p.Description, true
	case "price":
		return p.Price, true
	case "category_id":
		return derefInt(p.CategoryID), true
	case "sku":
		return derefString(p.SKU), true
	case "has_sizes":
		if p.HasSizes == nil {
			return nil, true
		}
		return *p.HasSizes, true
	case "rating":
		if p.Rating == nil {
			return nil, true
		}
		return *p.Rating, true
	case "image_url":
		return derefString(p.ImageURL), true
	case "image":
		return derefString(p.Image), true
	case "category.id", "category.name", "category.friendly_name":
		if p.Category == nil {
			return nil, true
		}
		switch order.Field {
		case "category.id":
			return p.Category.ID, true
		case "category.name":
			return p.Category.Name, true
		default:
			return derefString(p.Category.FriendlyName), true
		}
	}
	return nil, false
}

func derefString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return *i
}

func compareValues(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	switch av := a.(type) {
	case string:
		return strings.Compare(av, b.(string))
	case int:
		bv := b.(int)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case decimal.Decimal:
		return av.Cmp(b.(decimal.Decimal))
	}
	return 0
}

func cloneCategory(c domain.Category) domain.Category {
	if c.FriendlyName != nil {
		friendly := *c.FriendlyName
		c.FriendlyName = &friendly
	}
	return c
}

func cloneProduct(p domain.Product) domain.Product {
	if p.CategoryID != nil {
		v := *p.CategoryID
		p.CategoryID = &v
	}
	if p.SKU != nil {
		v := *p.SKU
		p.SKU = &v
	}
	if p.HasSizes != nil {
		v := *p.HasSizes
		p.HasSizes = &v
	}
	if p.Rating != nil {
		v := *p.Rating
		p.Rating = &v
	}
	if p.ImageURL != nil {
		v := *p.ImageURL
		p.ImageURL = &v
	}
	if p.Image != nil {
		v := *p.Image
		p.Image = &v
	}
	if p.Category != nil {
		v := cloneCategory(*p.Category)
		p.Category = &v
	}
	return p
}
