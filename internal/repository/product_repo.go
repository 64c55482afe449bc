package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"catalog_service/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const productColumns = `
        p.id, p.category_id, p.sku, p.name, p.description, p.has_sizes,
        p.price, p.rating, p.image_url, p.image,
        c.id AS cat_id, c.name AS cat_name, c.friendly_name AS cat_friendly_name`

const productFrom = `
        FROM products p
        LEFT JOIN categories c ON c.id = p.category_id`

// productRow is a product joined with its (optional) category.
type productRow struct {
	domain.Product
	CatID           sql.NullInt64  `db:"cat_id"`
	CatName         sql.NullString `db:"cat_name"`
	CatFriendlyName sql.NullString `db:"cat_friendly_name"`
}

func (row productRow) toDomain() domain.Product {
	product := row.Product
	product.Category = nil
	if row.CatID.Valid {
		category := &domain.Category{ID: int(row.CatID.Int64), Name: row.CatName.String}
		if row.CatFriendlyName.Valid {
			friendly := row.CatFriendlyName.String
			category.FriendlyName = &friendly
		}
		product.Category = category
	}
	return product
}

type postgresProductRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sqlx.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if product.ID != 0 {
		return r.createWithID(ctx, product)
	}

	query, args, err := sqlx.Named(`
        INSERT INTO products (category_id, sku, name, description, has_sizes, price, rating, image_url, image)
        VALUES (:category_id, :sku, :name, :description, :has_sizes, :price, :rating, :image_url, :image)
        RETURNING id`, product)
	if err != nil {
		return nil, fmt.Errorf("could not bind product insert: %w", err)
	}

	err = r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&product.ID)
	if err != nil {
		if classified := classifyProductError(err); classified != nil {
			r.log.Warnf("Repository: Rejected product '%s': %v", product.Name, classified)
			return nil, classified
		}
		r.log.Errorf("Repository: Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Repository: Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return r.GetProductByID(ctx, product.ID)
}

// createWithID inserts or replaces a product under a fixed primary key and
// moves the id sequence past it, in one transaction.
func (r *postgresProductRepository) createWithID(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("could not begin product insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `
        INSERT INTO products (id, category_id, sku, name, description, has_sizes, price, rating, image_url, image)
        VALUES (:id, :category_id, :sku, :name, :description, :has_sizes, :price, :rating, :image_url, :image)
        ON CONFLICT (id) DO UPDATE SET
            category_id = EXCLUDED.category_id,
            sku = EXCLUDED.sku,
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            has_sizes = EXCLUDED.has_sizes,
            price = EXCLUDED.price,
            rating = EXCLUDED.rating,
            image_url = EXCLUDED.image_url,
            image = EXCLUDED.image`, product)
	if err != nil {
		if classified := classifyProductError(err); classified != nil {
			return nil, classified
		}
		r.log.Errorf("Repository: Failed to insert product ID %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}

	_, err = tx.ExecContext(ctx, `SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT MAX(id) FROM products))`)
	if err != nil {
		r.log.Errorf("Repository: Failed to advance product id sequence: %v", err)
		return nil, fmt.Errorf("could not advance product id sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("could not commit product insert: %w", err)
	}
	r.log.Infof("Repository: Product stored with fixed ID: %d, Name: %s", product.ID, product.Name)
	return r.GetProductByID(ctx, product.ID)
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id int) (*domain.Product, error) {
	query := `SELECT` + productColumns + productFrom + `
        WHERE p.id = $1`

	var row productRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: Product with ID %d not found", id)
			return nil, &domain.NotFoundError{Resource: "product", ID: id}
		}
		r.log.Errorf("Repository: Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}

	product := row.toDomain()
	r.log.Debugf("Repository: Product retrieved successfully with ID: %d", id)
	return &product, nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query, args, err := sqlx.Named(`
        UPDATE products SET
            category_id = :category_id,
            sku = :sku,
            name = :name,
            description = :description,
            has_sizes = :has_sizes,
            price = :price,
            rating = :rating,
            image_url = :image_url,
            image = :image
        WHERE id = :id`, product)
	if err != nil {
		return nil, fmt.Errorf("could not bind product update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		if classified := classifyProductError(err); classified != nil {
			r.log.Warnf("Repository: Rejected update for product ID %d: %v", product.ID, classified)
			return nil, classified
		}
		r.log.Errorf("Repository: Failed to update product ID %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after update for ID %d: %v", product.ID, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Product with ID %d not found for update (0 rows affected)", product.ID)
		return nil, &domain.NotFoundError{Resource: "product", ID: product.ID}
	}

	r.log.Infof("Repository: Product ID %d updated. Fetching updated product.", product.ID)
	return r.GetProductByID(ctx, product.ID)
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id int) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Repository: Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Repository: Attempted to delete non-existent product ID %d", id)
		return &domain.NotFoundError{Resource: "product", ID: id}
	}
	r.log.Infof("Repository: Product deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context, q domain.ProductQuery) ([]domain.Product, error) {
	query, args := buildListQuery(q)
	r.log.Debugf("Repository: Executing product listing query: %s with args: %v", query, args)

	rows := []productRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		if classified := classifyProductError(err); classified != nil {
			r.log.Warnf("Repository: Product listing rejected: %v", classified)
			return nil, classified
		}
		r.log.Errorf("Repository: Failed to list products: %v", err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toDomain())
	}
	r.log.Infof("Repository: Retrieved %d products", len(products))
	return products, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func buildListQuery(q domain.ProductQuery) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if q.CategoryNames != nil {
		args = append(args, pq.Array(q.CategoryNames))
		conditions = append(conditions, fmt.Sprintf("c.name = ANY($%d)", len(args)))
	}
	if q.Search != nil {
		args = append(args, "%"+likeEscaper.Replace(*q.Search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(`(p.name ILIKE $%d ESCAPE '\' OR p.description ILIKE $%d ESCAPE '\')`, n, n))
	}

	query := `SELECT` + productColumns + productFrom
	if len(conditions) > 0 {
		query += "\n        WHERE " + strings.Join(conditions, " AND ")
	}
	if q.Sort != nil {
		query += "\n        ORDER BY " + orderExpression(*q.Sort)
	}
	return query, args
}

// orderExpression renders a sort field. Unrecognised fields are quoted and
// handed to Postgres, which rejects columns that do not exist.
func orderExpression(s domain.SortOrder) string {
	var expr string
	switch {
	case s.Field == domain.SortFieldName && s.CaseInsensitive:
		expr = "LOWER(p.name)"
	case strings.HasPrefix(s.Field, "category."):
		expr = "c." + pq.QuoteIdentifier(strings.TrimPrefix(s.Field, "category."))
	default:
		expr = "p." + pq.QuoteIdentifier(s.Field)
	}
	if s.Descending {
		return expr + " DESC"
	}
	return expr + " ASC"
}

// classifyProductError turns constraint failures into validation errors.
// It returns nil for anything that is not the caller's fault.
func classifyProductError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23503":
		verr := domain.NewValidationError("invalid product data")
		verr.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		return verr
	case "23514", "22003":
		return domain.NewValidationError("product data constraint violation: " + pqErr.Message)
	case "42703":
		return domain.NewValidationError("cannot order products: " + pqErr.Message)
	}
	return nil
}
