package repository

import (
	"context"
	"database/sql/driver"
	"io"
	"regexp"
	"testing"

	"catalog_service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productRowColumns = []string{
	"id", "category_id", "sku", "name", "description", "has_sizes",
	"price", "rating", "image_url", "image",
	"cat_id", "cat_name", "cat_friendly_name",
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func mugRow(id int) []driver.Value {
	return []driver.Value{
		id, 1, "SKU-1", "Blue Mug", "Holds coffee", true,
		"12.50", nil, nil, "mug.png",
		1, "kitchen", "Kitchen & Dining",
	}
}

func TestBuildListQuery(t *testing.T) {
	search := "50%_off"
	query, args := buildListQuery(domain.ProductQuery{
		CategoryNames: []string{"kitchen", "garden"},
		Search:        &search,
		Sort:          &domain.SortOrder{Key: "name", Field: domain.SortFieldName, CaseInsensitive: true, Descending: true},
	})

	assert.Contains(t, query, "WHERE c.name = ANY($1) AND (p.name ILIKE $2 ESCAPE '\\' OR p.description ILIKE $2 ESCAPE '\\')")
	assert.Contains(t, query, "ORDER BY LOWER(p.name) DESC")
	require.Len(t, args, 2)
	assert.Equal(t, pq.Array([]string{"kitchen", "garden"}), args[0])
	assert.Equal(t, `%50\%\_off%`, args[1])
}

func TestBuildListQueryWithoutFilters(t *testing.T) {
	query, args := buildListQuery(domain.ProductQuery{})
	assert.NotContains(t, query, "WHERE")
	assert.NotContains(t, query, "ORDER BY")
	assert.Empty(t, args)
}

func TestOrderExpression(t *testing.T) {
	tests := []struct {
		order domain.SortOrder
		want  string
	}{
		{domain.SortOrder{Field: "name", CaseInsensitive: true}, "LOWER(p.name) ASC"},
		{domain.SortOrder{Field: "name"}, `p."name" ASC`},
		{domain.SortOrder{Field: domain.SortFieldCategoryName, Descending: true}, `c."name" DESC`},
		{domain.SortOrder{Field: "price"}, `p."price" ASC`},
		{domain.SortOrder{Field: `x"; DROP TABLE products; --`}, `p."x""; DROP TABLE products; --" ASC`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, orderExpression(tt.order))
	}
}

func TestPostgresGetProductByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(mugRow(3)...))

	product, err := repo.GetProductByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, product.ID)
	assert.Equal(t, "Blue Mug", product.Name)
	assert.True(t, decimal.RequireFromString("12.5").Equal(product.Price))
	assert.Nil(t, product.Rating)
	require.NotNil(t, product.Category)
	assert.Equal(t, "kitchen", product.Category.Name)
	assert.Equal(t, "Kitchen & Dining", product.Category.DisplayName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetProductByIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := repo.GetProductByID(context.Background(), 9)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 9, notFound.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products (category_id, sku, name")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(mugRow(7)...))

	categoryID := 1
	created, err := repo.CreateProduct(context.Background(), &domain.Product{
		CategoryID:  &categoryID,
		Name:        "Blue Mug",
		Description: "Holds coffee",
		Price:       decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateProductUnknownCategory(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO products")).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	categoryID := 42
	_, err := repo.CreateProduct(context.Background(), &domain.Product{
		CategoryID: &categoryID, Name: "Mug", Description: "d", Price: decimal.NewFromInt(1),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "category")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateProductWithFixedID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('products', 'id')")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(12).
		WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(mugRow(12)...))

	created, err := repo.CreateProduct(context.Background(), &domain.Product{
		ID: 12, Name: "Blue Mug", Description: "Holds coffee", Price: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateProductNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.UpdateProduct(context.Background(), &domain.Product{ID: 5, Name: "x", Description: "y"})
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(productRowColumns).AddRow(mugRow(5)...))

	updated, err := repo.UpdateProduct(context.Background(), &domain.Product{ID: 5, Name: "Blue Mug", Description: "Holds coffee"})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDeleteProduct(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products WHERE id = $1")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.DeleteProduct(context.Background(), 3))

	err := repo.DeleteProduct(context.Background(), 3)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListProducts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	search := "mug"
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.name = ANY($1) AND (p.name ILIKE $2")).
		WithArgs(sqlmock.AnyArg(), "%mug%").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow(mugRow(1)...).
			AddRow(2, nil, nil, "Travel Mug", "Lid", nil, "9.00", "4.50", nil, nil, nil, nil, nil))

	products, err := repo.ListProducts(context.Background(), domain.ProductQuery{
		CategoryNames: []string{"kitchen"},
		Search:        &search,
		Sort:          &domain.SortOrder{Key: "price", Field: "price"},
	})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Blue Mug", products[0].Name)
	assert.Nil(t, products[1].Category)
	assert.Nil(t, products[1].CategoryID)
	require.NotNil(t, products[1].Rating)
	assert.True(t, decimal.RequireFromString("4.5").Equal(*products[1].Rating))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListProductsUnknownColumn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresProductRepository(db, discardLogger())

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p."colour" ASC`)).
		WillReturnError(&pq.Error{Code: "42703", Message: `column p.colour does not exist`})

	_, err := repo.ListProducts(context.Background(), domain.ProductQuery{
		Sort: &domain.SortOrder{Key: "colour", Field: "colour"},
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "cannot order products")
	require.NoError(t, mock.ExpectationsWereMet())
}
