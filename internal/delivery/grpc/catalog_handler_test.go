package grpc

import (
	"context"
	"io"
	"net"
	"testing"

	"catalog_service/internal/domain"
	"catalog_service/internal/media"
	"catalog_service/internal/repository"
	"catalog_service/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startCatalogServer(t *testing.T) *gogrpc.ClientConn {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	catalog := repository.NewMemoryCatalog()
	products := repository.NewMemoryProductRepository(catalog, logger)
	categories := repository.NewMemoryCategoryRepository(catalog, logger)

	ctx := context.Background()
	_, err := categories.CreateCategory(ctx, &domain.Category{Name: "kitchen"})
	require.NoError(t, err)
	kitchen := 1
	for _, p := range []domain.Product{
		{CategoryID: &kitchen, Name: "Whisk", Description: "Balloon whisk", Price: decimal.RequireFromString("4.00")},
		{Name: "Hose", Description: "Garden hose", Price: decimal.RequireFromString("15.00")},
	} {
		p := p
		_, err := products.CreateProduct(ctx, &p)
		require.NoError(t, err)
	}

	images, err := media.NewLocalStorage(t.TempDir(), "/media/", logger)
	require.NoError(t, err)
	handler := NewCatalogHandler(
		usecase.NewProductUseCase(products, categories, images, 1<<20, logger),
		usecase.NewCategoryUseCase(categories, logger),
		logger,
	)

	listener := bufconn.Listen(1 << 20)
	server := NewServer(handler, logger)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	conn, err := gogrpc.NewClient("passthrough:///bufnet",
		gogrpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestCatalogListProducts(t *testing.T) {
	client := NewCatalogClient(startCatalogServer(t))
	ctx := context.Background()

	out, err := client.ListProducts(ctx, map[string]string{"sort": "price", "direction": "desc"})
	require.NoError(t, err)
	listing := out.AsMap()
	assert.Equal(t, "price_desc", listing["current_sorting"])
	products, ok := listing["products"].([]interface{})
	require.True(t, ok)
	require.Len(t, products, 2)
	assert.Equal(t, "Hose", products[0].(map[string]interface{})["name"])

	out, err = client.ListProducts(ctx, map[string]string{"category": "kitchen"})
	require.NoError(t, err)
	assert.Len(t, out.AsMap()["products"], 1)
}

func TestCatalogListProductsEmptySearch(t *testing.T) {
	client := NewCatalogClient(startCatalogServer(t))

	_, err := client.ListProducts(context.Background(), map[string]string{"q": ""})
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Equal(t, domain.MsgNoSearchCriteria, status.Convert(err).Message())
}

func TestCatalogGetProduct(t *testing.T) {
	client := NewCatalogClient(startCatalogServer(t))
	ctx := context.Background()

	out, err := client.GetProduct(ctx, 1)
	require.NoError(t, err)
	product := out.AsMap()["product"].(map[string]interface{})
	assert.Equal(t, "Whisk", product["name"])
	assert.Equal(t, "kitchen", product["category"].(map[string]interface{})["name"])

	_, err = client.GetProduct(ctx, 42)
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetProduct(ctx, 0)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestCatalogListCategories(t *testing.T) {
	client := NewCatalogClient(startCatalogServer(t))

	out, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	categories := out.AsMap()["categories"].([]interface{})
	require.Len(t, categories, 1)
	assert.Equal(t, "kitchen", categories[0].(map[string]interface{})["name"])
}

func TestCatalogHealth(t *testing.T) {
	conn := startCatalogServer(t)

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: serviceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestMapDomainErrorToGrpcStatus(t *testing.T) {
	assert.Nil(t, mapDomainErrorToGrpcStatus(nil))
	assert.Equal(t, codes.NotFound, status.Code(mapDomainErrorToGrpcStatus(&domain.NotFoundError{Resource: "product", ID: 1})))
	assert.Equal(t, codes.PermissionDenied, status.Code(mapDomainErrorToGrpcStatus(&domain.AuthorizationError{Message: domain.MsgOwnersOnly})))
	assert.Equal(t, codes.InvalidArgument, status.Code(mapDomainErrorToGrpcStatus(domain.NewValidationError("bad"))))
	assert.Equal(t, codes.Internal, status.Code(mapDomainErrorToGrpcStatus(io.ErrUnexpectedEOF)))
}
