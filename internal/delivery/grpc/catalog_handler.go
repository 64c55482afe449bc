package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"catalog_service/internal/domain"
	"catalog_service/internal/usecase"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "catalog.v1.CatalogService"

// CatalogServer is the read-only catalog API. Responses are the same
// context mappings the HTTP API returns, carried as google.protobuf.Struct.
type CatalogServer interface {
	ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error)
	ListCategories(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
}

type CatalogHandler struct {
	productUseCase  usecase.ProductUseCase
	categoryUseCase usecase.CategoryUseCase
	log             *logrus.Logger
}

func NewCatalogHandler(puc usecase.ProductUseCase, cuc usecase.CategoryUseCase, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{
		productUseCase:  puc,
		categoryUseCase: cuc,
		log:             logger,
	}
}

func (h *CatalogHandler) ListProducts(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	params := map[string]string{}
	for key, value := range req.GetFields() {
		s, ok := value.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "parameter %q must be a string", key)
		}
		params[key] = s.StringValue
	}
	h.log.Infof("gRPC Handler: Received ListProducts request: %v", params)

	listing, err := h.productUseCase.ListProducts(ctx, params)
	if err != nil {
		h.log.Warnf("gRPC Handler: ListProducts use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}

	h.log.Infof("gRPC Handler: Listed %d products", len(listing.Products))
	return toStruct(listing)
}

func (h *CatalogHandler) GetProduct(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	id := int(req.GetValue())
	h.log.Infof("gRPC Handler: Received GetProduct request: ID=%d", id)
	if id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "Invalid product ID")
	}

	product, err := h.productUseCase.GetProductByID(ctx, id)
	if err != nil {
		h.log.Warnf("gRPC Handler: GetProduct use case error for ID %d: %v", id, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}

	h.log.Infof("gRPC Handler: Product retrieved successfully: ID=%d", product.ID)
	return toStruct(map[string]interface{}{"product": product})
}

func (h *CatalogHandler) ListCategories(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	h.log.Info("gRPC Handler: Received ListCategories request")

	categories, err := h.categoryUseCase.ListCategories(ctx)
	if err != nil {
		h.log.Errorf("gRPC Handler: ListCategories use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return toStruct(map[string]interface{}{"categories": categories})
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "could not encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "could not encode response: %v", err)
	}
	return out, nil
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	var (
		validationErr *domain.ValidationError
		authErr       *domain.AuthorizationError
		notFoundErr   *domain.NotFoundError
	)
	switch {
	case errors.As(err, &notFoundErr):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &authErr):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "Internal server error")
	}
}

// RegisterCatalogServer attaches srv to s.
func RegisterCatalogServer(s gogrpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}

var catalogServiceDesc = gogrpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []gogrpc.MethodDesc{
		{MethodName: "ListProducts", Handler: listProductsHandler},
		{MethodName: "GetProduct", Handler: getProductHandler},
		{MethodName: "ListCategories", Handler: listCategoriesHandler},
	},
	Streams:  []gogrpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func fullMethod(method string) string { return fmt.Sprintf("/%s/%s", serviceName, method) }

func listProductsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor gogrpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListProducts(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListProducts")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).ListProducts(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getProductHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor gogrpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetProduct(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("GetProduct")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).GetProduct(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func listCategoriesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor gogrpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).ListCategories(ctx, in)
	}
	info := &gogrpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod("ListCategories")}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CatalogServer).ListCategories(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// CatalogClient calls a remote CatalogServer.
type CatalogClient struct {
	cc gogrpc.ClientConnInterface
}

func NewCatalogClient(cc gogrpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) ListProducts(ctx context.Context, params map[string]string, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	fields := make(map[string]interface{}, len(params))
	for k, v := range params {
		fields[k] = v
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListProducts"), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) GetProduct(ctx context.Context, id int64, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetProduct"), wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) ListCategories(ctx context.Context, opts ...gogrpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("ListCategories"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
