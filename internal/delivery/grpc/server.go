package grpc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// NewServer builds a gRPC server exposing the catalog and the standard
// health service.
func NewServer(handler CatalogServer, logger *logrus.Logger) *gogrpc.Server {
	server := gogrpc.NewServer(gogrpc.UnaryInterceptor(loggingInterceptor(logger)))
	RegisterCatalogServer(server, handler)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
	return server
}

func loggingInterceptor(logger *logrus.Logger) gogrpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := logger.WithFields(logrus.Fields{
			"method":     info.FullMethod,
			"code":       status.Code(err).String(),
			"latency_ms": time.Since(start).Milliseconds(),
		})
		if err != nil {
			entry.Warn("gRPC call failed")
		} else {
			entry.Info("gRPC call completed")
		}
		return resp, err
	}
}
