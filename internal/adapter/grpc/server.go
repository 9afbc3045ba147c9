package grpc

import (
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/adapter/grpc/middleware"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the name reported by the health service.
const ServiceName = "marketplace.ListingService"

// NewGRPCServer builds the internal gRPC server carrying health checks and reflection.
// The health status of ServiceName starts as SERVING.
func NewGRPCServer(appLogger *logger.Logger) (*grpc.Server, *health.Server) {
	server := grpc.NewServer(
		middleware.TracingOption(),
		grpc.ChainUnaryInterceptor(middleware.LoggingInterceptor(appLogger.Named("gRPC"))),
	)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(server, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	reflection.Register(server)

	appLogger.Info("gRPC server configured with health, reflection, tracing and logging")
	return server, healthSrv
}
