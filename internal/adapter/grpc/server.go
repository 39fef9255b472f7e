package grpc

import (
	"context"
	"net"
	"time"

	"github.com/Abdurahmanit/wanderlust/internal/adapter/grpc/middleware"
	"github.com/Abdurahmanit/wanderlust/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the gRPC health service for orchestrators.
type Server struct {
	grpcServer   *grpc.Server
	healthServer *health.Server
	serviceName  string
	logger       *logger.Logger
}

// NewServer builds a gRPC server with tracing, logging, reflection and the
// health service registered under serviceName.
func NewServer(serviceName string, appLogger *logger.Logger) *Server {
	log := appLogger.Named("GRPCServer")

	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(middleware.LoggingInterceptor(log)),
	)

	reflection.Register(server)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	log.Info("gRPC server configured", zap.String("service", serviceName))

	return &Server{
		grpcServer:   server,
		healthServer: healthServer,
		serviceName:  serviceName,
		logger:       log,
	}
}

// Serve blocks serving on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC server listening", zap.String("address", lis.Addr().String()))
	return s.grpcServer.Serve(lis)
}

// SetServing flips the service and overall status together.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus(s.serviceName, status)
	s.healthServer.SetServingStatus("", status)
}

// WatchDependency pings dep every interval and mirrors the result into the
// health status until ctx is done.
func (s *Server) WatchDependency(ctx context.Context, dep Pinger, interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		err := dep.Ping(pingCtx)
		if err != nil {
			s.logger.Warn("Dependency check failed, reporting NOT_SERVING", zap.Error(err))
		}
		s.SetServing(err == nil)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// GracefulStop marks the service NOT_SERVING and drains in-flight calls.
func (s *Server) GracefulStop() {
	s.healthServer.Shutdown()
	s.grpcServer.GracefulStop()
}
