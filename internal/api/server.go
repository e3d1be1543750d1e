package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/siliconsage/build-engine/internal/config"
)

// Server wraps the gRPC server implementation and lifecycle helpers.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	listener   net.Listener
}

// NewServer constructs a gRPC server bound to the configured address.
func NewServer(cfg config.ServerConfig, logger *slog.Logger, service BuildAnalysisServer, opts ...grpc.ServerOption) (*Server, error) {
	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", cfg.GRPCAddress, err)
	}
	return newServer(cfg, lis, logger, service, opts...), nil
}

func newServer(cfg config.ServerConfig, lis net.Listener, logger *slog.Logger, service BuildAnalysisServer, opts ...grpc.ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	grpc_prometheus.EnableHandlingTimeHistogram()
	serverOpts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(grpc_prometheus.UnaryServerInterceptor, unaryLogger(logger)),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	}
	if cfg.MaxBodyBytes > 0 {
		serverOpts = append(serverOpts, grpc.MaxRecvMsgSize(int(cfg.MaxBodyBytes)))
	}
	serverOpts = append(serverOpts, opts...)
	grpcServer := grpc.NewServer(serverOpts...)

	RegisterBuildAnalysisServer(grpcServer, service)
	grpc_prometheus.Register(grpcServer)

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(BuildAnalysisServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	return &Server{
		grpcServer: grpcServer,
		health:     healthSrv,
		listener:   lis,
	}
}

// Start serves incoming gRPC requests until Stop/Shutdown is invoked.
func (s *Server) Start() error {
	if s.grpcServer == nil || s.listener == nil {
		return fmt.Errorf("server not initialised")
	}
	return s.grpcServer.Serve(s.listener)
}

// Shutdown marks the server NOT_SERVING and attempts a graceful stop, falling back to Stop after timeout.
func (s *Server) Shutdown(ctx context.Context) {
	if s.grpcServer == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.Stop()
	case <-stopped:
	}
}

// Address exposes the bound listener address (useful for tests).
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// unaryLogger logs every call at debug level and turns handler panics into codes.Internal.
func unaryLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc handler panicked", slog.String("method", info.FullMethod), slog.Any("panic", r))
				resp, err = nil, status.Error(codes.Internal, "analysis failed")
			}
			logger.Debug("grpc request",
				slog.String("method", info.FullMethod),
				slog.String("code", status.Code(err).String()),
				slog.Duration("duration", time.Since(start)))
		}()
		return handler(ctx, req)
	}
}
