// Package grpc exposes the fixture backend's gRPC endpoint: the standard
// health service behind a bearer token check.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

// DashboardService is the health service name reported for the dashboard
// API alongside the server-wide "" entry.
const DashboardService = "gophdash.Dashboard"

type TokenValidator interface {
	Validate(ctx context.Context, token string) (*models.TokenMetadata, error)
}

type GRPCServer struct {
	address   string
	validator TokenValidator
	health    *health.Server
	logger    logging.Logger
}

func NewGRPCServer(address string, l logging.Logger, v TokenValidator) *GRPCServer {
	hs := health.NewServer()
	hs.SetServingStatus(DashboardService, healthpb.HealthCheckResponse_SERVING)

	return &GRPCServer{
		address:   address,
		validator: v,
		health:    hs,
		logger:    l.With("module", "grpc_server"),
	}
}

// SetServing flips the reported status of the dashboard service.
func (s *GRPCServer) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(DashboardService, st)
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.streamAccessTokenInterceptor),
	)
	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	return srv.Serve(listen)
}
