package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthClient queries the backend's gRPC health service.
type HealthClient struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// NewHealthClient connects to addr. interceptor, when non-nil, is installed
// as the unary client interceptor.
func NewHealthClient(addr string, interceptor grpc.UnaryClientInterceptor, opts ...grpc.DialOption) (*HealthClient, error) {
	dialOpts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if interceptor != nil {
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(interceptor))
	}
	dialOpts = append(dialOpts, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &HealthClient{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

// Check returns the serving status of service; "" asks about the server as a
// whole.
func (h *HealthClient) Check(ctx context.Context, service string) (string, error) {
	resp, err := h.client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return "", mapError(err)
	}
	return resp.GetStatus().String(), nil
}

func (h *HealthClient) Close() error {
	return h.conn.Close()
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
