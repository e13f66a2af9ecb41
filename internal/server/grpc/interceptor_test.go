package grpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
	"github.com/dmitrijs2005/gophdash/internal/server/auth"
	"github.com/dmitrijs2005/gophdash/internal/tokenstore"
)

var regular = models.User{ID: "2", Email: "user@example.com", Role: models.RoleUser}

func newTestServer(t *testing.T, now *time.Time) (*GRPCServer, *tokenstore.Store) {
	t.Helper()
	store := tokenstore.New(kv.NewMemoryRepository(), tokenstore.WithClock(func() time.Time { return *now }))
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), auth.NewValidator(store, nil, false)), store
}

func withBearer(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

var info = &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

func TestInterceptor_MissingToken(t *testing.T) {
	now := time.Now()
	s, _ := newTestServer(t, &now)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())
}

func TestInterceptor_InvalidAndExpired(t *testing.T) {
	now := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	s, store := newTestServer(t, &now)
	tok, err := store.Issue(context.Background(), regular, time.Minute)
	require.NoError(t, err)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err = s.accessTokenInterceptor(withBearer("forged"), nil, info, h)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrInvalidToken.Error(), status.Convert(err).Message())

	now = now.Add(time.Hour)
	_, err = s.accessTokenInterceptor(withBearer(tok), nil, info, h)
	require.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())
}

func TestInterceptor_ValidToken_SetsMetadata(t *testing.T) {
	now := time.Now()
	s, store := newTestServer(t, &now)
	tok, err := store.Issue(context.Background(), regular, time.Hour)
	require.NoError(t, err)

	var got *models.TokenMetadata
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		got, _ = auth.FromContext(ctx)
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(withBearer(tok), nil, info, h)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.UserID)
}
