package pipeline

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/gophdash/internal/common"
)

func withCredentials(ctx context.Context, token, requestID string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}

	authKey := strings.ToLower(common.AuthorizationHeaderName)
	md.Delete(authKey)
	if token != "" {
		md.Set(authKey, common.BearerPrefix+token)
	}
	md.Set(strings.ToLower(common.CorrelationHeaderName), requestID)

	return metadata.NewOutgoingContext(ctx, md)
}

// UnaryClientInterceptor applies the pipeline rules to unary gRPC calls,
// treating codes.Unauthenticated as the 401 trigger.
func (t *Transport) UnaryClientInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		err := invoker(withCredentials(ctx, t.currentToken(ctx), t.newID()), method, req, reply, cc, opts...)
		if status.Code(err) != codes.Unauthenticated || IsRetried(ctx) {
			return err
		}

		token, ok := t.renew(ctx)
		if !ok {
			t.teardown(ctx, "renewal failed")
			return err
		}

		t.count(func(m *Metrics) { m.retries.Inc() })

		// Any failed resend ends the session; the caller sees the original
		// rejection.
		retryErr := invoker(withCredentials(MarkRetried(ctx), token, t.newID()), method, req, reply, cc, opts...)
		if retryErr != nil {
			t.logger.Warn(ctx, "resend failed", "method", method, "code", status.Code(retryErr).String())
			t.teardown(ctx, "resend failed")
			return err
		}
		return nil
	}
}
