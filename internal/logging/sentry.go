package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the global Sentry client. An empty dsn leaves Sentry
// disabled and is not an error.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

// FlushSentry waits for buffered events to be delivered.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// SentryLogger forwards every call to the wrapped Logger and additionally
// reports Error calls to Sentry when a client is configured.
type SentryLogger struct {
	Logger
}

// WithSentry decorates l so that errors are also captured by Sentry.
func WithSentry(l Logger) *SentryLogger {
	return &SentryLogger{Logger: l}
}

func (s *SentryLogger) Error(ctx context.Context, msg string, args ...any) {
	s.Logger.Error(ctx, msg, args...)

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	hub.WithScope(func(scope *sentry.Scope) {
		var cause error
		for i := 0; i+1 < len(args); i += 2 {
			key := fmt.Sprint(args[i])
			if err, ok := args[i+1].(error); ok && cause == nil {
				cause = err
			}
			scope.SetExtra(key, args[i+1])
		}
		scope.SetExtra("message", msg)

		if cause != nil {
			hub.CaptureException(fmt.Errorf("%s: %w", msg, cause))
			return
		}
		hub.CaptureMessage(msg)
	})
}

func (s *SentryLogger) With(args ...any) Logger {
	return &SentryLogger{Logger: s.Logger.With(args...)}
}
