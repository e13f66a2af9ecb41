// Package pipeline decorates outbound calls with the session's bearer token
// and a correlation id, and recovers once from an expired access token.
//
// On a 401 the pipeline renews the access token from the stored refresh
// token, resends the request a single time and, if that does not help,
// clears the session and hands the caller the original response. A request
// is resent at most once; the mark travels on the request context.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrijs2005/gophdash/internal/common"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
)

// TokenSource is the in-memory session view.
type TokenSource interface {
	AccessToken() string
	SetAccessToken(token string)
	ClearAuth()
}

// TokenStore is the persistent side of the session.
type TokenStore interface {
	AccessToken(ctx context.Context) string
	RefreshToken(ctx context.Context) string
	PersistPair(ctx context.Context, pair models.TokenPair) error
}

type Renewer interface {
	Renew(ctx context.Context, refreshToken string) (string, bool)
}

var errRenewalFailed = errors.New("renewal failed")

type retriedKey struct{}

// MarkRetried flags ctx so the pipeline will not renew-and-resend again.
func MarkRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

func IsRetried(ctx context.Context) bool {
	v, _ := ctx.Value(retriedKey{}).(bool)
	return v
}

type Transport struct {
	base    http.RoundTripper
	state   TokenSource
	store   TokenStore
	renewer Renewer
	logger  logging.Logger
	metrics *Metrics
	group   *singleflight.Group
	newID   func() string
}

type Option func(*Transport)

func WithBase(rt http.RoundTripper) Option {
	return func(t *Transport) { t.base = rt }
}

func WithLogger(l logging.Logger) Option {
	return func(t *Transport) { t.logger = l.With("module", "pipeline") }
}

func WithMetrics(m *Metrics) Option {
	return func(t *Transport) { t.metrics = m }
}

// WithoutSingleFlight lets concurrent 401s renew independently, each
// minting its own access token.
func WithoutSingleFlight() Option {
	return func(t *Transport) { t.group = nil }
}

// WithRequestID replaces the correlation id generator.
func WithRequestID(fn func() string) Option {
	return func(t *Transport) { t.newID = fn }
}

func NewTransport(state TokenSource, store TokenStore, renewer Renewer, opts ...Option) *Transport {
	t := &Transport{
		base:    http.DefaultTransport,
		state:   state,
		store:   store,
		renewer: renewer,
		logger:  logging.Nop(),
		group:   &singleflight.Group{},
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewClient wraps t in an http.Client bounded by timeout.
func NewClient(t *Transport, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = common.RequestTimeout
	}
	return &http.Client{Transport: t, Timeout: timeout}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.roundTrip(req, "")
}

// roundTrip sends req with token, or with the current session token when
// token is empty.
func (t *Transport) roundTrip(req *http.Request, token string) (*http.Response, error) {
	ctx := req.Context()

	out := req.Clone(ctx)
	if err := rewindable(out); err != nil {
		return nil, err
	}

	if token == "" {
		token = t.currentToken(ctx)
	}
	if token != "" {
		out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	out.Header.Set(common.CorrelationHeaderName, t.newID())

	resp, err := t.send(out)
	if err != nil {
		t.logger.Warn(ctx, "request failed", "method", out.Method, "url", out.URL.String(), "error", err)
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || IsRetried(ctx) {
		return resp, nil
	}

	return t.handleUnauthorized(out, resp)
}

// handleUnauthorized deals with the first 401 of a request.
func (t *Transport) handleUnauthorized(req *http.Request, original *http.Response) (*http.Response, error) {
	ctx := req.Context()

	if err := buffer(original); err != nil {
		return nil, err
	}

	token, ok := t.renew(ctx)
	if !ok {
		t.teardown(ctx, "renewal failed")
		return original, nil
	}

	retry := req.Clone(MarkRetried(ctx))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			t.teardown(ctx, "request body cannot be replayed")
			return original, nil
		}
		retry.Body = body
	}

	t.count(func(m *Metrics) { m.retries.Inc() })

	resp, err := t.roundTrip(retry, token)
	if err != nil {
		t.teardown(ctx, "resend failed")
		return original, nil
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()
		t.teardown(ctx, "resend rejected")
		return original, nil
	}

	_ = original.Body.Close()
	return resp, nil
}

// renew obtains a new access token for the stored refresh token, persists
// the pair and pushes the token into the session view.
func (t *Transport) renew(ctx context.Context) (string, bool) {
	refresh := t.store.RefreshToken(ctx)
	if refresh == "" {
		t.logger.Info(ctx, "no refresh token stored")
		t.count(func(m *Metrics) { m.renewals.WithLabelValues("failure").Inc() })
		return "", false
	}

	do := func(ctx context.Context) (string, error) {
		token, ok := t.renewer.Renew(ctx, refresh)
		if !ok {
			return "", errRenewalFailed
		}
		if err := t.store.PersistPair(ctx, models.TokenPair{AccessToken: token, RefreshToken: refresh}); err != nil {
			return "", fmt.Errorf("persist renewed pair: %w", err)
		}
		t.state.SetAccessToken(token)
		return token, nil
	}

	var (
		token string
		err   error
	)
	if t.group == nil {
		token, err = do(ctx)
	} else {
		// The shared renewal outlives the caller that started it, since
		// other callers may be waiting on its result.
		shared := context.WithoutCancel(ctx)
		var v any
		v, err, _ = t.group.Do(refresh, func() (any, error) { return do(shared) })
		token, _ = v.(string)
	}

	if err != nil {
		t.logger.Warn(ctx, "access token renewal failed", "error", err)
		t.count(func(m *Metrics) { m.renewals.WithLabelValues("failure").Inc() })
		return "", false
	}

	t.count(func(m *Metrics) { m.renewals.WithLabelValues("success").Inc() })
	return token, true
}

func (t *Transport) teardown(ctx context.Context, reason string) {
	t.logger.Warn(ctx, "clearing session", "reason", reason)
	t.count(func(m *Metrics) { m.teardowns.Inc() })
	t.state.ClearAuth()
}

func (t *Transport) currentToken(ctx context.Context) string {
	if token := t.state.AccessToken(); token != "" {
		return token
	}
	return t.store.AccessToken(ctx)
}

func (t *Transport) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)

	t.count(func(m *Metrics) {
		m.duration.Observe(time.Since(start).Seconds())
		code := "error"
		if err == nil {
			code = strconv.Itoa(resp.StatusCode)
		}
		m.requests.WithLabelValues(code).Inc()
	})
	return resp, err
}

func (t *Transport) count(fn func(*Metrics)) {
	if t.metrics != nil {
		fn(t.metrics)
	}
}

// rewindable makes sure req's body can be produced again for a resend.
func rewindable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}

	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.Body, _ = req.GetBody()
	return nil
}

// buffer reads resp's body into memory so the connection is released while
// the response is held back during renewal.
func buffer(resp *http.Response) error {
	data, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return nil
}
