package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/gophdash/internal/client/client"
	"github.com/dmitrijs2005/gophdash/internal/client/config"
	"github.com/dmitrijs2005/gophdash/internal/client/directory"
	"github.com/dmitrijs2005/gophdash/internal/client/pipeline"
	"github.com/dmitrijs2005/gophdash/internal/client/session"
	"github.com/dmitrijs2005/gophdash/internal/client/settings"
	"github.com/dmitrijs2005/gophdash/internal/client/state"
	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/models"
	"github.com/dmitrijs2005/gophdash/internal/tokenstore"
)

// SessionService is the part of the session manager the CLI drives.
type SessionService interface {
	state.Authenticator
	State() session.State
	CurrentUser(ctx context.Context) (*models.User, bool)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	SweepExpired(ctx context.Context) (int, error)
}

type SettingsService interface {
	Load(ctx context.Context) models.AppSettings
	Save(ctx context.Context, s models.AppSettings) error
	Reset(ctx context.Context) error
}

type HealthChecker interface {
	Check(ctx context.Context, service string) (string, error)
}

var errNotSignedIn = errors.New("not signed in, use 'login' first")

type App struct {
	sessions SessionService
	state    *state.Container
	settings SettingsService
	api      client.Client
	health   HealthChecker
	logger   logging.Logger

	sweepOnStart bool

	reader  *bufio.Reader
	out     io.Writer
	closers []func() error
}

// NewApp wires storage, the session layer and the API clients from cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	store, err := kv.Open(ctx, cfg.KV())
	if err != nil {
		return nil, fmt.Errorf("error opening %s storage: %w", cfg.StoreBackend, err)
	}

	fixture, err := directory.LoadFixture(cfg.UsersFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	tokens := tokenstore.New(store,
		tokenstore.WithGenerator(tokenstore.NewGenerator(cfg.TokenFormat, []byte(cfg.TokenSecret))),
		tokenstore.WithLogger(logger),
	)
	manager := session.NewManager(tokens, directory.New(store, fixture, logger), logger)
	container := state.New()

	transport := pipeline.NewTransport(container, tokens, manager,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(pipeline.NewMetrics(prometheus.DefaultRegisterer)),
	)

	api, err := client.NewHTTPClient(cfg.APIURL, pipeline.NewClient(transport, cfg.RequestTimeout))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	health, err := client.NewHealthClient(cfg.GRPCAddr, transport.UnaryClientInterceptor())
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	a := newApp(manager, container, settings.NewService(store, logger), api, health, logger, os.Stdin, os.Stdout)
	a.sweepOnStart = cfg.SweepOnStart
	a.closers = append(a.closers, health.Close, store.Close)
	return a, nil
}

func newApp(
	sessions SessionService,
	container *state.Container,
	prefs SettingsService,
	api client.Client,
	health HealthChecker,
	logger logging.Logger,
	in io.Reader,
	out io.Writer,
) *App {
	return &App{
		sessions: sessions,
		state:    container,
		settings: prefs,
		api:      api,
		health:   health,
		logger:   logger.With("module", "cli"),
		reader:   bufio.NewReader(in),
		out:      out,
	}
}

// Run restores the previous session, if any, and blocks in the REPL until
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	unsubscribe := a.state.Subscribe(a.announceTeardown)
	defer unsubscribe()

	if a.sweepOnStart {
		_ = a.Sweep(ctx)
	}

	if err := a.state.RestoreSession(ctx, a.sessions); err != nil {
		a.logger.Debug(ctx, "no session restored", "error", err)
	}

	fmt.Fprintln(a.out, "Dashboard CLI (type 'help' for commands)")
	if snap := a.state.Snapshot(); snap.IsAuthenticated {
		success(a.out, "Welcome back, %s", snap.User.Name)
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) Close() {
	for _, c := range a.closers {
		_ = c()
	}
	a.closers = nil
}

// announceTeardown tells the user when a session ends without them asking,
// which happens when the pipeline gives up on a 401.
func (a *App) announceTeardown(prev, next state.AuthState) {
	if prev.IsAuthenticated && !prev.Loading && !next.IsAuthenticated {
		warn(a.out, "Your session has expired. Please sign in again with 'login'.")
	}
}

func (a *App) isLoggedIn() bool {
	return a.state.Snapshot().IsAuthenticated
}

func (a *App) status() string {
	snap := a.state.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		return ""
	}
	return fmt.Sprintf("(%s)", snap.User.Email)
}

func (a *App) currentUser(ctx context.Context) (*models.User, error) {
	if !a.isLoggedIn() {
		return nil, errNotSignedIn
	}
	user, ok := a.sessions.CurrentUser(ctx)
	if !ok {
		return nil, errNotSignedIn
	}
	return user, nil
}
