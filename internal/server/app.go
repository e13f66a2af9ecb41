// Package server runs the fixture backend: the Gin REST API and the gRPC
// health endpoint, both validating tokens against the shared token store.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/gophdash/internal/kv"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/server/auth"
	"github.com/dmitrijs2005/gophdash/internal/server/config"
	"github.com/dmitrijs2005/gophdash/internal/server/rest"
	"github.com/dmitrijs2005/gophdash/internal/tokenstore"

	gs "github.com/dmitrijs2005/gophdash/internal/server/grpc"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	store  *kv.Store
	http   *http.Server
	grpc   *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	store, err := kv.Open(ctx, c.KV())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	tokens := tokenstore.New(store, tokenstore.WithLogger(logger))
	validator := auth.NewValidator(tokens, []byte(c.TokenSecret), c.VerifySignatures)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := rest.NewRouter(rest.Dependencies{
		Validator:   validator,
		Logger:      logger,
		Registry:    registry,
		MetricsPath: c.MetricsPath,
	})

	return &App{
		config: c,
		logger: logger,
		store:  store,
		http:   &http.Server{Addr: c.HTTPAddr, Handler: router, ReadHeaderTimeout: 10 * time.Second},
		grpc:   gs.NewGRPCServer(c.GRPCAddr, logger, validator),
	}, nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.http.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
	if err := app.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpc.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server error", "error", err)
		cancelFunc()
	}
}

// Run serves both endpoints until ctx is cancelled or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.store.Close(); err != nil {
		app.logger.Error(context.Background(), "store close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
