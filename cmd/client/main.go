package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gophdash/internal/buildinfo"
	"github.com/dmitrijs2005/gophdash/internal/client/cli"
	"github.com/dmitrijs2005/gophdash/internal/client/config"
	"github.com/dmitrijs2005/gophdash/internal/logging"
)

func main() {

	_ = godotenv.Load()

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	if err := logging.InitSentry(cfg.SentryDSN, "client"); err != nil {
		log.Printf("sentry init failed: %v", err)
	}
	defer logging.FlushSentry()

	logger := logging.WithSentry(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr))

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
