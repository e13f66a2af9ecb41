package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/gophdash/internal/buildinfo"
	"github.com/dmitrijs2005/gophdash/internal/logging"
	"github.com/dmitrijs2005/gophdash/internal/server"
	"github.com/dmitrijs2005/gophdash/internal/server/config"
)

func main() {

	_ = godotenv.Load()

	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()

	if err := logging.InitSentry(cfg.SentryDSN, "server"); err != nil {
		log.Printf("sentry init failed: %v", err)
	}
	defer logging.FlushSentry()

	logger := logging.WithSentry(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout))

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
