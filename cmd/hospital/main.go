package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hospital-portal/internal/apperr"
	"hospital-portal/internal/cli"
	"hospital-portal/internal/config"
	"hospital-portal/internal/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	log := logger.New(cfg.LogLevel, cfg.Env)
	defer log.Sync()

	app, err := cli.New(cfg, log, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup: %v\n", err)
		return 2
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Command().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, apperr.Message(err))
		return 1
	}
	return 0
}
