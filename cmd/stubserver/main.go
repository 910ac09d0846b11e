package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"hospital-portal/internal/logger"
	"hospital-portal/internal/stubapi"
)

func main() {
	_ = godotenv.Load()
	port := env("HOSPITAL_STUB_PORT", "8181")
	shape := stubapi.ListShape(env("HOSPITAL_STUB_LIST_SHAPE", string(stubapi.ShapeList)))
	log := logger.New(env("HOSPITAL_LOG_LEVEL", "info"), env("HOSPITAL_ENV", "development"))
	defer log.Sync()

	st := stubapi.NewStore()
	if err := stubapi.Seed(st); err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	h := stubapi.New(st, log, stubapi.Options{ListShape: shape})

	httpSrv := &http.Server{
		Addr:              ":" + port,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("stub backend listening", zap.String("port", port), zap.String("list_shape", string(shape)))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http", zap.Error(err))
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpSrv.Shutdown(ctx)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
