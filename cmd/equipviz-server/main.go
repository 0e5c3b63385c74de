package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"equipviz/internal/app"
	"equipviz/internal/config"
	"equipviz/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := logging.NewLogger("equipviz-server")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // best-effort flush

	logger.Info("starting",
		zap.String("addr", cfg.HTTPAddress()),
		zap.Int("max_datasets", cfg.Retention.MaxDatasets),
		zap.String("duplicate_policy", cfg.Upload.Duplicates),
	)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("init failed", zap.Error(err))
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server exited", zap.Error(err))
	}
}
