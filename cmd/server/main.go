package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpadapter "resume-studio/internal/adapter/http"
	"resume-studio/internal/app"
	"resume-studio/internal/config"
	"resume-studio/internal/logger"
)

func main() {
	configPath := flag.String("config", "", "config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}

	h := httpadapter.NewHandler(a.Session, a.Exporter, log.Named("http"))
	srv := httpadapter.NewApp(h, cfg.HTTP.Token)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.HTTP.Port), zap.String("store", cfg.Store.Driver))
		errCh <- srv.Listen(":" + cfg.HTTP.Port)
	}()

	select {
	case err = <-errCh:
		log.Error("server failed", zap.Error(err))
	case <-ctx.Done():
		log.Info("shutting down")
		if serr := srv.ShutdownWithTimeout(10 * time.Second); serr != nil {
			log.Warn("shutdown failed", zap.Error(serr))
		}
	}

	if cerr := a.Close(context.Background()); cerr != nil {
		log.Warn("final save failed", zap.Error(cerr))
	}
	return err
}
