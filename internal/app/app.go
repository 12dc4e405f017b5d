// Package app wires configuration into a running session, store and
// exporter. Both binaries start from New.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resume-studio/internal/adapter/repository"
	"resume-studio/internal/config"
	"resume-studio/internal/usecase"
	"resume-studio/pkg/infrastructure"
)

type App struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    repository.SnapshotStore
	Session  *usecase.Session
	Exporter *usecase.Exporter
}

// New opens the configured store, loads the session and builds the
// exporter. A store that cannot be reached is logged and replaced by an
// in-memory one so editing still works.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, err := repository.Open(ctx, repository.Config{
		Driver:      cfg.Store.Driver,
		SQLitePath:  cfg.Store.SQLitePath,
		PostgresDSN: cfg.Store.PostgresDSN,
		Redis: infrastructure.RedisConfig{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		},
		RESTURL:   cfg.Store.RESTURL,
		RESTToken: cfg.Store.RESTToken,
		Logger:    log.Named("store"),
	})
	if err != nil {
		if errors.Is(err, repository.ErrUnknownDriver) {
			return nil, err
		}
		log.Warn("store unavailable, changes will not persist", zap.String("driver", cfg.Store.Driver), zap.Error(err))
		store = repository.NewMemoryStore()
	}

	sink, err := newSink(ctx, cfg, log.Named("sink"))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	session := usecase.NewSession(store,
		usecase.WithLogger(log.Named("session")),
		usecase.WithDebounce(cfg.Session.Debounce),
	)
	session.Start(ctx)

	renderer := infrastructure.NewChromedpRenderer(infrastructure.ChromedpConfig{
		ExecPath: cfg.Chrome.Path,
		Timeout:  cfg.Chrome.Timeout,
		Logger:   log.Named("chromedp"),
	})
	exporter := usecase.NewExporter(renderer,
		usecase.WithExportLogger(log.Named("export")),
		usecase.WithSink(sink),
	)

	return &App{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Session:  session,
		Exporter: exporter,
	}, nil
}

// Close saves any pending change and releases the store.
func (a *App) Close(ctx context.Context) error {
	flushErr := a.Session.Flush(ctx)
	a.Session.Close()
	closeErr := a.Store.Close()
	_ = a.Log.Sync()
	return errors.Join(flushErr, closeErr)
}

func newSink(ctx context.Context, cfg *config.Config, log *zap.Logger) (usecase.Sink, error) {
	switch strings.ToLower(cfg.Export.Sink) {
	case "none":
		return nil, nil
	case "s3":
		s3cfg := cfg.Export.S3
		sink, err := infrastructure.NewS3Sink(ctx, infrastructure.S3Config{
			Bucket:    s3cfg.Bucket,
			Region:    s3cfg.Region,
			Endpoint:  s3cfg.Endpoint,
			AccessKey: s3cfg.AccessKey,
			SecretKey: s3cfg.SecretKey,
			PathStyle: s3cfg.PathStyle,
			Prefix:    s3cfg.Prefix,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		return sink, nil
	default:
		return infrastructure.NewDirSink(cfg.Export.Dir), nil
	}
}
