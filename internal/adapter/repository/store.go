// Package repository holds the snapshot stores a session persists to. Every
// store keeps exactly one record under SnapshotKey.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"resume-studio/internal/infrastructure/migration"
	"resume-studio/internal/model"
	"resume-studio/pkg/infrastructure"
)

// SnapshotKey is the fixed key every backend stores the record under.
const SnapshotKey = "resume.studio.v1"

var ErrUnknownDriver = errors.New("unknown store driver")

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverREST     = "rest"
)

// SnapshotStore is a session store that owns a connection.
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Resume, error)
	Save(ctx context.Context, r model.Resume) error
	Clear(ctx context.Context) error
	Close() error
}

type Config struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	Redis       infrastructure.RedisConfig
	RESTURL     string
	RESTToken   string
	Logger      *zap.Logger
}

// Open connects the configured backend. Postgres runs its migrations first.
func Open(ctx context.Context, cfg Config) (SnapshotStore, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	log = log.With(zap.String("driver", driver))

	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite, "":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		pool, err := infrastructure.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := migration.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return NewPostgresStore(pool, pool.Close), nil
	case DriverRedis:
		client, err := infrastructure.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, client.Close), nil
	case DriverREST:
		return NewRESTStore(cfg.RESTURL, cfg.RESTToken, nil)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

func encode(r model.Resume) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return b, nil
}

func decode(b []byte) (*model.Resume, error) {
	var r model.Resume
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &r, nil
}
