package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"resume-studio/internal/model"
)

// PgxQuerier is the part of *pgxpool.Pool the store uses.
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PostgresStore keeps the snapshot as JSONB in resume_snapshots.
type PostgresStore struct {
	db    PgxQuerier
	close func()
}

// NewPostgresStore wraps db; closeFn, when set, runs on Close.
func NewPostgresStore(db PgxQuerier, closeFn func()) *PostgresStore {
	return &PostgresStore{db: db, close: closeFn}
}

func (s *PostgresStore) Load(ctx context.Context) (*model.Resume, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM resume_snapshots WHERE key = $1`, SnapshotKey).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decode(data)
}

func (s *PostgresStore) Save(ctx context.Context, r model.Resume) error {
	b, err := encode(r)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `INSERT INTO resume_snapshots (key, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at,
			version = resume_snapshots.version + 1`,
		SnapshotKey, b)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM resume_snapshots WHERE key = $1`, SnapshotKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}
