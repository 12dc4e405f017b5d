package migration

import (
	"context"

	"github.com/jackc/pgconn"
	"go.uber.org/zap"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, db Execer, log *zap.Logger) error
}

// Migrations lists the snapshot schema steps in the order they run.
func Migrations() []Migration {
	return []Migration{
		{Name: "create_resume_snapshots", Up: createResumeSnapshots},
		{Name: "add_version_to_resume_snapshots", Up: addVersionToResumeSnapshots},
	}
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, db Execer, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("starting database migrations")

	for _, m := range Migrations() {
		if err := m.Up(ctx, db, log); err != nil {
			log.Error("migration failed", zap.String("name", m.Name), zap.Error(err))
			return err
		}
		log.Info("migration completed", zap.String("name", m.Name))
	}

	log.Info("all migrations completed successfully")
	return nil
}

func createResumeSnapshots(ctx context.Context, db Execer, _ *zap.Logger) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS resume_snapshots (
			key        TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

// addVersionToResumeSnapshots adds the write counter bumped on every upsert.
func addVersionToResumeSnapshots(ctx context.Context, db Execer, log *zap.Logger) error {
	query := `
		ALTER TABLE resume_snapshots
		ADD COLUMN IF NOT EXISTS version BIGINT NOT NULL DEFAULT 1;
	`
	if _, err := db.Exec(ctx, query); err != nil {
		// the column may already exist on older servers without IF NOT EXISTS
		log.Warn("error adding version column (may already exist)", zap.Error(err))
		return nil
	}
	return nil
}
