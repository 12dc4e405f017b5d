package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	stmts []string
	fail  map[int]error
}

func (r *recordingExec) Exec(_ context.Context, sql string, _ ...interface{}) (pgconn.CommandTag, error) {
	i := len(r.stmts)
	r.stmts = append(r.stmts, sql)
	if err := r.fail[i]; err != nil {
		return nil, err
	}
	return pgconn.CommandTag("OK"), nil
}

func TestRunMigrations_InOrder(t *testing.T) {
	db := &recordingExec{}
	require.NoError(t, RunMigrations(context.Background(), db, nil))
	require.Len(t, db.stmts, 2)
	assert.Contains(t, db.stmts[0], "CREATE TABLE IF NOT EXISTS resume_snapshots")
	assert.Contains(t, db.stmts[1], "ADD COLUMN IF NOT EXISTS version")
}

func TestRunMigrations_CreateFailureStops(t *testing.T) {
	boom := errors.New("permission denied")
	db := &recordingExec{fail: map[int]error{0: boom}}
	err := RunMigrations(context.Background(), db, nil)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, db.stmts, 1)
}

func TestRunMigrations_AlterFailureIsTolerated(t *testing.T) {
	db := &recordingExec{fail: map[int]error{1: errors.New("syntax error")}}
	assert.NoError(t, RunMigrations(context.Background(), db, nil))
}
