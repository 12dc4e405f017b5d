package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-studio/internal/model"
)

func sample() model.Resume {
	r := model.Default()
	r.Basics.Name = "Stored Person"
	r.Layout.Breaks.BeforeExperience = model.NewIndexSet(1)
	r.Layout.Breaks.Before = r.Layout.Breaks.Before.Set(model.SectionSkills, true)
	return r
}

// exerciseStore runs the contract every backend shares.
func exerciseStore(t *testing.T, s SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	want := sample()
	require.NoError(t, s.Save(ctx, want))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	next := want.Clone()
	next.Basics.Name = "Second Write"
	require.NoError(t, s.Save(ctx, next))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Second Write", got.Basics.Name)

	require.NoError(t, s.Clear(ctx))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Clear(ctx))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_LoadDoesNotAlias(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sample()))
	a, _ := s.Load(ctx)
	a.Summary[0] = "changed"
	b, _ := s.Load(ctx)
	assert.NotEqual(t, "changed", b.Summary[0])
}

func TestSQLiteStore_InMemory(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "resume.db")
	ctx := context.Background()

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, sample()))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Stored Person", got.Basics.Name)
}

type fakeRow struct {
	data []byte
	err  error
}

func (r fakeRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = append([]byte(nil), r.data...)
	return nil
}

type fakePg struct {
	mu    sync.Mutex
	rows  map[string][]byte
	execs []string
}

func (f *fakePg) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	if f.rows == nil {
		f.rows = map[string][]byte{}
	}
	key := args[0].(string)
	if len(args) > 1 {
		f.rows[key] = args[1].([]byte)
		return pgconn.CommandTag("INSERT 0 1"), nil
	}
	delete(f.rows, key)
	return pgconn.CommandTag("DELETE 1"), nil
}

func (f *fakePg) QueryRow(_ context.Context, _ string, args ...interface{}) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{data: b}
}

func TestPostgresStore(t *testing.T) {
	pg := &fakePg{}
	closed := false
	s := NewPostgresStore(pg, func() { closed = true })
	exerciseStore(t, s)
	assert.Contains(t, pg.execs[0], "ON CONFLICT (key) DO UPDATE")
	require.NoError(t, s.Close())
	assert.True(t, closed)
}

func TestPostgresStore_QueryError(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewPostgresStore(errPg{boom}, nil)
	_, err := s.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}

type errPg struct{ err error }

func (e errPg) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return nil, e.err
}

func (e errPg) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return fakeRow{err: e.err}
}

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[string]string{}
	}
	f.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore(t *testing.T) {
	rd := &fakeRedis{}
	exerciseStore(t, NewRedisStore(rd, nil))
}

func TestRedisStore_UsesFixedKey(t *testing.T) {
	rd := &fakeRedis{}
	s := NewRedisStore(rd, nil)
	require.NoError(t, s.Save(context.Background(), sample()))
	assert.Contains(t, rd.data, SnapshotKey)
}

// remoteServer implements the remote-store protocol over one slot.
type remoteServer struct {
	mu       sync.Mutex
	body     []byte
	auth     []string
	deleteOK bool
}

func (rs *remoteServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.auth = append(rs.auth, r.Header.Get("Authorization"))
	if r.URL.Path != "/api/resume" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		if rs.body == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(rs.body)
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		if !json.Valid(b) {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		rs.body = b
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		if !rs.deleteOK {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rs.body = nil
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestRESTStore(t *testing.T) {
	remote := &remoteServer{deleteOK: true}
	srv := httptest.NewServer(remote)
	defer srv.Close()

	s, err := NewRESTStore(srv.URL+"/api/", "secret", srv.Client())
	require.NoError(t, err)
	exerciseStore(t, s)
	for _, h := range remote.auth {
		assert.Equal(t, "Bearer secret", h)
	}
}

func TestRESTStore_DeleteNotSupportedCountsAsCleared(t *testing.T) {
	srv := httptest.NewServer(&remoteServer{})
	defer srv.Close()

	s, err := NewRESTStore(srv.URL+"/api", "", srv.Client())
	require.NoError(t, err)
	assert.NoError(t, s.Clear(context.Background()))
}

func TestRESTStore_NoTokenNoHeader(t *testing.T) {
	remote := &remoteServer{}
	srv := httptest.NewServer(remote)
	defer srv.Close()

	s, err := NewRESTStore(srv.URL+"/api", "", srv.Client())
	require.NoError(t, err)
	_, err = s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{""}, remote.auth)
}

func TestRESTStore_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, err := NewRESTStore(srv.URL, "", srv.Client())
	require.NoError(t, err)
	_, err = s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Error(t, s.Save(context.Background(), sample()))
	assert.Error(t, s.Clear(context.Background()))
}

func TestNewRESTStore_InvalidURL(t *testing.T) {
	_, err := NewRESTStore("not a url", "", nil)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Config{Driver: "SQLite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(ctx, Config{Driver: "rest", RESTURL: "http://localhost:3000"})
	require.NoError(t, err)
	assert.IsType(t, &RESTStore{}, s)

	_, err = Open(ctx, Config{Driver: "etcd"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
