package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-studio/internal/editor"
	"resume-studio/internal/model"
)

const testDelay = 400 * time.Millisecond

func newTestSession(t *testing.T, store *fakeStore, opts ...SessionOption) (*Session, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	opts = append([]SessionOption{WithClock(clock), WithDebounce(testDelay)}, opts...)
	s := NewSession(store, opts...)
	t.Cleanup(s.Close)
	return s, clock
}

func rename(name string) editor.Op {
	return func(r model.Resume) model.Resume {
		return editor.SetBasicsField(r, editor.FieldName, name)
	}
}

func TestSession_StartsFromDefault(t *testing.T) {
	s, _ := newTestSession(t, &fakeStore{})
	s.Start(context.Background())

	assert.Equal(t, model.Default(), s.Current())
	st := s.Status()
	assert.True(t, st.Loaded)
	assert.False(t, st.Dirty)
	assert.Equal(t, s.ID(), st.Session)
}

func TestSession_LoadsStoredRecord(t *testing.T) {
	stored := model.Default()
	stored.Basics.Name = "Stored"
	stored.Layout.Breaks.BeforeExperience = model.IndexSet{0, 9}

	s, _ := newTestSession(t, &fakeStore{loaded: &stored})
	s.Start(context.Background())

	cur := s.Current()
	assert.Equal(t, "Stored", cur.Basics.Name)
	assert.Equal(t, model.IndexSet{0}, cur.Layout.Breaks.BeforeExperience)
	assert.False(t, s.Dirty())
}

func TestSession_LoadErrorKeepsDefault(t *testing.T) {
	s, _ := newTestSession(t, &fakeStore{loadErr: errBackend})
	s.Start(context.Background())

	assert.Equal(t, model.Default(), s.Current())
	assert.True(t, s.Status().Loaded)
}

func TestSession_StartIsOnce(t *testing.T) {
	stored := model.Default()
	stored.Basics.Name = "First"
	store := &fakeStore{loaded: &stored}
	s, _ := newTestSession(t, store)

	s.Start(context.Background())
	s.Apply(rename("Edited"))
	s.Start(context.Background())
	assert.Equal(t, "Edited", s.Current().Basics.Name)
}

func TestSession_DebounceCoalescesEdits(t *testing.T) {
	store := &fakeStore{}
	s, clock := newTestSession(t, store)
	s.Start(context.Background())

	const n = 10
	for i := 1; i <= n; i++ {
		s.Apply(rename(fmt.Sprintf("Name %d", i)))
		clock.Advance(testDelay / 4)
	}
	assert.Empty(t, store.Saves())
	assert.True(t, s.Dirty())

	clock.Advance(testDelay)
	saves := store.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, fmt.Sprintf("Name %d", n), saves[0].Basics.Name)
	assert.False(t, s.Dirty())
}

func TestSession_SaveUsesSnapshotAtFireTime(t *testing.T) {
	store := &fakeStore{}
	s, clock := newTestSession(t, store)

	s.Apply(rename("A"))
	clock.Advance(testDelay - time.Millisecond)
	s.Apply(rename("B"))
	clock.Advance(testDelay)

	saves := store.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, "B", saves[0].Basics.Name)
}

func TestSession_FailedSaveStaysDirty(t *testing.T) {
	store := &fakeStore{saveErr: errBackend}
	s, clock := newTestSession(t, store)

	s.Apply(editor.AddSummary)
	clock.Advance(testDelay)
	assert.True(t, s.Dirty())

	store.failSaves(nil)
	s.Apply(rename("Retry"))
	clock.Advance(testDelay)
	assert.False(t, s.Dirty())
	require.Len(t, store.Saves(), 1)
}

type hookStore struct {
	fakeStore
	onSave func()
}

func (h *hookStore) Save(ctx context.Context, r model.Resume) error {
	if h.onSave != nil {
		f := h.onSave
		h.onSave = nil
		f()
	}
	return h.fakeStore.Save(ctx, r)
}

func TestSession_EditDuringSaveStaysDirty(t *testing.T) {
	store := &hookStore{}
	s := NewSession(store, WithClock(&fakeClock{}))
	t.Cleanup(s.Close)

	s.Apply(rename("A"))
	store.onSave = func() { s.Apply(rename("B")) }
	require.NoError(t, s.Flush(context.Background()))

	assert.Equal(t, "A", store.Saves()[0].Basics.Name)
	assert.True(t, s.Dirty())

	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, "B", store.Saves()[1].Basics.Name)
	assert.False(t, s.Dirty())
}

func TestSession_FlushSavesImmediately(t *testing.T) {
	store := &fakeStore{}
	s, clock := newTestSession(t, store)

	require.NoError(t, s.Flush(context.Background()))
	assert.Empty(t, store.Saves())

	s.Apply(rename("Now"))
	require.NoError(t, s.Flush(context.Background()))
	require.Len(t, store.Saves(), 1)
	assert.False(t, s.Dirty())

	clock.Advance(time.Hour)
	assert.Len(t, store.Saves(), 1)
}

func TestSession_FlushReportsFailure(t *testing.T) {
	store := &fakeStore{saveErr: errBackend}
	s, _ := newTestSession(t, store)
	s.Apply(rename("X"))

	err := s.Flush(context.Background())
	assert.True(t, errors.Is(err, errBackend))
	assert.True(t, s.Dirty())
}

func TestSession_Reset(t *testing.T) {
	store := &fakeStore{}
	s, clock := newTestSession(t, store)
	s.Apply(rename("Changed"))

	got := s.Reset(context.Background())
	assert.Equal(t, model.Default(), got)
	assert.Equal(t, 1, store.clears)
	assert.True(t, s.Dirty())

	clock.Advance(testDelay)
	saves := store.Saves()
	require.Len(t, saves, 1)
	assert.Equal(t, model.Default(), saves[0])
}

func TestSession_ResetToleratesClearFailure(t *testing.T) {
	store := &fakeStore{clearErr: errBackend}
	s, _ := newTestSession(t, store)
	s.Apply(rename("Changed"))

	assert.Equal(t, model.Default(), s.Reset(context.Background()))
}

func TestSession_WithDefault(t *testing.T) {
	custom := model.Default()
	custom.Basics.Name = "Template"
	s, _ := newTestSession(t, &fakeStore{}, WithDefault(custom))
	s.Start(context.Background())
	assert.Equal(t, "Template", s.Current().Basics.Name)

	s.Apply(rename("Other"))
	assert.Equal(t, "Template", s.Reset(context.Background()).Basics.Name)
}

func TestSession_CurrentIsACopy(t *testing.T) {
	s, _ := newTestSession(t, &fakeStore{})
	cur := s.Current()
	cur.Basics.Name = "mutated"
	cur.Summary[0] = "mutated"
	assert.Equal(t, model.Default(), s.Current())
}

func TestSession_ImportJSON(t *testing.T) {
	s, _ := newTestSession(t, &fakeStore{})

	src := model.Default()
	src.Basics.Name = "Imported"
	b, err := model.MarshalExchange(src)
	require.NoError(t, err)

	got, err := s.ImportJSON(b)
	require.NoError(t, err)
	assert.Equal(t, "Imported", got.Basics.Name)
	assert.True(t, s.Dirty())

	before := s.Current()
	_, err = s.ImportJSON([]byte(`{"basics": 1}`))
	assert.True(t, errors.Is(err, model.ErrInvalidFile))
	assert.Equal(t, before, s.Current())
}

func TestSession_ImportReactive(t *testing.T) {
	s, _ := newTestSession(t, &fakeStore{})
	s.Apply(rename("Before"))

	got, err := s.ImportReactive([]byte(`{"basics": {"name": "Reactive"}}`))
	require.NoError(t, err)
	assert.Equal(t, "Reactive", got.Basics.Name)
	assert.Equal(t, model.Default().Experience, got.Experience)

	_, err = s.ImportReactive([]byte(`nope`))
	assert.True(t, errors.Is(err, model.ErrInvalidFile))
	assert.Equal(t, "Reactive", s.Current().Basics.Name)
}

func TestSession_CloseDropsPendingSave(t *testing.T) {
	store := &fakeStore{}
	s, clock := newTestSession(t, store)
	s.Apply(rename("Lost"))
	s.Close()
	clock.Advance(time.Hour)
	assert.Empty(t, store.Saves())
}
