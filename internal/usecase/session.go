package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resume-studio/internal/editor"
	"resume-studio/internal/importer"
	"resume-studio/internal/model"
)

// DefaultDebounce is how long the session waits after the last change
// before persisting.
const DefaultDebounce = 400 * time.Millisecond

// Store persists the single resume snapshot. Load returns nil, nil when
// nothing has been saved. Implementations must tolerate overlapping Save
// calls; the last write wins.
type Store interface {
	Load(ctx context.Context) (*model.Resume, error)
	Save(ctx context.Context, r model.Resume) error
	Clear(ctx context.Context) error
}

// Status is the externally visible session state.
type Status struct {
	Session uuid.UUID `json:"session"`
	Loaded  bool      `json:"loaded"`
	Dirty   bool      `json:"dirty"`
}

// Session owns the live record. Every change replaces the whole record and
// schedules a debounced save of the snapshot current when the timer fires.
type Session struct {
	mu       sync.Mutex
	id       uuid.UUID
	store    Store
	log      *zap.Logger
	delay    time.Duration
	clock    Clock
	debounce *Debouncer
	fallback model.Resume
	current  model.Resume
	gen      uint64
	savedGen uint64
	loaded   bool
}

type SessionOption func(*Session)

func WithLogger(l *zap.Logger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(c Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithDefault replaces the built-in record used when nothing is stored and
// on reset.
func WithDefault(r model.Resume) SessionOption {
	return func(s *Session) { s.fallback = r.Clone() }
}

func NewSession(store Store, opts ...SessionOption) *Session {
	s := &Session{
		id:       uuid.New(),
		store:    store,
		log:      zap.NewNop(),
		delay:    DefaultDebounce,
		fallback: model.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("session", s.id.String()))
	s.debounce = NewDebouncer(s.delay, s.clock)
	s.current = s.fallback.Clone()
	return s
}

func (s *Session) ID() uuid.UUID { return s.id }

// Start loads the persisted record once. A failed or empty load keeps the
// default record.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	r, err := s.store.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return
	}
	s.loaded = true
	switch {
	case err != nil:
		s.log.Warn("load failed, using default resume", zap.Error(err))
	case r == nil:
		s.log.Info("no saved resume, using default")
	default:
		s.current = r.Normalize()
		s.log.Info("resume loaded", zap.String("name", s.current.Basics.Name))
	}
}

// Current returns a snapshot of the live record.
func (s *Session) Current() model.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Replace swaps in a whole new record and schedules a save.
func (s *Session) Replace(r model.Resume) model.Resume {
	s.mu.Lock()
	s.current = r.Clone()
	s.gen++
	out := s.current.Clone()
	s.mu.Unlock()
	s.schedule()
	return out
}

// Apply runs op against the live record and keeps the result.
func (s *Session) Apply(op editor.Op) model.Resume {
	s.mu.Lock()
	s.current = op(s.current.Clone())
	s.gen++
	out := s.current.Clone()
	s.mu.Unlock()
	s.schedule()
	return out
}

// ImportJSON replaces the record with an uploaded exchange file. On error
// the record is left as it was.
func (s *Session) ImportJSON(b []byte) (model.Resume, error) {
	r, err := model.ImportJSON(b)
	if err != nil {
		return model.Resume{}, err
	}
	return s.Replace(r), nil
}

// ImportReactive maps a ReactiveResume export over the default record.
func (s *Session) ImportReactive(b []byte) (model.Resume, error) {
	r, err := importer.MapReactiveResume(b, s.fallback)
	if err != nil {
		return model.Resume{}, err
	}
	return s.Replace(r), nil
}

// Dirty is true from a change until a save carrying that change succeeds.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen != s.savedGen
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Session: s.id, Loaded: s.loaded, Dirty: s.gen != s.savedGen}
}

// Reset clears the store and reverts to the default record, which is then
// saved like any other change.
func (s *Session) Reset(ctx context.Context) model.Resume {
	s.debounce.Cancel()
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("clear failed", zap.Error(err))
	}
	return s.Replace(s.fallback)
}

// Flush saves any unsaved change immediately.
func (s *Session) Flush(ctx context.Context) error {
	s.debounce.Cancel()
	if !s.Dirty() {
		return nil
	}
	return s.save(ctx)
}

// Close drops a pending save without running it.
func (s *Session) Close() {
	s.debounce.Cancel()
}

func (s *Session) schedule() {
	s.debounce.Trigger(func() {
		_ = s.save(context.Background())
	})
}

func (s *Session) save(ctx context.Context) error {
	s.mu.Lock()
	snap := s.current.Clone()
	gen := s.gen
	s.mu.Unlock()

	if err := s.store.Save(ctx, snap); err != nil {
		s.log.Warn("save failed", zap.Uint64("generation", gen), zap.Error(err))
		return err
	}

	s.mu.Lock()
	if gen > s.savedGen {
		s.savedGen = gen
	}
	s.mu.Unlock()
	s.log.Debug("resume saved", zap.Uint64("generation", gen))
	return nil
}
