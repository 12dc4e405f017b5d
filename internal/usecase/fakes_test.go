package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"resume-studio/internal/model"
)

type fakeTimer struct {
	clock    *fakeClock
	at       time.Duration
	fn       func()
	stopped  bool
	finished bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.finished
	t.stopped = true
	return active
}

// fakeClock fires timers only when Advance moves past their deadline.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.finished && t.at <= c.now {
			t.finished = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.finished {
			n++
		}
	}
	return n
}

type fakeStore struct {
	mu       sync.Mutex
	loaded   *model.Resume
	loadErr  error
	saveErr  error
	clearErr error
	saves    []model.Resume
	clears   int
}

func (s *fakeStore) Load(context.Context) (*model.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.loaded == nil {
		return nil, nil
	}
	r := s.loaded.Clone()
	return &r, nil
}

func (s *fakeStore) Save(_ context.Context, r model.Resume) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, r.Clone())
	return nil
}

func (s *fakeStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	return s.clearErr
}

func (s *fakeStore) Saves() []model.Resume {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Resume(nil), s.saves...)
}

func (s *fakeStore) failSaves(err error) {
	s.mu.Lock()
	s.saveErr = err
	s.mu.Unlock()
}

var errBackend = errors.New("backend down")
