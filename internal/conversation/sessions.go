package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Sessions serialises turns per session id around a Store.
type Sessions struct {
	store Store
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewSessions creates a session manager over store.
func NewSessions(store Store) *Sessions {
	return &Sessions{
		store: store,
		now:   time.Now,
		locks: make(map[string]*sessionLock),
	}
}

// With loads the state of session id, runs fn with it and saves the result.
// Calls for the same id never overlap. The state is saved even when fn
// fails, since transitions made before the failure stand.
func (s *Sessions) With(ctx context.Context, id string, fn func(st *State) error) error {
	unlock := s.lock(id)
	defer unlock()

	st, err := s.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	fnErr := fn(st)

	st.LastSeen = s.now()
	if err := s.store.Save(ctx, id, st); err != nil && fnErr == nil {
		return fmt.Errorf("save session: %w", err)
	}
	return fnErr
}

// End discards the state of session id.
func (s *Sessions) End(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	return s.store.Delete(ctx, id)
}

func (s *Sessions) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
