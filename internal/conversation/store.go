package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cswnn/Capstone-Homefix2/internal/metrics"
	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

// Store persists conversation state by session id. Load returns a fresh
// State for unknown ids.
type Store interface {
	Load(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, id string, st *State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// MemoryStore keeps sessions in process and evicts those idle for longer
// than the idle timeout.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*State
	idle     time.Duration
	now      func() time.Time
	logger   *observability.Logger
	stop     chan struct{}
	once     sync.Once
}

// NewMemoryStore creates a memory store. A janitor goroutine sweeps every
// idle/4 until Close.
func NewMemoryStore(idle time.Duration, logger *observability.Logger) *MemoryStore {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	s := &MemoryStore{
		sessions: make(map[string]*State),
		idle:     idle,
		now:      time.Now,
		logger:   logger,
		stop:     make(chan struct{}),
	}
	go s.janitor(idle / 4)
	return s
}

// Load returns a copy of the session state.
func (s *MemoryStore) Load(ctx context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.sessions[id]
	if !ok || s.expired(st) {
		return &State{}, nil
	}
	return st.Clone(), nil
}

// Save stores a copy of st.
func (s *MemoryStore) Save(ctx context.Context, id string, st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = st.Clone()
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Delete drops a session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return nil
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, st := range s.sessions {
		if s.expired(st) {
			delete(s.sessions, id)
			evicted++
		}
	}
	metrics.ActiveSessions.Set(float64(len(s.sessions)))
	return evicted
}

func (s *MemoryStore) expired(st *State) bool {
	return s.now().Sub(st.LastSeen) > s.idle
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug().Int("evicted", n).Msg("idle sessions evicted")
			}
		}
	}
}

// RedisStore keeps sessions in Redis as JSON with a TTL equal to the idle
// timeout, refreshed on every save.
type RedisStore struct {
	client *redis.Client
	prefix string
	idle   time.Duration
}

// NewRedisStore wraps an existing client. The store does not close it.
func NewRedisStore(client *redis.Client, prefix string, idle time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "homefix:session:"
	}
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	return &RedisStore{client: client, prefix: prefix, idle: idle}
}

// Load fetches and decodes a session.
func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &st, nil
}

// Save encodes st and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, id string, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+id, data, s.idle).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete drops a session.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (s *RedisStore) Close() error {
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
