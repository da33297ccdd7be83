package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cswnn/Capstone-Homefix2/internal/observability"
)

func TestSessions_Isolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, observability.NewNopLogger())
	defer store.Close()
	sessions := NewSessions(store)

	require.NoError(t, sessions.With(ctx, "alice", func(st *State) error {
		st.AwaitingClarification = true
		st.PendingQuestion = "곰팡이 제거"
		return nil
	}))

	require.NoError(t, sessions.With(ctx, "bob", func(st *State) error {
		assert.False(t, st.AwaitingClarification, "bob never sees alice's pending question")
		return nil
	}))

	require.NoError(t, sessions.With(ctx, "alice", func(st *State) error {
		assert.Equal(t, "곰팡이 제거", st.PendingQuestion)
		return nil
	}))
}

func TestSessions_SavesOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, observability.NewNopLogger())
	defer store.Close()
	sessions := NewSessions(store)

	boom := errors.New("generation failed")
	err := sessions.With(ctx, "s", func(st *State) error {
		st.AddHistory("q", "q")
		return boom
	})
	require.ErrorIs(t, err, boom)

	st, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, st.History, 1)
	assert.False(t, st.LastSeen.IsZero())
}

func TestSessions_SerialisesSameSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, observability.NewNopLogger())
	defer store.Close()
	sessions := NewSessions(store)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sessions.With(ctx, "shared", func(st *State) error {
				st.AddHistory("u", "a")
				return nil
			})
		}()
	}
	wg.Wait()

	st, err := store.Load(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, st.History, n, "no lost updates")
	assert.Empty(t, sessions.locks, "locks are released")
}

func TestSessions_End(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, observability.NewNopLogger())
	defer store.Close()
	sessions := NewSessions(store)

	require.NoError(t, sessions.With(ctx, "s", func(st *State) error {
		st.AddHistory("a", "b")
		return nil
	}))
	require.NoError(t, sessions.End(ctx, "s"))
	assert.Equal(t, 0, store.Len())
}
