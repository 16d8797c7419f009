package sessionstore_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/tg-session-bot/authclient"
	"github.com/jrsteele09/tg-session-bot/loginflow/sessionstore"
	"github.com/stretchr/testify/require"
)

func newSession(id string, lastActivity time.Time) *sessionstore.Session {
	return &sessionstore.Session{
		ConversationID: id,
		Backend:        authclient.BackendPyrogram,
		State:          sessionstore.StateAwaitingCode,
		CreatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}
}

func TestStore_PutGetRemove(t *testing.T) {
	store := sessionstore.New()
	now := time.Now()

	_, ok := store.Get("u1")
	require.False(t, ok)

	store.Put(newSession("u1", now))
	got, ok := store.Get("u1")
	require.True(t, ok)
	require.Equal(t, "u1", got.ConversationID)
	require.Equal(t, 1, store.Len())

	removed, ok := store.Remove("u1")
	require.True(t, ok)
	require.Equal(t, "u1", removed.ConversationID)
	require.Equal(t, 0, store.Len())

	_, ok = store.Remove("u1")
	require.False(t, ok)
}

func TestStore_PutOverwrites(t *testing.T) {
	store := sessionstore.New()
	now := time.Now()

	first := newSession("u1", now)
	store.Put(first)

	second := newSession("u1", now.Add(time.Minute))
	store.Put(second)

	got, ok := store.Get("u1")
	require.True(t, ok)
	require.Same(t, second, got)
	require.Equal(t, 1, store.Len())
}

func TestStore_AcquireSerializesSameConversation(t *testing.T) {
	store := sessionstore.New()

	release := store.Acquire("u1")

	acquired := make(chan struct{})
	go func() {
		r := store.Acquire("u1")
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire succeeded while lock was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire never succeeded after release")
	}
}

func TestStore_AcquireIndependentConversations(t *testing.T) {
	store := sessionstore.New()

	release := store.Acquire("u1")
	defer release()

	done := make(chan struct{})
	go func() {
		r := store.Acquire("u2")
		r()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("unrelated conversation was blocked")
	}
}

func TestStore_AcquireReleaseIdempotent(t *testing.T) {
	store := sessionstore.New()

	release := store.Acquire("u1")
	release()
	release() // second call must be harmless

	r := store.Acquire("u1")
	r()
}

func TestStore_AcquireContention(t *testing.T) {
	store := sessionstore.New()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := store.Acquire("u1")
			counter++ // must be data-race free under the conversation lock
			release()
		}()
	}
	wg.Wait()
	require.Equal(t, 50, counter)
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	store := sessionstore.New()
	now := time.Now()

	store.Put(newSession("idle", now.Add(-20*time.Minute)))
	store.Put(newSession("active", now.Add(-time.Minute)))

	var evicted []*sessionstore.Session
	n := store.Sweep(10*time.Minute, now, func(s *sessionstore.Session) {
		evicted = append(evicted, s)
	})

	require.Equal(t, 1, n)
	require.Len(t, evicted, 1)
	require.Equal(t, "idle", evicted[0].ConversationID)

	_, ok := store.Get("idle")
	require.False(t, ok)
	_, ok = store.Get("active")
	require.True(t, ok)
}

func TestStore_SweepKeepsFreshSessions(t *testing.T) {
	store := sessionstore.New()
	now := time.Now()

	store.Put(newSession("u1", now))
	n := store.Sweep(10*time.Minute, now, nil)

	require.Equal(t, 0, n)
	require.Equal(t, 1, store.Len())
}
