package sessionstore

import (
	"context"
	"time"
)

// Sweep removes sessions idle for longer than maxIdle, calling onEvict for
// each removed session while the per-conversation lock is held, so a sweep
// never races a late-arriving user input. Returns the number evicted.
func (s *Store) Sweep(maxIdle time.Duration, now time.Time, onEvict func(*Session)) int {
	evicted := 0
	for _, id := range s.conversationIDs() {
		release := s.Acquire(id)
		session, ok := s.Get(id)
		if ok && now.Sub(session.LastActivityAt) > maxIdle {
			s.Remove(id)
			if onEvict != nil {
				onEvict(session)
			}
			evicted++
		}
		release()
	}
	return evicted
}

// RunSweeper sweeps on the given interval until the context is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval, maxIdle time.Duration, onEvict func(*Session)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(maxIdle, now, onEvict)
		}
	}
}
