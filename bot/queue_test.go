package bot

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSerialQueues_OrderPreservedPerKey(t *testing.T) {
	queues := newSerialQueues()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		queues.enqueue(1, func() {
			defer wg.Done()
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	require.Len(t, got, 100)
	for i, v := range got {
		require.Equal(t, i, v, "tasks must run in enqueue order")
	}
}

func TestSerialQueues_KeysRunInParallel(t *testing.T) {
	queues := newSerialQueues()

	blocked := make(chan struct{})
	queues.enqueue(1, func() { <-blocked })

	done := make(chan struct{})
	queues.enqueue(2, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task for an unrelated key was blocked")
	}
	close(blocked)
}

func TestSerialQueues_WorkerRestartsAfterDrain(t *testing.T) {
	queues := newSerialQueues()

	first := make(chan struct{})
	queues.enqueue(1, func() { close(first) })
	select {
	case <-first:
	case <-time.After(time.Second):
		t.Fatal("first task never ran")
	}

	// Give the drain goroutine a moment to retire, then enqueue again.
	time.Sleep(10 * time.Millisecond)

	second := make(chan struct{})
	queues.enqueue(1, func() { close(second) })
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second task never ran after queue drained")
	}
}
