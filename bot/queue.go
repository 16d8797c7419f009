package bot

import "sync"

// serialQueues executes tasks for the same key one at a time in enqueue
// order, while tasks for distinct keys run in parallel. One blocked login
// flow therefore never stalls another user's conversation.
type serialQueues struct {
	mu     sync.Mutex
	queues map[int64]*convQueue
}

type convQueue struct {
	tasks   []func()
	running bool
}

func newSerialQueues() *serialQueues {
	return &serialQueues{queues: make(map[int64]*convQueue)}
}

func (s *serialQueues) enqueue(key int64, task func()) {
	s.mu.Lock()
	q, ok := s.queues[key]
	if !ok {
		q = &convQueue{}
		s.queues[key] = q
	}
	q.tasks = append(q.tasks, task)
	if !q.running {
		q.running = true
		go s.drain(key, q)
	}
	s.mu.Unlock()
}

func (s *serialQueues) drain(key int64, q *convQueue) {
	for {
		s.mu.Lock()
		if len(q.tasks) == 0 {
			q.running = false
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		s.mu.Unlock()

		task()
	}
}
