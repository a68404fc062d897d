package source

import (
	"sync"

	"github.com/facewire/facewire/internal/types"
)

// Executor is a confined serial task queue: one goroutine drains posted
// tasks in FIFO order, the platform's "main thread" in SDK terms. All
// handler invocations for a service instance go through one Executor, so
// handlers never race with themselves. Dispatch order is arrival order;
// completion order is up to the handler, which may respond from any
// goroutine later.
type Executor struct {
	tasks chan func()
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewExecutor starts the executor's goroutine. queueSize bounds how many
// tasks may be pending before Post blocks the caller.
func NewExecutor(queueSize int) *Executor {
	if queueSize <= 0 {
		queueSize = 16
	}
	e := &Executor{
		tasks: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Executor) run() {
	defer close(e.done)
	for task := range e.tasks {
		task()
	}
}

// Post enqueues a task, blocking when the queue is full. Returns
// ErrExecutorClosed after Close.
func (e *Executor) Post(task func()) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return types.ErrExecutorClosed
	}
	// Holding the lock across the send keeps Close from racing a write to a
	// closed channel.
	e.tasks <- task
	e.mu.Unlock()
	return nil
}

// Close stops accepting tasks, drains what is already queued, and waits for
// the goroutine to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.closed = true
	close(e.tasks)
	e.mu.Unlock()
	<-e.done
}
