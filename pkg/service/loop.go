package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// loopQueueDepth is the task buffer size. The loop is drained by a single
// goroutine; a modest buffer absorbs callback bursts from the daemon.
const loopQueueDepth = 64

// Loop is the single-threaded cooperative event loop. Tasks posted to it
// execute one at a time on one goroutine, serializing every mutation of
// node and model state.
type Loop struct {
	tasks chan func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running atomic.Bool
	logger  *slog.Logger
}

// NewLoop creates a stopped loop.
func NewLoop(logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		tasks:  make(chan func(), loopQueueDepth),
		logger: logger,
	}
}

// Start begins task processing. Starting a running loop is a no-op.
func (l *Loop) Start() {
	if l.running.Swap(true) {
		return
	}

	l.ctx, l.cancel = context.WithCancel(context.Background())
	l.wg.Add(1)
	go l.run()
}

// Stop halts task processing and waits for the loop goroutine to exit.
// Tasks still queued when Stop is called are dropped.
func (l *Loop) Stop() {
	if !l.running.Swap(false) {
		return
	}

	l.cancel()
	l.wg.Wait()
}

// Post enqueues fn for execution on the loop goroutine. Tasks posted to a
// stopped loop are dropped with a warning; late daemon callbacks must not
// resurrect a torn-down service.
func (l *Loop) Post(fn func()) {
	if !l.running.Load() {
		l.logger.Warn("task dropped, event loop stopped")
		return
	}

	select {
	case l.tasks <- fn:
	case <-l.ctx.Done():
		l.logger.Warn("task dropped, event loop stopping")
	}
}

func (l *Loop) run() {
	defer l.wg.Done()

	for {
		select {
		case <-l.ctx.Done():
			return
		case fn := <-l.tasks:
			fn()
		}
	}
}
