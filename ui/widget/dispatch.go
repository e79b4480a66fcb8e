package widget

import (
	"context"
	"sync"
)

// Dispatcher separates blocking work from UI callbacks. Go runs fn away
// from the UI goroutine; Post queues fn to run on it.
type Dispatcher interface {
	Go(fn func())
	Post(fn func())
}

// Inline runs everything immediately on the calling goroutine.
type Inline struct{}

func (Inline) Go(fn func())   { fn() }
func (Inline) Post(fn func()) { fn() }

// Loop runs posted callbacks one at a time, in order, on the goroutine
// that calls Run.
type Loop struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	pending int
	closed  bool
	wake    chan struct{}
}

func NewLoop() *Loop {
	l := &Loop{wake: make(chan struct{}, 1)}
	l.idle = sync.NewCond(&l.mu)
	return l
}

func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) Go(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.pending++
	l.mu.Unlock()
	go func() {
		defer func() {
			l.mu.Lock()
			l.pending--
			l.idle.Broadcast()
			l.mu.Unlock()
		}()
		fn()
	}()
}

// Run processes callbacks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		closed := l.closed
		l.mu.Unlock()
		for _, fn := range q {
			fn()
		}
		if closed {
			return nil
		}
		if len(q) > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Call runs fn on the loop and waits for it to return. It must not be
// called from the loop goroutine.
func (l *Loop) Call(fn func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	<-done
}

// Settle blocks until no background work is running and every callback it
// queued has run.
func (l *Loop) Settle() {
	for {
		l.mu.Lock()
		for l.pending > 0 {
			l.idle.Wait()
		}
		l.mu.Unlock()
		l.Call(func() {})
		l.mu.Lock()
		done := l.pending == 0 && len(l.queue) == 0
		l.mu.Unlock()
		if done {
			return
		}
	}
}

// Close stops the loop after the callbacks already queued have run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
