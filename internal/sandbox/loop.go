package sandbox

import (
	"context"
	"time"
)

// loop serializes completions onto the goroutine running the script. Work
// started through Async runs on its own goroutine; its completion is queued
// and run by drain. pending is only touched by the loop goroutine.
type loop struct {
	jobs    chan func()
	quit    chan struct{}
	pending int
}

func newLoop() *loop {
	return &loop{
		jobs: make(chan func(), 16),
		quit: make(chan struct{}),
	}
}

// Async implements bridge.Executor.
func (l *loop) Async(work func() func()) {
	l.pending++
	go func() {
		done := work()
		job := func() {
			l.pending--
			if done != nil {
				done()
			}
		}
		select {
		case l.jobs <- job:
		case <-l.quit:
		}
	}()
}

// after runs fn on the loop once d has elapsed, unless ctx ends first.
func (l *loop) after(ctx context.Context, d time.Duration, fn func()) {
	l.Async(func() func() {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return fn
		case <-ctx.Done():
			return nil
		}
	})
}

// drain runs queued completions until nothing is pending or ctx ends.
func (l *loop) drain(ctx context.Context) error {
	for l.pending > 0 {
		select {
		case job := <-l.jobs:
			job()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// close releases goroutines still waiting to queue a completion.
func (l *loop) close() {
	close(l.quit)
}
