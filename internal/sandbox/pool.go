package sandbox

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrPoolClosed = errors.New("sandbox pool is closed")
	ErrTimeout    = errors.New("sandbox acquisition timeout")
)

// acquireTimeout bounds how long Acquire waits for a free runtime when the
// caller's context has no deadline.
const acquireTimeout = 5 * time.Second

// Pool hands out reusable page runtimes. A runtime is reset before it goes
// back to the pool.
type Pool struct {
	config Config
	idle   chan *Runtime
	size   int
	done   chan struct{}

	mu     sync.Mutex // guards closed against concurrent Release
	closed bool
}

// PoolStats describes pool occupancy
type PoolStats struct {
	Size      int  `json:"size"`
	Available int  `json:"available"`
	InUse     int  `json:"in_use"`
	Closed    bool `json:"closed"`
}

// NewPool creates a pool of size runtimes, 4 when size is not positive
func NewPool(config Config, size int) (*Pool, error) {
	if size <= 0 {
		size = 4
	}

	pool := &Pool{
		config: config,
		idle:   make(chan *Runtime, size),
		size:   size,
		done:   make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		rt, err := New(config)
		if err != nil {
			pool.Close()
			return nil, err
		}
		pool.idle <- rt
	}
	return pool, nil
}

// Acquire waits for a free runtime
func (p *Pool) Acquire(ctx context.Context) (*Runtime, error) {
	select {
	case <-p.done:
		return nil, ErrPoolClosed
	default:
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, acquireTimeout)
		defer cancel()
	}

	select {
	case rt := <-p.idle:
		return rt, nil
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// Release resets rt and returns it to the pool, so no page state leaks
// into the next run. A runtime that fails to reset is replaced.
func (p *Pool) Release(rt *Runtime) error {
	resetErr := rt.Reset()
	if resetErr != nil {
		rt.Close()
		replacement, err := New(p.config)
		if err != nil {
			return errors.Join(resetErr, err)
		}
		rt = replacement
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		rt.Close()
		return resetErr
	}
	select {
	case p.idle <- rt:
	default:
		rt.Close()
	}
	return resetErr
}

// Execute runs a page script on a pooled runtime
func (p *Pool) Execute(ctx context.Context, script string, dom *DOM) (*Result, error) {
	return p.Run(ctx, script, dom, RunOptions{})
}

// Run runs a page script with per-run options on a pooled runtime
func (p *Pool) Run(ctx context.Context, script string, dom *DOM, opts RunOptions) (*Result, error) {
	sandbox, err := p.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Release(sandbox)

	return sandbox.Run(ctx, script, dom, opts)
}

// Close closes idle runtimes; runtimes still in use are closed on release
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)

	for {
		select {
		case rt := <-p.idle:
			rt.Close()
		default:
			return nil
		}
	}
}

// Stats returns pool occupancy
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	available := len(p.idle)
	return PoolStats{
		Size:      p.size,
		Available: available,
		InUse:     p.size - available,
		Closed:    closed,
	}
}
