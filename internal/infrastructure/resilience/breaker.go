package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned while a breaker rejects calls
var ErrOpen = errors.New("circuit open")

// State of a breaker
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Settings configures a breaker
type Settings struct {
	// Failures is the number of consecutive failures that opens the breaker
	Failures int
	// Cooldown is how long an open breaker waits before a probe call
	Cooldown time.Duration
	// OnStateChange is called with the breaker lock released
	OnStateChange func(key string, from, to State)
}

// DefaultSettings returns settings for guarding a flaky upstream
func DefaultSettings() Settings {
	return Settings{
		Failures: 3,
		Cooldown: 30 * time.Second,
	}
}

// Breaker fails fast once an upstream keeps failing. After Cooldown it
// lets a single probe through; the probe's outcome closes or reopens it.
type Breaker struct {
	key      string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a closed breaker
func New(key string, settings Settings) *Breaker {
	if settings.Failures <= 0 {
		settings.Failures = DefaultSettings().Failures
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = DefaultSettings().Cooldown
	}
	return &Breaker{key: key, settings: settings, now: time.Now}
}

// State returns the current state, moving an expired open breaker to half-open
func (b *Breaker) State() State {
	b.mu.Lock()
	from, to := b.advance()
	state := b.state
	b.mu.Unlock()
	b.notify(from, to)
	return state
}

// Do runs fn unless the breaker is open. failed decides whether fn's
// outcome counts against the upstream; a nil failed treats any error as
// a failure.
func (b *Breaker) Do(fn func() error, failed func(error) bool) error {
	if err := b.acquire(); err != nil {
		return err
	}
	err := fn()
	bad := err != nil
	if failed != nil {
		bad = failed(err)
	}
	b.record(!bad)
	return err
}

func (b *Breaker) acquire() error {
	b.mu.Lock()
	from, to := b.advance()
	var err error
	switch b.state {
	case StateOpen:
		err = ErrOpen
	case StateHalfOpen:
		if b.probing {
			err = ErrOpen
		} else {
			b.probing = true
		}
	}
	b.mu.Unlock()
	b.notify(from, to)
	return err
}

func (b *Breaker) record(ok bool) {
	b.mu.Lock()
	from := b.state
	switch {
	case ok:
		b.failures = 0
		b.state = StateClosed
	case b.state == StateHalfOpen:
		b.trip()
	default:
		b.failures++
		if b.failures >= b.settings.Failures {
			b.trip()
		}
	}
	b.probing = false
	to := b.state
	b.mu.Unlock()
	b.notify(from, to)
}

// caller holds mu
func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = b.now()
	b.failures = 0
}

// caller holds mu
func (b *Breaker) advance() (State, State) {
	from := b.state
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		b.state = StateHalfOpen
		b.probing = false
	}
	return from, b.state
}

func (b *Breaker) notify(from, to State) {
	if from != to && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.key, from, to)
	}
}

// Set holds one breaker per key, created on first use
type Set struct {
	settings Settings

	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewSet creates an empty breaker set
func NewSet(settings Settings) *Set {
	return &Set{settings: settings, breakers: make(map[string]*Breaker)}
}

// Get returns the breaker for key
func (s *Set) Get(key string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.breakers[key]
	if !ok {
		b = New(key, s.settings)
		s.breakers[key] = b
	}
	return b
}

// States reports the state of every known breaker
func (s *Set) States() map[string]State {
	s.mu.Lock()
	breakers := make([]*Breaker, 0, len(s.breakers))
	for _, b := range s.breakers {
		breakers = append(breakers, b)
	}
	s.mu.Unlock()

	out := make(map[string]State, len(breakers))
	for _, b := range breakers {
		out[b.key] = b.State()
	}
	return out
}
