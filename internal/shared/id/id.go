// Package id generates the identifiers attached to page runs and the
// dispatches recorded during them.
//
// IDs are prefixed ULIDs ("run_01J...", "dsp_01J..."): sortable by creation
// time and readable in logs.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// RunID identifies one page run
type RunID string

// DispatchID identifies one recorded dispatch within a run
type DispatchID string

const (
	RunPrefix      = "run"
	DispatchPrefix = "dsp"
)

// Generator generates ULIDs from a single entropy source
type Generator struct {
	entropy io.Reader
	mu      sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator reading crypto/rand, made monotonic so
// IDs minted within one millisecond still sort in creation order.
func NewGenerator() *Generator {
	return NewGeneratorWithEntropy(ulid.Monotonic(rand.Reader, 0))
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests use it for deterministic IDs.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// WithPrefix creates a "prefix_ULID" string
func (g *Generator) WithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewRunID generates a run ID
func NewRunID() RunID {
	return RunID(Default().WithPrefix(RunPrefix))
}

// NewDispatchID generates a dispatch ID
func NewDispatchID() DispatchID {
	return DispatchID(Default().WithPrefix(DispatchPrefix))
}

func (id RunID) String() string      { return string(id) }
func (id DispatchID) String() string { return string(id) }

// Time returns the creation time encoded in the run ID
func (id RunID) Time() (time.Time, error) {
	return Timestamp(string(id))
}

// IsValid reports whether s is a ULID, with or without a prefix
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse parses a ULID, stripping a "prefix_" if present
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// Timestamp extracts the creation time from an ID
func Timestamp(s string) (time.Time, error) {
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
