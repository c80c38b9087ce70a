package ingest

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// SymbolGenerator produces unique suffixes for operation result symbols.
//
// Converted statements have no natural symbol name, so results get a
// generated suffix (e.g. "phospho_p04637_9e4d21c07a53").
type SymbolGenerator interface {
	// Next returns a fresh suffix consisting of symbol-safe characters.
	Next() string
}

// UUIDGenerator derives suffixes from fresh UUIDv7 values, taking the
// random tail rather than the timestamp head so suffixes generated within
// the same millisecond stay distinct.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Next returns the last twelve hex digits of a fresh UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDGenerator) Next() string {
	hex := strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
	return hex[len(hex)-12:]
}

// FixedGenerator returns predetermined suffixes for deterministic tests
// and golden-file comparison.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu       sync.Mutex
	suffixes []string
	idx      int
}

// NewFixedGenerator creates a generator that returns suffixes in order.
// Next panics once all suffixes are consumed - a fail-fast guard against
// test misconfiguration.
func NewFixedGenerator(suffixes ...string) *FixedGenerator {
	return &FixedGenerator{suffixes: suffixes}
}

// Next returns the next predetermined suffix.
func (g *FixedGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.suffixes) {
		panic("FixedGenerator: all suffixes exhausted")
	}
	s := g.suffixes[g.idx]
	g.idx++
	return s
}
