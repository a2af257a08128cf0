// Package idgenerator provides a concurrency-safe source of monotonically
// increasing uint32 identifiers, used to key sessions in registries.
package idgenerator

import "sync/atomic"

// IdGenerator hands out monotonically increasing uint32 IDs. The counter
// starts at the value given at construction; the first Id() returns
// startValue+1. Safe for concurrent use.
type IdGenerator struct {
	id atomic.Uint32
}

// NewIdGenerator creates an IdGenerator whose first Id() call returns
// startValue+1.
//
// Parameters:
//   - startValue: The value to initialize the counter to
//
// Returns:
//   - A new IdGenerator instance
func NewIdGenerator(startValue uint32) *IdGenerator {
	gen := &IdGenerator{}
	gen.id.Store(startValue)
	return gen
}

// Id returns the next unique ID by atomically incrementing the internal
// counter. Safe for concurrent use by multiple goroutines.
//
// Returns:
//   - The next uint32 ID
func (g *IdGenerator) Id() uint32 {
	return g.id.Add(1)
}
