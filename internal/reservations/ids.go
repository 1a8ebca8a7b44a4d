package reservations

import (
	"sync/atomic"
	"time"
)

// IDGenerator produces reservation IDs. IDs only need to be unique
// within an account, but the default generator is process-unique.
type IDGenerator interface {
	Next() int
}

// counterIDs issues sequential IDs from an atomic counter seeded with
// the current Unix time. The seed keeps IDs in the same numeric range
// as historical data; the counter guarantees that concurrent creations
// in the same second cannot collide.
type counterIDs struct {
	counter atomic.Int64
}

// NewIDGenerator creates the default collision-resistant generator.
func NewIDGenerator() IDGenerator {
	g := &counterIDs{}
	g.counter.Store(time.Now().Unix())
	return g
}

func (g *counterIDs) Next() int {
	return int(g.counter.Add(1))
}

// FixedIDs returns a generator that always yields id. Test helper.
type FixedIDs int

func (f FixedIDs) Next() int { return int(f) }
