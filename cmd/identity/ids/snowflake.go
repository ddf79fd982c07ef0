package ids

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Snowflake bit layout (63 usable bits, sign bit always zero):
//
//	41 bits  millisecond tick since epoch
//	10 bits  node id
//	12 bits  per-tick sequence
const (
	// snowflakeEpochMs is 2023-01-01T00:00:00Z. 41 bits of milliseconds
	// from this epoch last until ~2092.
	snowflakeEpochMs int64 = 1672531200000

	nodeBits     = 10
	sequenceBits = 12

	maxNode     = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	nodeShift      = sequenceBits
	timestampShift = sequenceBits + nodeBits
)

// Snowflake generates strictly-increasing, collision-free 64-bit IDs.
//
// Concurrency contract:
//   - Next is safe for concurrent use; the whole read-modify-write of
//     (lastTick, seq) is one critical section under a single mutex.
//   - Two IDs from one generator never compare equal, and emission order
//     matches numeric order.
//
// A monotonic counter alone is not enough here: tick and sequence must be
// updated together, so the mutex guards both.
type Snowflake struct {
	mu       sync.Mutex
	node     int64
	lastTick int64
	seq      int64

	// now is a test seam; defaults to time.Now.
	now func() time.Time
}

// NewSnowflake constructs a generator for the given node id.
// Node ids identify a generator instance and must fit in 10 bits.
func NewSnowflake(node int64) (*Snowflake, error) {
	if node < 0 || node > maxNode {
		return nil, fmt.Errorf("ids: node id %d out of range [0..%d]", node, maxNode)
	}
	return &Snowflake{node: node, now: time.Now}, nil
}

// Next returns the next unique ID.
//
// Behavior per clock condition:
//   - clock advanced: sequence resets to zero on the new tick
//   - same tick: sequence increments; on overflow the generator yields
//     until the clock reaches the next tick
//   - clock moved backwards: the stored tick is kept (timestamp bits never
//     regress) and the sequence keeps incrementing until real time catches up
func (g *Snowflake) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	tick := g.tick()
	if tick < g.lastTick {
		tick = g.lastTick
	}

	if tick == g.lastTick {
		g.seq = (g.seq + 1) & maxSequence
		if g.seq == 0 {
			// Sequence exhausted for this tick. Yield rather than hot-loop;
			// the wait is bounded by one tick of wall time.
			for tick <= g.lastTick {
				runtime.Gosched()
				tick = g.tick()
			}
		}
	} else {
		g.seq = 0
	}
	g.lastTick = tick

	return tick<<timestampShift | g.node<<nodeShift | g.seq
}

func (g *Snowflake) tick() int64 {
	return g.now().UnixMilli() - snowflakeEpochMs
}
