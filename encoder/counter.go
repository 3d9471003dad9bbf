// Package encoder decodes two-phase quadrature signals from rotary encoders.
package encoder

import "sync/atomic"

type Phase uint8

const (
	PhaseA Phase = iota
	PhaseB
)

func (p Phase) String() string {
	if p == PhaseA {
		return "A"
	}
	return "B"
}

const (
	bitB uint32 = 1 << iota
	bitA
)

// indexed by prev<<2 | cur, with each state packed as A<<1 | B
var transitions = [16]int8{
	0, -1, 1, 0,
	1, 0, 0, -1,
	-1, 0, 0, 1,
	0, 1, -1, 0,
}

// Counter tracks the position of a quadrature encoder, one count per edge.
// Edge and Update may be called from interrupt handlers; nothing blocks.
type Counter struct {
	levels  atomic.Uint32
	count   atomic.Int32
	invalid atomic.Uint32
}

// NewCounter starts a counter at zero with the phases at the given levels.
func NewCounter(a, b bool) *Counter {
	c := &Counter{}
	c.levels.Store(pack(a, b))
	return c
}

func pack(a, b bool) (state uint32) {
	if a {
		state |= bitA
	}
	if b {
		state |= bitB
	}
	return
}

// Edge records a level change on one phase.
func (c *Counter) Edge(phase Phase, level bool) {
	bit := bitA
	if phase == PhaseB {
		bit = bitB
	}

	for {
		prev := c.levels.Load()
		cur := prev &^ bit
		if level {
			cur |= bit
		}
		if c.levels.CompareAndSwap(prev, cur) {
			c.step(prev, cur)
			return
		}
	}
}

// Update records a sample of both phases.
func (c *Counter) Update(a, b bool) {
	cur := pack(a, b)
	prev := c.levels.Swap(cur)
	c.step(prev, cur)
}

func (c *Counter) step(prev, cur uint32) {
	if prev == cur {
		return
	}
	if prev^cur == bitA|bitB {
		// both phases moved at once, direction unknown
		c.invalid.Add(1)
		return
	}
	c.count.Add(int32(transitions[prev<<2|cur]))
}

func (c *Counter) Count() int32 {
	return c.count.Load()
}

// Detents converts the edge count to mechanical clicks for an encoder with
// edgesPerDetent edges per click (4 for most panel encoders).
func (c *Counter) Detents(edgesPerDetent int32) int32 {
	if edgesPerDetent <= 0 {
		return c.Count()
	}
	return c.Count() / edgesPerDetent
}

// Invalid reports how many transitions skipped a state.
func (c *Counter) Invalid() uint32 {
	return c.invalid.Load()
}

func (c *Counter) Reset() {
	c.count.Store(0)
	c.invalid.Store(0)
}
