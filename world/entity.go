package world

import (
	"strconv"

	"go.uber.org/zap/zapcore"
)

// Entity identifies an entity in a World. The lower 32 bits hold the slot
// index, the upper 32 bits hold the generation of that slot. A despawned
// entity bumps the generation, so stale ids never resolve to a new entity.
type Entity uint64

// NoEntity is never handed out by a World.
const NoEntity Entity = 0

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

func (e Entity) Index() uint32      { return uint32(e) }
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

func (e Entity) String() string {
	if e == NoEntity {
		return "none"
	}

	return strconv.FormatUint(uint64(e.Index()), 10) + "v" + strconv.FormatUint(uint64(e.Generation()), 10)
}

// MarshalLogObject lets an Entity be logged with zap.Object.
func (e Entity) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint32("index", e.Index())
	enc.AddUint32("generation", e.Generation())
	return nil
}

// entityPool allocates generational ids with a free list of released slots.
// Slot zero is never used so that NoEntity stays invalid.
type entityPool struct {
	generations []uint32
	free        []uint32
	alive       int
}

func (p *entityPool) allocate() Entity {
	p.alive += 1

	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		return newEntity(idx, p.generations[idx])
	}

	if len(p.generations) == 0 {
		// reserve slot zero
		p.generations = append(p.generations, 0)
	}

	idx := uint32(len(p.generations))
	p.generations = append(p.generations, 0)
	return newEntity(idx, 0)
}

func (p *entityPool) contains(e Entity) bool {
	idx := e.Index()
	if idx == 0 || int(idx) >= len(p.generations) {
		return false
	}

	return p.generations[idx] == e.Generation()
}

func (p *entityPool) release(e Entity) bool {
	if !p.contains(e) {
		return false
	}

	idx := e.Index()
	p.generations[idx] += 1
	p.free = append(p.free, idx)
	p.alive -= 1
	return true
}
