package trail

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/mlange-42/ark/ecs"

	"github.com/yaelren/3DTrail/components"
	"github.com/yaelren/3DTrail/gradient"
	"github.com/yaelren/3DTrail/systems"
)

type expired struct {
	entity ecs.Entity
	slot   components.Slot
}

// choosePool returns the pool a new particle goes to: uniformly random in
// random-per-particle mode, otherwise the shared pool.
func (e *Engine) choosePool() int {
	if len(e.pools) > 1 && e.controller.Mode() == gradient.ModeRandomPerParticle {
		return e.rng.Intn(len(e.pools))
	}
	return 0
}

// spawn places one particle at pos. It reports whether a spawn was
// attempted; a full pool drops the particle silently.
func (e *Engine) spawn(pos mgl32.Vec3, speed float32) bool {
	if len(e.pools) == 0 {
		return false
	}
	idx := e.choosePool()
	p := e.pools[idx]
	slot, ok := p.Acquire()
	if !ok {
		e.counters.dropped++
		e.collector.RecordDrop()
		return true
	}

	e.nextID++
	t, m, l := systems.Spawn(e.nextID, pos, speed, e.clock, &e.params, e.rng)
	s := components.Slot{Pool: idx, Index: slot}
	p.WriteTransform(slot, t.Position, t.Rotation, t.Scale)
	e.mapper.NewEntity(&t, &m, &l, &s)

	e.live++
	e.counters.spawned++
	e.collector.RecordSpawn()
	return true
}

// update steps every live particle and stages its transform. Expired
// particles are collected during the query and removed after it, since the
// world cannot change while a query is open.
func (e *Engine) update(env *systems.Env) {
	dead := e.expiredBuffer[:0]

	query := e.filter.Query()
	for query.Next() {
		t, m, l, s := query.Get()
		if !systems.Step(t, m, l, &e.params, env) {
			dead = append(dead, expired{entity: query.Entity(), slot: *s})
			continue
		}
		if s.Pool < len(e.pools) {
			e.pools[s.Pool].WriteTransform(s.Index, t.Position, t.Rotation, t.Scale)
		}
	}

	for _, d := range dead {
		if d.slot.Pool < len(e.pools) {
			e.pools[d.slot.Pool].Release(d.slot.Index)
		}
		e.mapper.Remove(d.entity)
		e.live--
		e.counters.expired++
		e.collector.RecordExpire()
	}
	e.expiredBuffer = dead[:0]
}
