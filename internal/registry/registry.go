// Package registry provides the entity arena backing the simulation: stable
// uint64 identifiers, typed component stores, and deferred destruction so
// systems never observe a half-removed entity mid-tick.
package registry

// Entity is a stable identifier for one simulation object. IDs are assigned
// monotonically from 1 and never reused within a run.
type Entity uint64

type componentSet interface {
	drop(Entity)
}

// Arena owns the live entity set. Iteration follows creation order, which
// keeps per-tick processing and tie-breaking deterministic.
type Arena struct {
	nextID Entity
	order  []Entity
	live   map[Entity]struct{}
	doomed map[Entity]struct{}
	stores []componentSet
}

func NewArena() *Arena {
	return &Arena{
		live:   make(map[Entity]struct{}),
		doomed: make(map[Entity]struct{}),
	}
}

// New allocates a fresh entity.
func (a *Arena) New() Entity {
	a.nextID++
	id := a.nextID
	a.order = append(a.order, id)
	a.live[id] = struct{}{}
	return id
}

// Alive reports whether the entity exists and has not been marked for
// destruction.
func (a *Arena) Alive(id Entity) bool {
	if _, ok := a.live[id]; !ok {
		return false
	}
	_, dead := a.doomed[id]
	return !dead
}

// Destroy marks an entity for removal at the next Sweep. It reports whether
// the mark was applied now, so callers can emit exactly one notification per
// entity no matter how many systems observe the same condition.
func (a *Arena) Destroy(id Entity) bool {
	if _, ok := a.live[id]; !ok {
		return false
	}
	if _, dead := a.doomed[id]; dead {
		return false
	}
	a.doomed[id] = struct{}{}
	return true
}

// Sweep removes every marked entity and its components, returning how many
// were freed. Called once per tick after all systems have run.
func (a *Arena) Sweep() int {
	if len(a.doomed) == 0 {
		return 0
	}
	kept := a.order[:0]
	for _, id := range a.order {
		if _, dead := a.doomed[id]; dead {
			delete(a.live, id)
			for _, s := range a.stores {
				s.drop(id)
			}
			continue
		}
		kept = append(kept, id)
	}
	freed := len(a.order) - len(kept)
	a.order = kept
	for id := range a.doomed {
		delete(a.doomed, id)
	}
	return freed
}

// Each visits live entities in creation order. Entities marked for
// destruction are skipped. The visitor returns false to stop early.
func (a *Arena) Each(fn func(Entity) bool) {
	for _, id := range a.order {
		if _, dead := a.doomed[id]; dead {
			continue
		}
		if !fn(id) {
			return
		}
	}
}

// Len is the number of live, unmarked entities.
func (a *Arena) Len() int {
	return len(a.live) - len(a.doomed)
}

func (a *Arena) attach(s componentSet) {
	a.stores = append(a.stores, s)
}
