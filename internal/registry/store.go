package registry

// Store holds one component type keyed by entity. Values are stored behind
// pointers so systems can mutate components in place.
type Store[T any] struct {
	arena *Arena
	items map[Entity]*T
}

// NewStore attaches a component store to an arena. Sweeping the arena drops
// the store's records for destroyed entities.
func NewStore[T any](arena *Arena) *Store[T] {
	s := &Store[T]{arena: arena, items: make(map[Entity]*T)}
	arena.attach(s)
	return s
}

// Set attaches a component to an entity, replacing any existing record, and
// returns the stored pointer.
func (s *Store[T]) Set(id Entity, value T) *T {
	ptr := &value
	s.items[id] = ptr
	return ptr
}

// Get returns the component pointer for an entity, or nil when absent.
func (s *Store[T]) Get(id Entity) *T {
	return s.items[id]
}

// Has reports whether the entity carries this component.
func (s *Store[T]) Has(id Entity) bool {
	_, ok := s.items[id]
	return ok
}

// Each visits attached components in the arena's creation order, skipping
// entities marked for destruction.
func (s *Store[T]) Each(fn func(Entity, *T) bool) {
	s.arena.Each(func(id Entity) bool {
		ptr, ok := s.items[id]
		if !ok {
			return true
		}
		return fn(id, ptr)
	})
}

// Len is the number of stored components, including ones whose entity is
// marked but not yet swept.
func (s *Store[T]) Len() int {
	return len(s.items)
}

func (s *Store[T]) drop(id Entity) {
	delete(s.items, id)
}
