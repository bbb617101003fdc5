package registry

import "testing"

type health struct {
	Current int
}

func TestNewAssignsMonotonicIDs(t *testing.T) {
	arena := NewArena()
	first := arena.New()
	second := arena.New()
	if first != 1 || second != 2 {
		t.Fatalf("expected IDs 1 and 2, got %d and %d", first, second)
	}
	if arena.Len() != 2 {
		t.Fatalf("expected 2 live entities, got %d", arena.Len())
	}
}

func TestDestroyMarksOnce(t *testing.T) {
	arena := NewArena()
	id := arena.New()

	if !arena.Destroy(id) {
		t.Fatal("first destroy should report the mark")
	}
	if arena.Destroy(id) {
		t.Fatal("second destroy of the same entity must be a no-op")
	}
	if arena.Alive(id) {
		t.Fatal("marked entity must not report alive")
	}
	if arena.Destroy(9999) {
		t.Fatal("destroying an unknown entity must be a no-op")
	}
}

func TestEachSkipsMarkedEntities(t *testing.T) {
	arena := NewArena()
	a := arena.New()
	b := arena.New()
	c := arena.New()
	arena.Destroy(b)

	var visited []Entity
	arena.Each(func(id Entity) bool {
		visited = append(visited, id)
		return true
	})
	if len(visited) != 2 || visited[0] != a || visited[1] != c {
		t.Fatalf("expected [%d %d], got %v", a, c, visited)
	}
}

func TestSweepDropsComponents(t *testing.T) {
	arena := NewArena()
	store := NewStore[health](arena)

	a := arena.New()
	b := arena.New()
	store.Set(a, health{Current: 3})
	store.Set(b, health{Current: 5})

	arena.Destroy(a)
	if freed := arena.Sweep(); freed != 1 {
		t.Fatalf("expected 1 freed, got %d", freed)
	}
	if store.Get(a) != nil {
		t.Fatal("swept entity must lose its components")
	}
	if got := store.Get(b); got == nil || got.Current != 5 {
		t.Fatalf("surviving component damaged: %+v", got)
	}
	if arena.Sweep() != 0 {
		t.Fatal("second sweep must free nothing")
	}
}

func TestStoreMutationThroughPointer(t *testing.T) {
	arena := NewArena()
	store := NewStore[health](arena)
	id := arena.New()
	store.Set(id, health{Current: 3})

	store.Get(id).Current--
	if got := store.Get(id).Current; got != 2 {
		t.Fatalf("expected in-place mutation to 2, got %d", got)
	}
}

func TestStoreEachFollowsCreationOrder(t *testing.T) {
	arena := NewArena()
	store := NewStore[health](arena)

	ids := []Entity{arena.New(), arena.New(), arena.New()}
	// Attach out of creation order; iteration must not care.
	store.Set(ids[2], health{Current: 30})
	store.Set(ids[0], health{Current: 10})

	var visited []Entity
	store.Each(func(id Entity, _ *health) bool {
		visited = append(visited, id)
		return true
	})
	if len(visited) != 2 || visited[0] != ids[0] || visited[1] != ids[2] {
		t.Fatalf("expected creation order [%d %d], got %v", ids[0], ids[2], visited)
	}
}

func TestIDsNotReusedAfterSweep(t *testing.T) {
	arena := NewArena()
	first := arena.New()
	arena.Destroy(first)
	arena.Sweep()
	next := arena.New()
	if next == first {
		t.Fatalf("entity ID %d reused after sweep", first)
	}
}
