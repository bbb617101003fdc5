package sim

import "testing"

func TestCommandBufferWraparound(t *testing.T) {
	buffer := NewCommandBuffer(3)
	cmds := []Command{
		{Origin: "a", Type: CommandSpawnEnemy},
		{Origin: "b", Type: CommandSpawnEnemy},
		{Origin: "c", Type: CommandSpawnEnemy},
	}
	for _, cmd := range cmds {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed for %+v", cmd)
		}
	}
	if buffer.Push(Command{Origin: "overflow"}) {
		t.Fatalf("expected push to fail when buffer full")
	}
	if got := buffer.Overflow(); got != 1 {
		t.Fatalf("expected overflow count 1, got %d", got)
	}
	drained := buffer.Drain()
	if len(drained) != len(cmds) {
		t.Fatalf("expected %d commands, got %d", len(cmds), len(drained))
	}
	for i, cmd := range drained {
		if cmd.Origin != cmds[i].Origin {
			t.Fatalf("expected drain order %v, got %v", cmds[i].Origin, cmd.Origin)
		}
	}
	// Push again to ensure the indices wrap correctly.
	for _, cmd := range []Command{{Origin: "d"}, {Origin: "e"}} {
		if !buffer.Push(cmd) {
			t.Fatalf("expected push to succeed after drain for %+v", cmd)
		}
	}
	wrapped := buffer.Drain()
	if len(wrapped) != 2 {
		t.Fatalf("expected 2 commands after wraparound, got %d", len(wrapped))
	}
	if wrapped[0].Origin != "d" || wrapped[1].Origin != "e" {
		t.Fatalf("unexpected order after wraparound: %+v", wrapped)
	}
}

func TestCommandBufferDrainEmpty(t *testing.T) {
	buffer := NewCommandBuffer(4)
	if drained := buffer.Drain(); drained != nil {
		t.Fatalf("expected nil drain on empty buffer, got %+v", drained)
	}
	if got := buffer.Len(); got != 0 {
		t.Fatalf("expected empty buffer, got %d", got)
	}
}

func TestCommandBufferMinimumCapacity(t *testing.T) {
	buffer := NewCommandBuffer(0)
	if got := buffer.Capacity(); got != 1 {
		t.Fatalf("expected capacity clamp to 1, got %d", got)
	}
}
