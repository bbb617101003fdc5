package sim

import (
	"math"
	"testing"

	"gatewatch/server/internal/geom"
)

func TestTargetReachesFirstWaypointWithinBudget(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	id := w.SpawnTarget(geom.Vec3{})

	dt := 1.0 / 15.0
	for i := 0; i < 480; i++ {
		w.Step(dt)
	}

	target := w.targets.Get(id)
	if target == nil {
		t.Fatalf("target disappeared")
	}
	if target.PathIndex != 1 {
		t.Fatalf("expected path index 1 after 32s at speed 0.25, got %d", target.PathIndex)
	}
	tr := w.transforms.Get(id)
	if math.Abs(tr.Position.X-6) > 0.05 {
		t.Fatalf("expected X near first waypoint, got %v", tr.Position.X)
	}
	if tr.Position.Z <= 2 {
		t.Fatalf("expected progress toward second waypoint, got Z=%v", tr.Position.Z)
	}
}

func TestArrivalTickAdvancesIndexWithoutMoving(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 1
	w := NewWorld(lvl, nil, nil, nil)
	id := w.SpawnTarget(geom.Vec3{X: 5.9, Z: 2})

	w.Step(0.2)

	target := w.targets.Get(id)
	if target.PathIndex != 1 {
		t.Fatalf("expected index advance within one step of the waypoint, got %d", target.PathIndex)
	}
	tr := w.transforms.Get(id)
	if tr.Position.X != 5.9 || tr.Position.Z != 2 {
		t.Fatalf("expected no movement on the arrival tick, got %+v", tr.Position)
	}
}

func TestMarchKeepsOwnHeight(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	id := w.SpawnTarget(geom.Vec3{Y: 1.5})

	for i := 0; i < 30; i++ {
		w.Step(1.0 / 15.0)
	}

	tr := w.transforms.Get(id)
	if tr.Position.Y != 1.5 {
		t.Fatalf("expected Y preserved at 1.5, got %v", tr.Position.Y)
	}
}

func TestYawFacesCurrentWaypoint(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	id := w.SpawnTarget(geom.Vec3{X: 6, Z: 0})

	w.Step(1.0 / 15.0)

	tr := w.transforms.Get(id)
	if math.Abs(tr.Position.X-6) > 1e-9 {
		t.Fatalf("expected straight march along Z, got X=%v", tr.Position.X)
	}
	if math.Abs(tr.Yaw) > 1e-9 {
		t.Fatalf("expected yaw 0 facing +Z, got %v", tr.Yaw)
	}
}
