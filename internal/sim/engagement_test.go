package sim

import (
	"math"
	"testing"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
)

func collectProjectiles(w *World) map[registry.Entity]*Projectile {
	found := map[registry.Entity]*Projectile{}
	w.projectiles.Each(func(id registry.Entity, shot *Projectile) bool {
		found[id] = shot
		return true
	})
	return found
}

func TestTowerFiresAtClosestTarget(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 0
	lvl.Tower.Range = 10
	lvl.Tower.MuzzleOffset = [3]float64{}
	w := NewWorld(lvl, nil, nil, nil)

	w.SpawnTarget(geom.Vec3{X: 5})
	w.SpawnTarget(geom.Vec3{X: 8})
	w.BuildTower("missile", geom.Vec3{})

	w.Step(0.6)

	shots := collectProjectiles(w)
	if len(shots) != 1 {
		t.Fatalf("expected exactly one projectile, got %d", len(shots))
	}
	for _, shot := range shots {
		if math.Abs(shot.Direction.X-5) > 0.01 || math.Abs(shot.Direction.Z) > 0.01 {
			t.Fatalf("expected aim at the distance-5 target, got %+v", shot.Direction)
		}
	}
}

func TestEquidistantTieGoesToEarliestSpawned(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 0
	lvl.Tower.Range = 10
	lvl.Tower.MuzzleOffset = [3]float64{}
	w := NewWorld(lvl, nil, nil, nil)

	w.SpawnTarget(geom.Vec3{X: 5})
	w.SpawnTarget(geom.Vec3{X: -5})
	w.BuildTower("missile", geom.Vec3{})

	w.Step(0.6)

	shots := collectProjectiles(w)
	if len(shots) != 1 {
		t.Fatalf("expected exactly one projectile, got %d", len(shots))
	}
	for _, shot := range shots {
		if shot.Direction.X <= 0 {
			t.Fatalf("expected the earlier-spawned +X target to win the tie, got %+v", shot.Direction)
		}
	}
}

func TestTargetAtExactRangeIsIgnored(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 0
	lvl.Tower.Range = 5
	lvl.Tower.MuzzleOffset = [3]float64{}
	w := NewWorld(lvl, nil, nil, nil)

	id := w.SpawnTarget(geom.Vec3{X: 5})
	w.BuildTower("missile", geom.Vec3{})

	w.Step(0.6)
	if got := len(collectProjectiles(w)); got != 0 {
		t.Fatalf("target at exactly range must not be engaged, got %d projectiles", got)
	}

	// The empty scan still spent the shot window: moving the target into
	// range fires only after another full interval.
	w.transforms.Get(id).Position = geom.Vec3{X: 3}
	w.Step(0.2)
	if got := len(collectProjectiles(w)); got != 0 {
		t.Fatalf("cooldown must reset on an empty scan, got %d projectiles", got)
	}
	w.Step(0.4)
	if got := len(collectProjectiles(w)); got != 1 {
		t.Fatalf("expected a shot after the next full interval, got %d projectiles", got)
	}
}

func TestMuzzleOffsetShiftsProjectileOrigin(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 0
	w := NewWorld(lvl, nil, nil, nil)

	w.SpawnTarget(geom.Vec3{X: 1, Z: 5})
	w.BuildTower("missile", geom.Vec3{X: 1, Y: 0, Z: 1})

	w.Step(0.6)

	shots := collectProjectiles(w)
	if len(shots) != 1 {
		t.Fatalf("expected one projectile, got %d", len(shots))
	}
	for id, shot := range shots {
		tr := w.transforms.Get(id)
		muzzle := geom.Vec3{X: 1, Y: 2, Z: -1}
		moved := shot.Direction.Normalize().Scale(shot.Speed * 0.6)
		want := muzzle.Add(moved)
		if geom.Distance(tr.Position, want) > 1e-6 {
			t.Fatalf("expected projectile advanced from muzzle %+v, got %+v", want, tr.Position)
		}
		if math.Abs(shot.Direction.Y+2) > 0.02 || math.Abs(shot.Direction.Z-6) > 0.02 {
			t.Fatalf("expected aim from muzzle to target, got %+v", shot.Direction)
		}
	}
}
