package sim

import (
	"math"
	"testing"

	"gatewatch/server/internal/geom"
)

func TestProjectileHitsClosestTargetInRadius(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 0
	w := NewWorld(lvl, nil, nil, nil)

	victim := w.SpawnTarget(geom.Vec3{X: 1})
	bystander := w.SpawnTarget(geom.Vec3{X: 1, Z: 0.2})
	w.fireProjectile(0, victim, geom.Vec3{}, geom.Vec3{X: 1})

	out := w.Step(0.12)

	if got := w.healths.Get(victim).Current; got != lvl.Enemy.Health-1 {
		t.Fatalf("expected the closer target damaged, health %d", got)
	}
	if got := w.healths.Get(bystander).Current; got != lvl.Enemy.Health {
		t.Fatalf("expected the bystander untouched, health %d", got)
	}
	if got := len(collectProjectiles(w)); got != 0 {
		t.Fatalf("expected projectile destroyed on impact, got %d", got)
	}
	if len(eventsOfType(out, EventTargetDied)) != 0 {
		t.Fatalf("a non-lethal hit must not kill, got %+v", out.Events)
	}
}

func TestLethalHitObservedNextTick(t *testing.T) {
	lvl := testLevel()
	lvl.Enemy.Speed = 0
	w := NewWorld(lvl, nil, nil, nil)

	victim := w.SpawnTarget(geom.Vec3{X: 1})
	w.healths.Get(victim).Current = 1
	w.fireProjectile(0, victim, geom.Vec3{}, geom.Vec3{X: 1})

	out := w.Step(0.12)
	if len(eventsOfType(out, EventTargetDied)) != 0 {
		t.Fatalf("death resolves on the following tick, got %+v", out.Events)
	}
	if w.TargetCount() != 1 {
		t.Fatalf("expected struck target still standing, got %d", w.TargetCount())
	}

	out = w.Step(1.0 / 15.0)
	died := eventsOfType(out, EventTargetDied)
	if len(died) != 1 || died[0].Entity != victim {
		t.Fatalf("expected the struck target to die next tick, got %+v", out.Events)
	}
	if w.TargetCount() != 0 {
		t.Fatalf("expected dead target removed, got %d", w.TargetCount())
	}
}

func TestProjectileExpiresWithoutSideEffects(t *testing.T) {
	lvl := testLevel()
	lvl.Projectile.Lifetime = 0.25
	w := NewWorld(lvl, nil, nil, nil)

	w.fireProjectile(0, 0, geom.Vec3{}, geom.Vec3{X: 1})

	w.Step(0.1)
	w.Step(0.1)
	if got := len(collectProjectiles(w)); got != 1 {
		t.Fatalf("expected projectile alive before its deadline, got %d", got)
	}

	out := w.Step(0.1)
	if got := len(collectProjectiles(w)); got != 0 {
		t.Fatalf("expected projectile expired, got %d", got)
	}
	if len(out.Events) != 0 {
		t.Fatalf("expiry must be silent, got %+v", out.Events)
	}
	if w.EntityCount() != 0 {
		t.Fatalf("expected empty world after expiry, got %d entities", w.EntityCount())
	}
}

func TestFlightSpeedIndependentOfAimMagnitude(t *testing.T) {
	lvl := testLevel()
	w := NewWorld(lvl, nil, nil, nil)

	short := w.fireProjectile(0, 0, geom.Vec3{}, geom.Vec3{X: 2})
	long := w.fireProjectile(0, 0, geom.Vec3{Z: 5}, geom.Vec3{X: 200})

	w.Step(0.12)

	wantTravel := lvl.Projectile.Speed * 0.12
	shortPos := w.transforms.Get(short).Position
	longPos := w.transforms.Get(long).Position
	if math.Abs(shortPos.X-wantTravel) > 1e-9 {
		t.Fatalf("expected travel %v, got %+v", wantTravel, shortPos)
	}
	if math.Abs(longPos.X-wantTravel) > 1e-9 || longPos.Z != 5 {
		t.Fatalf("expected travel %v regardless of aim length, got %+v", wantTravel, longPos)
	}
}
