package sim

import (
	"context"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
	"gatewatch/server/logging"
	"gatewatch/server/logging/gameplay"
)

// tickTowers counts down every tower's cooldown and fires at the closest
// target in range when it elapses. The cooldown resets whether or not a
// target was available; an empty scan wastes the shot window.
//
// Candidates must be strictly closer than the tower's range, measured from
// the muzzle. Among equally close candidates the earliest-spawned (lowest
// ID) wins, which iteration order gives us for free.
func (w *World) tickTowers(dt float64) {
	w.towers.Each(func(id registry.Entity, tower *Tower) bool {
		tower.CooldownRemaining -= dt
		if tower.CooldownRemaining > 0 {
			return true
		}
		tower.CooldownRemaining = tower.Interval

		anchor := w.transforms.Get(id)
		if anchor == nil {
			return true
		}
		muzzle := anchor.Position.Add(tower.MuzzleOffset)

		var chosen registry.Entity
		closest := tower.Range
		w.targets.Each(func(tid registry.Entity, _ *Target) bool {
			tr := w.transforms.Get(tid)
			if tr == nil {
				return true
			}
			if d := geom.Distance(muzzle, tr.Position); d < closest {
				closest = d
				chosen = tid
			}
			return true
		})
		if chosen == 0 {
			return true
		}

		aim := w.transforms.Get(chosen).Position.Sub(muzzle)
		w.fireProjectile(id, chosen, muzzle, aim)
		return true
	})
}

// fireProjectile spawns a projectile at the muzzle aimed at where the target
// stood when the tower fired. The aim vector is kept as-is; flight speed
// comes from the projectile stats, not the vector's length.
func (w *World) fireProjectile(tower, target registry.Entity, muzzle, aim geom.Vec3) registry.Entity {
	id := w.arena.New()
	w.transforms.Set(id, Transform{
		Position: muzzle,
		Yaw:      geom.YawToward(muzzle, muzzle.Add(aim)),
	})
	w.projectiles.Set(id, Projectile{
		Direction: aim,
		Speed:     w.lvl.Projectile.Speed,
		TTL:       w.lvl.Projectile.Lifetime,
		Damage:    w.lvl.Projectile.Damage,
	})
	w.metrics.RecordProjectileFired()
	gameplay.ProjectileFired(context.Background(), w.publisher, w.tick,
		w.entityRef(tower, logging.EntityKindTower),
		[]logging.EntityRef{w.entityRef(target, logging.EntityKindTarget)})
	return id
}
