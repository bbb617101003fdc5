package sim

import (
	"context"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
	"gatewatch/server/logging"
	"gatewatch/server/logging/gameplay"
)

// advanceProjectiles flies each projectile along its aim direction, applies
// impact damage, and expires time-outs. A hit destroys the projectile
// immediately; the struck target keeps standing until the next tick's
// lifecycle resolution observes its health.
//
// Impact picks the closest target inside the impact radius, lowest ID on
// ties. Expiry is checked after impact, so a projectile reaching a target on
// its final tick still connects.
func (w *World) advanceProjectiles(dt float64) {
	radius := w.lvl.Projectile.ImpactRadius
	w.projectiles.Each(func(id registry.Entity, shot *Projectile) bool {
		tr := w.transforms.Get(id)
		if tr == nil {
			w.arena.Destroy(id)
			return true
		}
		tr.Position = tr.Position.Add(shot.Direction.Normalize().Scale(shot.Speed * dt))

		var hit registry.Entity
		closest := radius
		w.targets.Each(func(tid registry.Entity, _ *Target) bool {
			ttr := w.transforms.Get(tid)
			if ttr == nil {
				return true
			}
			if d := geom.Distance(tr.Position, ttr.Position); d < closest {
				closest = d
				hit = tid
			}
			return true
		})
		if hit != 0 {
			if health := w.healths.Get(hit); health != nil {
				health.Current -= shot.Damage
			}
			w.metrics.RecordProjectileHit()
			gameplay.ProjectileHit(context.Background(), w.publisher, w.tick,
				w.entityRef(id, logging.EntityKindProjectile),
				w.entityRef(hit, logging.EntityKindTarget),
				gameplay.ProjectileHitPayload{Damage: shot.Damage})
			w.arena.Destroy(id)
			return true
		}

		shot.TTL -= dt
		if shot.TTL <= 0 {
			w.arena.Destroy(id)
		}
		return true
	})
}
