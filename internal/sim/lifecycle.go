package sim

import (
	"context"

	"gatewatch/server/internal/registry"
	"gatewatch/server/logging"
	"gatewatch/server/logging/gameplay"
)

// resolveLifecycle removes targets that breached or died. Breach is checked
// first, so a dead target standing past the last waypoint counts as a
// breach. Destroy's return value guards the events: no matter how often a
// condition is observed, each target produces one removal and one event.
func (w *World) resolveLifecycle() {
	w.targets.Each(func(id registry.Entity, target *Target) bool {
		if target.PathIndex >= len(w.waypoints) {
			if w.arena.Destroy(id) {
				w.recordBreach(id)
			}
			return true
		}
		if health := w.healths.Get(id); health != nil && health.Current <= 0 {
			if w.arena.Destroy(id) {
				w.queued = append(w.queued, Event{Type: EventTargetDied, Tick: w.tick, Entity: id})
				w.metrics.RecordTargetDied()
				gameplay.TargetDied(context.Background(), w.publisher, w.tick,
					w.entityRef(id, logging.EntityKindTarget))
			}
		}
		return true
	})
}

// recordBreach removes the breaching target's cost from the defender.
// Health saturates at zero, and the terminal event fires exactly once, on
// the transition to zero.
func (w *World) recordBreach(id registry.Entity) {
	ctx := context.Background()
	w.queued = append(w.queued, Event{Type: EventTargetBreached, Tick: w.tick, Entity: id})
	w.metrics.RecordTargetBreached()
	gameplay.TargetBreached(ctx, w.publisher, w.tick, w.entityRef(id, logging.EntityKindTarget))

	if w.player.Health > 0 {
		w.player.Health--
		w.queued = append(w.queued, Event{
			Type: EventPlayerDamaged, Tick: w.tick,
			Amount: 1, Remaining: w.player.Health,
		})
		gameplay.PlayerDamaged(ctx, w.publisher, w.tick,
			gameplay.PlayerDamagedPayload{Amount: 1, Remaining: w.player.Health})
	}
	if w.player.Health == 0 && !w.gameOverSent {
		w.gameOverSent = true
		w.player.GameOver = true
		w.queued = append(w.queued, Event{Type: EventGameOver, Tick: w.tick})
		gameplay.GameOver(ctx, w.publisher, w.tick)
	}
}
