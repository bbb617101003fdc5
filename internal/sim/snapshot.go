package sim

import (
	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
)

// EntitySnapshot is one entity's wire form. Kind-specific fields are zero
// for other kinds and elided from JSON.
type EntitySnapshot struct {
	ID        registry.Entity `json:"id"`
	Kind      string          `json:"kind"`
	Position  geom.Vec3       `json:"position"`
	Yaw       float64         `json:"yaw"`
	Health    int             `json:"health,omitempty"`
	PathIndex int             `json:"pathIndex,omitempty"`
	Cooldown  float64         `json:"cooldown,omitempty"`
}

// WorldSnapshot captures the state exposed to non-simulation callers.
type WorldSnapshot struct {
	Tick     uint64           `json:"tick"`
	Player   PlayerState      `json:"player"`
	Entities []EntitySnapshot `json:"entities"`
	Overlays []PathOverlay    `json:"paths,omitempty"`
}

// Snapshot lists entities in creation order, which keeps broadcast frames
// stable across ticks.
func (w *World) Snapshot() WorldSnapshot {
	snap := WorldSnapshot{Tick: w.tick, Player: w.player}
	w.arena.Each(func(id registry.Entity) bool {
		tr := w.transforms.Get(id)
		if tr == nil {
			return true
		}
		entity := EntitySnapshot{ID: id, Position: tr.Position, Yaw: tr.Yaw}
		switch {
		case w.targets.Has(id):
			entity.Kind = "target"
			entity.PathIndex = w.targets.Get(id).PathIndex
			if health := w.healths.Get(id); health != nil {
				entity.Health = health.Current
			}
		case w.towers.Has(id):
			entity.Kind = "tower"
			entity.Cooldown = w.towers.Get(id).CooldownRemaining
		case w.projectiles.Has(id):
			entity.Kind = "projectile"
		default:
			entity.Kind = "unknown"
		}
		snap.Entities = append(snap.Entities, entity)
		return true
	})
	snap.Overlays = w.snapshotOverlays()
	return snap
}
