package gameplay

import (
	"context"

	"gatewatch/server/logging"
)

const (
	// EventTargetSpawned is emitted when a target enters the world.
	EventTargetSpawned logging.EventType = "gameplay.target_spawned"
	// EventTargetDied is emitted when a target's health is depleted.
	EventTargetDied logging.EventType = "gameplay.target_died"
	// EventTargetBreached is emitted when a target walks off the end of the route.
	EventTargetBreached logging.EventType = "gameplay.target_breached"
	// EventPlayerDamaged is emitted when a breach costs the defender health.
	EventPlayerDamaged logging.EventType = "gameplay.player_damaged"
	// EventGameOver is emitted once, when defender health reaches zero.
	EventGameOver logging.EventType = "gameplay.game_over"
	// EventTowerBuilt is emitted when a tower is placed.
	EventTowerBuilt logging.EventType = "gameplay.tower_built"
	// EventProjectileFired is emitted when a tower launches a projectile.
	EventProjectileFired logging.EventType = "gameplay.projectile_fired"
	// EventProjectileHit is emitted when a projectile damages a target.
	EventProjectileHit logging.EventType = "gameplay.projectile_hit"
)

// TargetSpawnedPayload captures spawn placement for a new target.
type TargetSpawnedPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlayerDamagedPayload captures the health change from a breach.
type PlayerDamagedPayload struct {
	Amount    int `json:"amount"`
	Remaining int `json:"remaining"`
}

// TowerBuiltPayload captures tower placement metadata.
type TowerBuiltPayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// ProjectileHitPayload captures damage application.
type ProjectileHitPayload struct {
	Damage int `json:"damage"`
}

// TargetSpawned publishes a target spawn event.
func TargetSpawned(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TargetSpawnedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTargetSpawned,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// TargetDied publishes a target death event.
func TargetDied(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTargetDied,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
	})
}

// TargetBreached publishes a breach event.
func TargetBreached(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTargetBreached,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
	})
}

// PlayerDamaged publishes a defender health change.
func PlayerDamaged(ctx context.Context, pub logging.Publisher, tick uint64, payload PlayerDamagedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPlayerDamaged,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindPlayer},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// GameOver publishes the terminal defeat event.
func GameOver(ctx context.Context, pub logging.Publisher, tick uint64) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventGameOver,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityError,
		Category: logging.CategoryGameplay,
	})
}

// TowerBuilt publishes a tower placement event.
func TowerBuilt(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload TowerBuiltPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTowerBuilt,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}

// ProjectileFired publishes a launch event naming the tower and its target.
func ProjectileFired(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, targets []logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProjectileFired,
		Tick:     tick,
		Actor:    actor,
		Targets:  targets,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
	})
}

// ProjectileHit publishes a damage event naming the struck target.
func ProjectileHit(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, target logging.EntityRef, payload ProjectileHitPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProjectileHit,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryGameplay,
		Payload:  payload,
	})
}
