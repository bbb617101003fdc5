// Package sim is the headless tower-defense simulation: targets march a
// waypoint route, towers fire at them, breaches cost the defender health.
// The world is single-threaded; the only concurrency it owns is the async
// path task pool, which reports back through buffered channels drained once
// per tick.
package sim

import (
	"context"
	"strconv"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/level"
	"gatewatch/server/internal/nav"
	"gatewatch/server/internal/registry"
	"gatewatch/server/internal/telemetry"
	"gatewatch/server/logging"
	"gatewatch/server/logging/gameplay"
	"gatewatch/server/logging/pathfind"
)

// PlayerState is the defender's standing. Money is tracked but nothing
// spends it yet.
type PlayerState struct {
	Health   int  `json:"health"`
	Money    int  `json:"money"`
	GameOver bool `json:"gameOver"`
}

type World struct {
	lvl       level.Level
	field     *nav.Field
	waypoints []geom.Vec2

	arena       *registry.Arena
	transforms  *registry.Store[Transform]
	targets     *registry.Store[Target]
	healths     *registry.Store[Health]
	towers      *registry.Store[Tower]
	projectiles *registry.Store[Projectile]

	player        PlayerState
	tasks         *TaskManager
	overlays      []PathOverlay
	queued        []Event
	tick          uint64
	clock         float64
	gameOverSent  bool
	nextQueryID   uint64
	nextOverlayID uint64

	publisher logging.Publisher
	metrics   *telemetry.Metrics
}

// NewWorld builds a world from a level, spawning its initial targets and
// tower placements. A nil field gets built from the level's terrain and nav
// settings; a nil publisher is replaced with a no-op.
func NewWorld(lvl level.Level, field *nav.Field, pub logging.Publisher, metrics *telemetry.Metrics) *World {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if field == nil {
		field = nav.NewField(lvl.Nav, lvl.Ground(), lvl.Obstacles())
	}
	arena := registry.NewArena()
	w := &World{
		lvl:         lvl,
		field:       field,
		waypoints:   lvl.Waypoints(),
		arena:       arena,
		transforms:  registry.NewStore[Transform](arena),
		targets:     registry.NewStore[Target](arena),
		healths:     registry.NewStore[Health](arena),
		towers:      registry.NewStore[Tower](arena),
		projectiles: registry.NewStore[Projectile](arena),
		player:      PlayerState{Health: lvl.Player.Health, Money: lvl.Player.Money},
		tasks:       NewTaskManager(),
		publisher:   pub,
		metrics:     metrics,
	}
	for i := 0; i < lvl.Enemy.Count; i++ {
		w.SpawnTarget(lvl.EnemySpawn())
	}
	for _, placement := range lvl.TowerPlacements() {
		w.BuildTower(placement.Kind, placement.Position)
	}
	return w
}

// Step advances the simulation by dt seconds and returns what happened.
// System order is fixed: movement, lifecycle, engagement, projectiles, path
// task polling, overlay expiry. Destroyed entities are swept at the end so
// every system inside one tick sees a consistent entity set.
func (w *World) Step(dt float64) StepOutput {
	if dt < 0 {
		dt = 0
	}
	w.tick++
	w.clock += dt

	w.advanceTargets(dt)
	w.resolveLifecycle()
	w.tickTowers(dt)
	w.advanceProjectiles(dt)
	w.pollPathTasks()
	w.expireOverlays()
	w.arena.Sweep()

	w.metrics.RecordTick()
	w.metrics.SetLiveEntities(w.arena.Len())
	w.metrics.SetPendingPathTasks(w.tasks.Pending())

	out := StepOutput{Tick: w.tick, Events: w.queued, Overlays: w.snapshotOverlays()}
	w.queued = nil
	return out
}

// SpawnTarget creates a route-walking target at the given position using the
// level's target stats.
func (w *World) SpawnTarget(pos geom.Vec3) registry.Entity {
	id := w.arena.New()
	w.transforms.Set(id, Transform{Position: pos})
	w.targets.Set(id, Target{Speed: w.lvl.Enemy.Speed})
	w.healths.Set(id, Health{Current: w.lvl.Enemy.Health})
	w.metrics.RecordTargetSpawned()
	gameplay.TargetSpawned(context.Background(), w.publisher, w.tick,
		w.entityRef(id, logging.EntityKindTarget),
		gameplay.TargetSpawnedPayload{X: pos.X, Y: pos.Y, Z: pos.Z})
	return id
}

// BuildTower places a tower at the given position. The cooldown starts full,
// so a new tower fires only after its first complete interval.
func (w *World) BuildTower(kind string, pos geom.Vec3) registry.Entity {
	if kind == "" {
		kind = "missile"
	}
	id := w.arena.New()
	w.transforms.Set(id, Transform{Position: pos})
	w.towers.Set(id, Tower{
		Kind:              kind,
		Interval:          w.lvl.Tower.Interval,
		Range:             w.lvl.Tower.Range,
		MuzzleOffset:      w.lvl.MuzzleOffset(),
		CooldownRemaining: w.lvl.Tower.Interval,
	})
	w.queued = append(w.queued, Event{
		Type:     EventTowerBuilt,
		Tick:     w.tick,
		Entity:   id,
		Kind:     kind,
		Position: &geom.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
	})
	w.metrics.RecordTowerBuilt()
	gameplay.TowerBuilt(context.Background(), w.publisher, w.tick,
		w.entityRef(id, logging.EntityKindTower),
		gameplay.TowerBuiltPayload{Kind: kind, X: pos.X, Y: pos.Y, Z: pos.Z})
	return id
}

// SubmitAsyncPath starts a path query on a worker goroutine and returns its
// query ID. The result is integrated by a later Step's poll phase.
func (w *World) SubmitAsyncPath(start, end geom.Vec3) uint64 {
	w.nextQueryID++
	id := w.nextQueryID
	w.tasks.Submit(w.field, id, start, end)
	pathfind.QuerySubmitted(context.Background(), w.publisher, w.tick, pathfind.QueryPayload{
		QueryID: id, Blocking: false,
		StartX: start.X, StartZ: start.Z, EndX: end.X, EndZ: end.Z,
	})
	return id
}

// RunBlockingPath resolves a path query on the calling goroutine and
// integrates the result immediately.
func (w *World) RunBlockingPath(start, end geom.Vec3) ([]geom.Vec3, bool, error) {
	w.nextQueryID++
	id := w.nextQueryID
	pathfind.QuerySubmitted(context.Background(), w.publisher, w.tick, pathfind.QueryPayload{
		QueryID: id, Blocking: true,
		StartX: start.X, StartZ: start.Z, EndX: end.X, EndZ: end.Z,
	})
	points, found, err := w.field.FindPath(start, end)
	w.integratePathResult(id, true, PathResult{Points: points, Found: found, Err: err})
	return points, found, err
}

// ToggleObstacle flips an obstacle on the navigation field, forcing a grid
// rebuild. In-flight async queries finish against the grid they started on.
func (w *World) ToggleObstacle(index int) (bool, error) {
	enabled, err := w.field.ToggleObstacle(index)
	if err != nil {
		return false, err
	}
	pathfind.ObstacleToggled(context.Background(), w.publisher, w.tick, pathfind.ObstaclePayload{
		Index: index, Enabled: enabled, Generation: w.field.Generation(),
	})
	return enabled, nil
}

func (w *World) pollPathTasks() {
	w.tasks.PollAll(func(task *PendingPathTask, res PathResult) {
		w.integratePathResult(task.ID, false, res)
	})
}

func (w *World) integratePathResult(queryID uint64, blocking bool, res PathResult) {
	ctx := context.Background()
	switch {
	case res.Err != nil:
		w.queued = append(w.queued, Event{
			Type: EventPathFailed, Tick: w.tick,
			QueryID: queryID, Blocking: blocking, Reason: res.Err.Error(),
		})
		pathfind.QueryFailed(ctx, w.publisher, w.tick, pathfind.FailedPayload{
			QueryID: queryID, Blocking: blocking, Reason: res.Err.Error(),
		})
		w.metrics.RecordPathQuery(telemetry.PathOutcomeError)
	case !res.Found:
		w.queued = append(w.queued, Event{
			Type: EventPathFailed, Tick: w.tick,
			QueryID: queryID, Blocking: blocking, Reason: "no path",
		})
		pathfind.QueryFailed(ctx, w.publisher, w.tick, pathfind.FailedPayload{
			QueryID: queryID, Blocking: blocking, Reason: "no path",
		})
		w.metrics.RecordPathQuery(telemetry.PathOutcomeNone)
	default:
		color := OverlayColorAsync
		if blocking {
			color = OverlayColorBlocking
		}
		w.nextOverlayID++
		w.overlays = append(w.overlays, PathOverlay{
			ID:        w.nextOverlayID,
			QueryID:   queryID,
			Points:    res.Points,
			Color:     color,
			ExpiresAt: w.clock + w.lvl.Debug.OverlayTTL,
		})
		w.queued = append(w.queued, Event{
			Type: EventPathResolved, Tick: w.tick,
			QueryID: queryID, Blocking: blocking, Points: len(res.Points),
		})
		pathfind.QueryResolved(ctx, w.publisher, w.tick, pathfind.ResolvedPayload{
			QueryID: queryID, Blocking: blocking, Points: len(res.Points),
		})
		w.metrics.RecordPathQuery(telemetry.PathOutcomeFound)
	}
}

func (w *World) expireOverlays() {
	kept := w.overlays[:0]
	for _, overlay := range w.overlays {
		if overlay.ExpiresAt > w.clock {
			kept = append(kept, overlay)
		}
	}
	w.overlays = kept
}

func (w *World) snapshotOverlays() []PathOverlay {
	if len(w.overlays) == 0 {
		return nil
	}
	copied := make([]PathOverlay, len(w.overlays))
	copy(copied, w.overlays)
	return copied
}

func (w *World) entityRef(id registry.Entity, kind logging.EntityKind) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatUint(uint64(id), 10), Kind: kind}
}

func (w *World) Tick() uint64 {
	return w.tick
}

func (w *World) Clock() float64 {
	return w.clock
}

func (w *World) Player() PlayerState {
	return w.player
}

func (w *World) Field() *nav.Field {
	return w.field
}

func (w *World) Level() level.Level {
	return w.lvl
}

func (w *World) NavSummary() nav.GridSummary {
	return w.field.Summary()
}

func (w *World) EntityCount() int {
	return w.arena.Len()
}

func (w *World) PendingPathTasks() int {
	return w.tasks.Pending()
}

// TargetCount is the number of live targets, for diagnostics.
func (w *World) TargetCount() int {
	count := 0
	w.targets.Each(func(registry.Entity, *Target) bool {
		count++
		return true
	})
	return count
}
