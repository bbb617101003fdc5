// Package telemetry exposes simulation counters both as OpenTelemetry
// instruments (no-op unless a meter provider is installed) and as an
// atomically readable snapshot for the diagnostics endpoint.
package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "gatewatch/server/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Path query outcomes recorded as metric attributes.
const (
	PathOutcomeFound = "found"
	PathOutcomeNone  = "none"
	PathOutcomeError = "error"
)

type Metrics struct {
	ticks            atomic.Uint64
	targetsSpawned   atomic.Uint64
	targetsDied      atomic.Uint64
	targetsBreached  atomic.Uint64
	towersBuilt      atomic.Uint64
	projectilesFired atomic.Uint64
	projectileHits   atomic.Uint64
	pathQueries      atomic.Uint64
	pathResolved     atomic.Uint64
	pathFailed       atomic.Uint64
	pathErrors       atomic.Uint64
	commandsApplied  atomic.Uint64
	broadcasts       atomic.Uint64
	liveEntities     atomic.Int64
	pendingPathTasks atomic.Int64

	tickCounter       metric.Int64Counter
	spawnCounter      metric.Int64Counter
	destroyCounter    metric.Int64Counter
	projectileCounter metric.Int64Counter
	queryCounter      metric.Int64Counter
	commandCounter    metric.Int64Counter
	broadcastCounter  metric.Int64Counter
}

// Snapshot is the diagnostics view of the counters.
type Snapshot struct {
	Ticks            uint64 `json:"ticks"`
	TargetsSpawned   uint64 `json:"targetsSpawned"`
	TargetsDied      uint64 `json:"targetsDied"`
	TargetsBreached  uint64 `json:"targetsBreached"`
	TowersBuilt      uint64 `json:"towersBuilt"`
	ProjectilesFired uint64 `json:"projectilesFired"`
	ProjectileHits   uint64 `json:"projectileHits"`
	PathQueries      uint64 `json:"pathQueries"`
	PathResolved     uint64 `json:"pathResolved"`
	PathFailed       uint64 `json:"pathFailed"`
	PathErrors       uint64 `json:"pathErrors"`
	CommandsApplied  uint64 `json:"commandsApplied"`
	Broadcasts       uint64 `json:"broadcasts"`
	LiveEntities     int64  `json:"liveEntities"`
	PendingPathTasks int64  `json:"pendingPathTasks"`
}

// New builds the instrument set against the global meter provider. Without
// an installed provider every instrument is a no-op, so construction is safe
// in tests.
func New() (*Metrics, error) {
	m := &Metrics{}
	mt := meter()

	var err error
	if m.tickCounter, err = mt.Int64Counter("sim.ticks",
		metric.WithDescription("Simulation ticks advanced")); err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}
	if m.spawnCounter, err = mt.Int64Counter("sim.entities.spawned",
		metric.WithDescription("Entities spawned, by kind")); err != nil {
		return nil, fmt.Errorf("creating spawn counter: %w", err)
	}
	if m.destroyCounter, err = mt.Int64Counter("sim.targets.removed",
		metric.WithDescription("Targets removed, by cause")); err != nil {
		return nil, fmt.Errorf("creating destroy counter: %w", err)
	}
	if m.projectileCounter, err = mt.Int64Counter("sim.projectile.hits",
		metric.WithDescription("Projectile impacts that applied damage")); err != nil {
		return nil, fmt.Errorf("creating projectile counter: %w", err)
	}
	if m.queryCounter, err = mt.Int64Counter("nav.queries",
		metric.WithDescription("Path queries, by outcome")); err != nil {
		return nil, fmt.Errorf("creating query counter: %w", err)
	}
	if m.commandCounter, err = mt.Int64Counter("net.commands",
		metric.WithDescription("Commands applied, by type")); err != nil {
		return nil, fmt.Errorf("creating command counter: %w", err)
	}
	if m.broadcastCounter, err = mt.Int64Counter("net.broadcasts",
		metric.WithDescription("State frames broadcast")); err != nil {
		return nil, fmt.Errorf("creating broadcast counter: %w", err)
	}

	liveGauge, err := mt.Int64ObservableGauge("sim.entities.live",
		metric.WithDescription("Entities alive in the arena"))
	if err != nil {
		return nil, fmt.Errorf("creating live entities gauge: %w", err)
	}
	taskGauge, err := mt.Int64ObservableGauge("nav.tasks.pending",
		metric.WithDescription("Async path tasks awaiting results"))
	if err != nil {
		return nil, fmt.Errorf("creating pending tasks gauge: %w", err)
	}
	if _, err = mt.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		o.ObserveInt64(liveGauge, m.liveEntities.Load())
		o.ObserveInt64(taskGauge, m.pendingPathTasks.Load())
		return nil
	}, liveGauge, taskGauge); err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordTick() {
	if m == nil {
		return
	}
	m.ticks.Add(1)
	m.tickCounter.Add(context.Background(), 1)
}

func (m *Metrics) RecordTargetSpawned() {
	if m == nil {
		return
	}
	m.targetsSpawned.Add(1)
	m.spawnCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("kind", "target")))
}

func (m *Metrics) RecordTowerBuilt() {
	if m == nil {
		return
	}
	m.towersBuilt.Add(1)
	m.spawnCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("kind", "tower")))
}

func (m *Metrics) RecordProjectileFired() {
	if m == nil {
		return
	}
	m.projectilesFired.Add(1)
	m.spawnCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("kind", "projectile")))
}

func (m *Metrics) RecordProjectileHit() {
	if m == nil {
		return
	}
	m.projectileHits.Add(1)
	m.projectileCounter.Add(context.Background(), 1)
}

func (m *Metrics) RecordTargetDied() {
	if m == nil {
		return
	}
	m.targetsDied.Add(1)
	m.destroyCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("cause", "died")))
}

func (m *Metrics) RecordTargetBreached() {
	if m == nil {
		return
	}
	m.targetsBreached.Add(1)
	m.destroyCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("cause", "breached")))
}

func (m *Metrics) RecordPathQuery(outcome string) {
	if m == nil {
		return
	}
	m.pathQueries.Add(1)
	switch outcome {
	case PathOutcomeFound:
		m.pathResolved.Add(1)
	case PathOutcomeNone:
		m.pathFailed.Add(1)
	case PathOutcomeError:
		m.pathErrors.Add(1)
	}
	m.queryCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *Metrics) RecordCommand(name string) {
	if m == nil {
		return
	}
	m.commandsApplied.Add(1)
	m.commandCounter.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("command", name)))
}

func (m *Metrics) RecordBroadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Add(1)
	m.broadcastCounter.Add(context.Background(), 1)
}

func (m *Metrics) SetLiveEntities(n int) {
	if m == nil {
		return
	}
	m.liveEntities.Store(int64(n))
}

func (m *Metrics) SetPendingPathTasks(n int) {
	if m == nil {
		return
	}
	m.pendingPathTasks.Store(int64(n))
}

func (m *Metrics) Read() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		Ticks:            m.ticks.Load(),
		TargetsSpawned:   m.targetsSpawned.Load(),
		TargetsDied:      m.targetsDied.Load(),
		TargetsBreached:  m.targetsBreached.Load(),
		TowersBuilt:      m.towersBuilt.Load(),
		ProjectilesFired: m.projectilesFired.Load(),
		ProjectileHits:   m.projectileHits.Load(),
		PathQueries:      m.pathQueries.Load(),
		PathResolved:     m.pathResolved.Load(),
		PathFailed:       m.pathFailed.Load(),
		PathErrors:       m.pathErrors.Load(),
		CommandsApplied:  m.commandsApplied.Load(),
		Broadcasts:       m.broadcasts.Load(),
		LiveEntities:     m.liveEntities.Load(),
		PendingPathTasks: m.pendingPathTasks.Load(),
	}
}
