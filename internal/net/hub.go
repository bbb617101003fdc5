// Package net owns the observer-facing surface: the websocket hub that runs
// the tick loop and broadcasts state frames, and the HTTP handlers around
// it. The simulation itself never imports this package.
package net

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/level"
	"gatewatch/server/internal/nav"
	"gatewatch/server/internal/sim"
	"gatewatch/server/internal/telemetry"
	"gatewatch/server/logging"
	lognetwork "gatewatch/server/logging/network"
)

const writeWait = 5 * time.Second

// HubConfig tunes the tick loop and subscriber handling.
type HubConfig struct {
	TickRate         int
	HeartbeatTimeout time.Duration
	CommandCapacity  int
	Logger           zerolog.Logger
}

// DefaultHubConfig returns the shipped loop settings.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		TickRate:         15,
		HeartbeatTimeout: 6 * time.Second,
		CommandCapacity:  256,
	}
}

// Normalized fills unusable values with defaults.
func (c HubConfig) Normalized() HubConfig {
	def := DefaultHubConfig()
	if c.TickRate <= 0 {
		c.TickRate = def.TickRate
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = def.HeartbeatTimeout
	}
	if c.CommandCapacity <= 0 {
		c.CommandCapacity = def.CommandCapacity
	}
	return c
}

// Hub owns the world and all live subscribers. The world is only ever
// touched under the hub mutex, which the tick loop and the command paths
// share.
type Hub struct {
	mu          sync.Mutex
	world       *sim.World
	subscribers map[string]*subscriber
	buffer      *sim.CommandBuffer
	nextID      atomic.Uint64

	cfg       HubConfig
	logger    zerolog.Logger
	publisher logging.Publisher
	metrics   *telemetry.Metrics
	started   time.Time
}

type subscriber struct {
	id         string
	conn       *websocket.Conn
	remoteAddr string

	mu            sync.Mutex
	lastHeartbeat time.Time
	lastRTT       time.Duration
	navOverlay    bool
}

// WriteMessage serializes writes so the tick broadcast and command replies
// never interleave on the connection.
func (s *subscriber) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(messageType, data)
}

func (s *subscriber) setNavOverlay(enabled bool) {
	s.mu.Lock()
	s.navOverlay = enabled
	s.mu.Unlock()
}

func (s *subscriber) wantsNavOverlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.navOverlay
}

// NewHub wraps a world for network access.
func NewHub(world *sim.World, cfg HubConfig, pub logging.Publisher, metrics *telemetry.Metrics) *Hub {
	cfg = cfg.Normalized()
	if pub == nil {
		pub = logging.NopPublisher()
	}
	return &Hub{
		world:       world,
		subscribers: make(map[string]*subscriber),
		buffer:      sim.NewCommandBuffer(cfg.CommandCapacity),
		cfg:         cfg,
		logger:      cfg.Logger,
		publisher:   pub,
		metrics:     metrics,
		started:     time.Now(),
	}
}

// Uptime reports how long the hub has been running.
func (h *Hub) Uptime() time.Duration {
	return time.Since(h.started)
}

// Subscribe registers a websocket connection and returns its subscriber
// record plus an initial state frame.
func (h *Hub) Subscribe(conn *websocket.Conn, remoteAddr string) (*subscriber, []byte, error) {
	id := fmt.Sprintf("observer-%d", h.nextID.Add(1))
	sub := &subscriber{
		id:            id,
		conn:          conn,
		remoteAddr:    remoteAddr,
		lastHeartbeat: time.Now(),
	}

	h.mu.Lock()
	h.subscribers[id] = sub
	snap := h.world.Snapshot()
	tick := h.world.Tick()
	h.mu.Unlock()

	frame, err := marshalState(snap, nil, nil, true)
	if err != nil {
		h.mu.Lock()
		delete(h.subscribers, id)
		h.mu.Unlock()
		return nil, nil, err
	}

	lognetwork.ClientConnected(context.Background(), h.publisher, tick,
		lognetwork.ClientPayload{RemoteAddr: remoteAddr})
	return sub, frame, nil
}

// Disconnect removes a subscriber and closes its connection.
func (h *Hub) Disconnect(id, reason string) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	tick := h.world.Tick()
	h.mu.Unlock()

	if !ok {
		return
	}
	sub.conn.Close()
	lognetwork.ClientDisconnected(context.Background(), h.publisher, tick,
		lognetwork.ClientPayload{RemoteAddr: sub.remoteAddr, Reason: reason})
}

// EnqueueCommand stages a command for the next tick. The returned reason is
// non-empty when the command was refused.
func (h *Hub) EnqueueCommand(cmd sim.Command) (bool, string) {
	if cmd.IssuedAt.IsZero() {
		cmd.IssuedAt = time.Now()
	}
	if !h.buffer.Push(cmd) {
		h.mu.Lock()
		tick := h.world.Tick()
		h.mu.Unlock()
		lognetwork.CommandRejected(context.Background(), h.publisher, tick,
			lognetwork.CommandRejectedPayload{Command: string(cmd.Type), Reason: "queue_full"})
		return false, "queue_full"
	}
	return true, ""
}

// RunBlockingPath resolves a path query synchronously. The hub mutex is held
// for the full query, so the tick loop waits; this is the deliberate
// operator-triggered exception to the non-blocking loop.
func (h *Hub) RunBlockingPath(start, end geom.Vec3) ([]geom.Vec3, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.RunBlockingPath(start, end)
}

// BlockingDebugQuery runs the level's configured debug query synchronously.
func (h *Hub) BlockingDebugQuery() ([]geom.Vec3, bool, error) {
	h.mu.Lock()
	start, end := h.world.Level().DebugQuery()
	h.mu.Unlock()
	return h.RunBlockingPath(start, end)
}

// UpdateHeartbeat records the most recent heartbeat time and RTT for a
// subscriber.
func (h *Hub) UpdateHeartbeat(id string, receivedAt time.Time, clientSent int64) (time.Duration, bool) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	h.mu.Unlock()
	if !ok {
		return 0, false
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.lastHeartbeat = receivedAt
	if clientSent > 0 {
		clientTime := time.UnixMilli(clientSent)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			sub.lastRTT = rtt
		}
	}
	return sub.lastRTT, true
}

// ToggleNavOverlay flips whether a subscriber's state frames carry the
// walkable-grid summary, returning the new setting.
func (h *Hub) ToggleNavOverlay(id string) (bool, bool) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	h.mu.Unlock()
	if !ok {
		return false, false
	}
	sub.mu.Lock()
	sub.navOverlay = !sub.navOverlay
	enabled := sub.navOverlay
	sub.mu.Unlock()
	return enabled, true
}

// ResetWorld replaces the world with a fresh one built from the level. Async
// tasks in flight against the old world finish and are garbage collected
// with it.
func (h *Hub) ResetWorld(lvl level.Level) {
	h.mu.Lock()
	h.world = sim.NewWorld(lvl, nil, h.publisher, h.metrics)
	h.mu.Unlock()
}

// Level returns the current world's level.
func (h *Hub) Level() level.Level {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Level()
}

// TelemetrySnapshot exposes the counter block for diagnostics.
func (h *Hub) TelemetrySnapshot() telemetry.Snapshot {
	return h.metrics.Read()
}

// TickRate reports the configured steps per second.
func (h *Hub) TickRate() int {
	return h.cfg.TickRate
}

// DiagnosticsSubscriber is one subscriber's connectivity record.
type DiagnosticsSubscriber struct {
	ID            string `json:"id"`
	RemoteAddr    string `json:"remoteAddr"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rtt"`
}

// DiagnosticsSnapshot exposes heartbeat data for the diagnostics endpoint.
func (h *Hub) DiagnosticsSnapshot() []DiagnosticsSubscriber {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	out := make([]DiagnosticsSubscriber, 0, len(subs))
	for _, sub := range subs {
		sub.mu.Lock()
		out = append(out, DiagnosticsSubscriber{
			ID:            sub.id,
			RemoteAddr:    sub.remoteAddr,
			LastHeartbeat: sub.lastHeartbeat.UnixMilli(),
			RTTMillis:     sub.lastRTT.Milliseconds(),
		})
		sub.mu.Unlock()
	}
	return out
}

// RunSimulation drives the fixed-rate tick loop until the stop channel
// closes.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(h.cfg.TickRate))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			if dt <= 0 {
				dt = 1.0 / float64(h.cfg.TickRate)
			}
			last = now
			h.step(now, dt)
		}
	}
}

// Step runs exactly one tick. Exposed for tests; RunSimulation calls it on
// the ticker cadence.
func (h *Hub) Step(now time.Time, dt float64) sim.StepOutput {
	return h.step(now, dt)
}

func (h *Hub) step(now time.Time, dt float64) sim.StepOutput {
	stale := h.pruneStale(now)
	for _, sub := range stale {
		sub.conn.Close()
		h.logger.Info().Str("subscriber", sub.id).Msg("disconnecting stale subscriber")
		lognetwork.ClientDisconnected(context.Background(), h.publisher, h.worldTick(),
			lognetwork.ClientPayload{RemoteAddr: sub.remoteAddr, Reason: "heartbeat_timeout"})
	}

	commands := h.buffer.Drain()

	h.mu.Lock()
	results := h.world.Apply(commands)
	out := h.world.Step(dt)
	snap := h.world.Snapshot()
	h.mu.Unlock()

	for _, res := range results {
		if res.Err != nil {
			h.logger.Warn().Err(res.Err).Str("command", string(res.Type)).
				Str("origin", res.Origin).Msg("command failed")
			lognetwork.CommandRejected(context.Background(), h.publisher, out.Tick,
				lognetwork.CommandRejectedPayload{Command: string(res.Type), Reason: res.Err.Error()})
		}
	}

	h.broadcastState(snap, out)
	return out
}

func (h *Hub) worldTick() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.world.Tick()
}

// pruneStale removes subscribers whose last heartbeat is older than the
// timeout and returns them for closing outside the hub mutex.
func (h *Hub) pruneStale(now time.Time) []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	var stale []*subscriber
	for id, sub := range h.subscribers {
		sub.mu.Lock()
		expired := now.Sub(sub.lastHeartbeat) > h.cfg.HeartbeatTimeout
		sub.mu.Unlock()
		if expired {
			stale = append(stale, sub)
			delete(h.subscribers, id)
		}
	}
	return stale
}

// broadcastState sends the latest frame to every subscriber. Subscribers
// with the navigation overlay enabled get the frame with the grid summary
// attached; that variant is marshalled at most once per tick.
func (h *Hub) broadcastState(snap sim.WorldSnapshot, out sim.StepOutput) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	if len(subs) == 0 {
		return
	}

	plain, err := marshalState(snap, out.Events, nil, false)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to marshal state frame")
		return
	}

	var withNav []byte
	for _, sub := range subs {
		data := plain
		if sub.wantsNavOverlay() {
			if withNav == nil {
				h.mu.Lock()
				summary := h.world.NavSummary()
				h.mu.Unlock()
				withNav, err = marshalState(snap, out.Events, &summary, false)
				if err != nil {
					h.logger.Error().Err(err).Msg("failed to marshal nav overlay frame")
					withNav = plain
				}
			}
			data = withNav
		}
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Warn().Err(err).Str("subscriber", sub.id).Msg("dropping subscriber on write error")
			h.Disconnect(sub.id, "write_error")
		}
	}
	h.metrics.RecordBroadcast()
}

func marshalState(snap sim.WorldSnapshot, events []sim.Event, summary *nav.GridSummary, full bool) ([]byte, error) {
	msg := stateMessage{
		Ver:        ProtocolVersion,
		Type:       "state",
		Full:       full,
		Tick:       snap.Tick,
		ServerTime: time.Now().UnixMilli(),
		Player:     snap.Player,
		Entities:   snap.Entities,
		Events:     events,
		Paths:      snap.Overlays,
		Nav:        summary,
	}
	return json.Marshal(msg)
}
