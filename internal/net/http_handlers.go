package net

import (
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/level"
	"gatewatch/server/internal/sim"
)

type HTTPHandlerConfig struct {
	Logger zerolog.Logger
}

// NewHTTPHandler builds the operator surface: health and diagnostics
// endpoints, a world reset hook, a blocking path query endpoint, and the
// websocket upgrade for observers.
func NewHTTPHandler(hub *Hub, cfg HTTPHandlerConfig) nethttp.Handler {
	logger := cfg.Logger

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/health", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("/diagnostics", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		payload := struct {
			Status      string  `json:"status"`
			ServerTime  int64   `json:"serverTime"`
			Uptime      float64 `json:"uptimeSeconds"`
			TickRate    int     `json:"tickRate"`
			Subscribers any     `json:"subscribers"`
			Telemetry   any     `json:"telemetry"`
		}{
			Status:      "ok",
			ServerTime:  time.Now().UnixMilli(),
			Uptime:      hub.Uptime().Seconds(),
			TickRate:    hub.TickRate(),
			Subscribers: hub.DiagnosticsSnapshot(),
			Telemetry:   hub.TelemetrySnapshot(),
		}
		writeJSONResponse(w, payload)
	})

	mux.HandleFunc("/level", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}
		writeJSONResponse(w, hub.Level())
	})

	mux.HandleFunc("/world/reset", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		lvl := hub.Level()

		type resetRequest struct {
			LevelPath       *string `json:"levelPath"`
			ObstacleEnabled *bool   `json:"obstacleEnabled"`
			EnemyCount      *int    `json:"enemyCount"`
			EnemyHealth     *int    `json:"enemyHealth"`
			PlayerHealth    *int    `json:"playerHealth"`
		}

		if r.Body != nil {
			defer r.Body.Close()
			var req resetRequest
			decoder := json.NewDecoder(r.Body)
			if err := decoder.Decode(&req); err != nil && err != io.EOF {
				httpError(w, "invalid payload", nethttp.StatusBadRequest)
				return
			}
			if req.LevelPath != nil {
				loaded, err := level.Load(*req.LevelPath)
				if err != nil {
					httpError(w, fmt.Sprintf("load level: %v", err), nethttp.StatusBadRequest)
					return
				}
				lvl = loaded
			}
			if req.ObstacleEnabled != nil {
				lvl.Terrain.Obstacle.Enabled = *req.ObstacleEnabled
			}
			if req.EnemyCount != nil && *req.EnemyCount >= 0 {
				lvl.Enemy.Count = *req.EnemyCount
			}
			if req.EnemyHealth != nil && *req.EnemyHealth > 0 {
				lvl.Enemy.Health = *req.EnemyHealth
			}
			if req.PlayerHealth != nil && *req.PlayerHealth > 0 {
				lvl.Player.Health = *req.PlayerHealth
			}
		}

		hub.ResetWorld(lvl)

		response := struct {
			Status string `json:"status"`
			Level  any    `json:"level"`
		}{Status: "ok", Level: lvl}
		writeJSONResponse(w, response)
	})

	mux.HandleFunc("/path/blocking", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodPost {
			httpError(w, "method not allowed", nethttp.StatusMethodNotAllowed)
			return
		}

		type pathRequest struct {
			Start *[3]float64 `json:"start"`
			End   *[3]float64 `json:"end"`
		}
		var req pathRequest
		if r.Body != nil {
			defer r.Body.Close()
			decoder := json.NewDecoder(r.Body)
			if err := decoder.Decode(&req); err != nil && err != io.EOF {
				httpError(w, "invalid payload", nethttp.StatusBadRequest)
				return
			}
		}

		var points []geom.Vec3
		var found bool
		var err error
		if req.Start == nil || req.End == nil {
			points, found, err = hub.BlockingDebugQuery()
		} else {
			start, ok := vecFromWire(req.Start)
			if !ok {
				httpError(w, "start is not finite", nethttp.StatusBadRequest)
				return
			}
			end, ok := vecFromWire(req.End)
			if !ok {
				httpError(w, "end is not finite", nethttp.StatusBadRequest)
				return
			}
			points, found, err = hub.RunBlockingPath(start, end)
		}
		if err != nil {
			httpError(w, err.Error(), nethttp.StatusBadRequest)
			return
		}

		writeJSONResponse(w, pathResultMessage{
			Ver:    ProtocolVersion,
			Type:   "pathResult",
			Found:  found,
			Points: pointsOnWire(points),
		})
	})

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	mux.HandleFunc("/ws", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
			return
		}

		sub, frame, err := hub.Subscribe(conn, r.RemoteAddr)
		if err != nil {
			logger.Error().Err(err).Msg("failed to build initial state frame")
			conn.Close()
			return
		}
		if err := sub.WriteMessage(websocket.TextMessage, frame); err != nil {
			hub.Disconnect(sub.id, "write_error")
			return
		}

		serveSubscriber(hub, sub, conn, logger)
	})

	return mux
}

// serveSubscriber is the per-connection read loop. Commands are validated
// here and staged on the hub's buffer; only the blocking query and the
// per-subscriber overlay toggle are handled inline.
func serveSubscriber(hub *Hub, sub *subscriber, conn *websocket.Conn, logger zerolog.Logger) {
	writeJSON := func(payload any) bool {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.Error().Err(err).Str("subscriber", sub.id).Msg("failed to marshal reply")
			return true
		}
		if err := sub.WriteMessage(websocket.TextMessage, data); err != nil {
			hub.Disconnect(sub.id, "write_error")
			return false
		}
		return true
	}

	sendAck := func(cmd string, mutate func(*ackMessage)) bool {
		ack := ackMessage{Ver: ProtocolVersion, Type: "commandAck", Cmd: cmd}
		if mutate != nil {
			mutate(&ack)
		}
		return writeJSON(ack)
	}

	sendReject := func(cmd, reason string) bool {
		return writeJSON(rejectMessage{Ver: ProtocolVersion, Type: "commandReject", Cmd: cmd, Reason: reason})
	}

	enqueue := func(cmd sim.Command) bool {
		cmd.Origin = sub.id
		if ok, reason := hub.EnqueueCommand(cmd); !ok {
			return sendReject(string(cmd.Type), reason)
		}
		return sendAck(string(cmd.Type), nil)
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			hub.Disconnect(sub.id, "read_error")
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			logger.Warn().Err(err).Str("subscriber", sub.id).Msg("discarding malformed message")
			continue
		}

		switch msg.Type {
		case msgHeartbeat:
			now := time.Now()
			rtt, ok := hub.UpdateHeartbeat(sub.id, now, msg.SentAt)
			if !ok {
				return
			}
			reply := heartbeatMessage{
				Ver:        ProtocolVersion,
				Type:       "heartbeat",
				ServerTime: now.UnixMilli(),
				ClientTime: msg.SentAt,
				RTTMillis:  rtt.Milliseconds(),
			}
			if !writeJSON(reply) {
				return
			}

		case msgSpawnEnemy:
			cmd := sim.Command{Type: sim.CommandSpawnEnemy}
			if msg.Position != nil {
				pos, ok := vecFromWire(msg.Position)
				if !ok {
					if !sendReject(msg.Type, "position not finite") {
						return
					}
					continue
				}
				cmd.Spawn = &sim.SpawnCommand{Position: &pos}
			}
			if !enqueue(cmd) {
				return
			}

		case msgBuildTower:
			if msg.Position == nil {
				if !sendReject(msg.Type, "missing position") {
					return
				}
				continue
			}
			pos, ok := vecFromWire(msg.Position)
			if !ok {
				if !sendReject(msg.Type, "position not finite") {
					return
				}
				continue
			}
			if !enqueue(sim.Command{
				Type:  sim.CommandBuildTower,
				Build: &sim.BuildCommand{Kind: msg.Kind, Position: pos},
			}) {
				return
			}

		case msgAsyncPath:
			cmd := sim.Command{Type: sim.CommandAsyncPath, Path: &sim.PathCommand{UseDebug: true}}
			if msg.Start != nil && msg.End != nil {
				start, okStart := vecFromWire(msg.Start)
				end, okEnd := vecFromWire(msg.End)
				if !okStart || !okEnd {
					if !sendReject(msg.Type, "endpoints not finite") {
						return
					}
					continue
				}
				cmd.Path = &sim.PathCommand{Start: start, End: end}
			}
			if !enqueue(cmd) {
				return
			}

		case msgBlockingPath:
			var points []geom.Vec3
			var found bool
			var qerr error
			if msg.Start != nil && msg.End != nil {
				start, okStart := vecFromWire(msg.Start)
				end, okEnd := vecFromWire(msg.End)
				if !okStart || !okEnd {
					if !sendReject(msg.Type, "endpoints not finite") {
						return
					}
					continue
				}
				points, found, qerr = hub.RunBlockingPath(start, end)
			} else {
				points, found, qerr = hub.BlockingDebugQuery()
			}
			reply := pathResultMessage{Ver: ProtocolVersion, Type: "pathResult", Found: found, Points: pointsOnWire(points)}
			if qerr != nil {
				reply.Found = false
				reply.Points = nil
				reply.Reason = qerr.Error()
			}
			if !writeJSON(reply) {
				return
			}

		case msgToggleObstacle:
			index := 0
			if msg.Index != nil {
				index = *msg.Index
			}
			if !enqueue(sim.Command{Type: sim.CommandToggleObstacle, Obstacle: &sim.ObstacleCommand{Index: index}}) {
				return
			}

		case msgToggleNavdraw:
			enabled, ok := hub.ToggleNavOverlay(sub.id)
			if !ok {
				return
			}
			if !sendAck(msg.Type, func(ack *ackMessage) { ack.Enabled = &enabled }) {
				return
			}

		default:
			if !sendReject(msg.Type, "unknown command") {
				return
			}
		}
	}
}

func vecFromWire(v *[3]float64) (geom.Vec3, bool) {
	vec := geom.Vec3{X: v[0], Y: v[1], Z: v[2]}
	return vec, vec.Finite()
}

func pointsOnWire(points []geom.Vec3) []pointOnWire {
	if len(points) == 0 {
		return nil
	}
	out := make([]pointOnWire, len(points))
	for i, p := range points {
		out[i] = pointOnWire{X: p.X, Y: p.Y, Z: p.Z}
	}
	return out
}

func writeJSONResponse(w nethttp.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", nethttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func httpError(w nethttp.ResponseWriter, message string, status int) {
	nethttp.Error(w, message, status)
}
