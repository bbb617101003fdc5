package net

import (
	"gatewatch/server/internal/nav"
	"gatewatch/server/internal/sim"
)

// ProtocolVersion stamps every frame so clients can detect mismatches.
const ProtocolVersion = 1

// clientMessage is the single inbound envelope. Type selects the command;
// the remaining fields are read per type and ignored otherwise. Pointer
// fields distinguish "absent" from zero values.
type clientMessage struct {
	Ver      int         `json:"ver,omitempty"`
	Type     string      `json:"type"`
	Kind     string      `json:"kind,omitempty"`
	Position *[3]float64 `json:"position,omitempty"`
	Start    *[3]float64 `json:"start,omitempty"`
	End      *[3]float64 `json:"end,omitempty"`
	Index    *int        `json:"index,omitempty"`
	Enabled  *bool       `json:"enabled,omitempty"`
	SentAt   int64       `json:"sentAt,omitempty"`
}

// Inbound command types.
const (
	msgSpawnEnemy     = "spawn_enemy"
	msgBuildTower     = "build_tower"
	msgAsyncPath      = "async_path"
	msgBlockingPath   = "blocking_path"
	msgToggleObstacle = "toggle_obstacle"
	msgToggleNavdraw  = "toggle_navdraw"
	msgHeartbeat      = "heartbeat"
)

// stateMessage is the per-tick broadcast frame. Nav is attached only for
// subscribers who toggled the navigation overlay on.
type stateMessage struct {
	Ver        int                  `json:"ver"`
	Type       string               `json:"type"`
	Full       bool                 `json:"full,omitempty"`
	Tick       uint64               `json:"tick"`
	ServerTime int64                `json:"serverTime"`
	Player     sim.PlayerState      `json:"player"`
	Entities   []sim.EntitySnapshot `json:"entities"`
	Events     []sim.Event          `json:"events,omitempty"`
	Paths      []sim.PathOverlay    `json:"paths,omitempty"`
	Nav        *nav.GridSummary     `json:"nav,omitempty"`
}

// ackMessage confirms a command was applied.
type ackMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Cmd     string `json:"cmd"`
	Entity  uint64 `json:"entity,omitempty"`
	QueryID uint64 `json:"queryId,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
}

// rejectMessage reports a command that failed validation.
type rejectMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	Cmd    string `json:"cmd"`
	Reason string `json:"reason"`
}

// pathResultMessage answers a blocking path query inline.
type pathResultMessage struct {
	Ver    int           `json:"ver"`
	Type   string        `json:"type"`
	Found  bool          `json:"found"`
	Points []pointOnWire `json:"points,omitempty"`
	Reason string        `json:"reason,omitempty"`
}

type pointOnWire struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// heartbeatMessage echoes client time so the viewer can measure RTT.
type heartbeatMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}
