package sim

import (
	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
)

// EventType enumerates the observable outcomes a step can produce. These are
// the wire-facing kinds; structured log events go through the logging router
// separately.
type EventType string

const (
	EventTargetDied     EventType = "target_died"
	EventTargetBreached EventType = "target_breached"
	EventPlayerDamaged  EventType = "player_damaged"
	EventGameOver       EventType = "game_over"
	EventTowerBuilt     EventType = "tower_built"
	EventPathResolved   EventType = "path_resolved"
	EventPathFailed     EventType = "path_failed"
)

// Event is a flat record of one outcome. Fields beyond Type and Tick are
// populated per kind and omitted from the wire when empty.
type Event struct {
	Type      EventType       `json:"type"`
	Tick      uint64          `json:"tick"`
	Entity    registry.Entity `json:"entity,omitempty"`
	Amount    int             `json:"amount,omitempty"`
	Remaining int             `json:"remaining,omitempty"`
	Kind      string          `json:"kind,omitempty"`
	Position  *geom.Vec3      `json:"position,omitempty"`
	QueryID   uint64          `json:"queryId,omitempty"`
	Blocking  bool            `json:"blocking,omitempty"`
	Points    int             `json:"points,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// Overlay colors, matching the debug draw convention: blocking queries draw
// red, async queries draw blue.
const (
	OverlayColorBlocking = "red"
	OverlayColorAsync    = "blue"
)

// PathOverlay is a resolved route kept for display until its deadline, in
// simulation seconds, passes.
type PathOverlay struct {
	ID        uint64      `json:"id"`
	QueryID   uint64      `json:"queryId"`
	Points    []geom.Vec3 `json:"points"`
	Color     string      `json:"color"`
	ExpiresAt float64     `json:"expiresAt"`
}

// StepOutput is everything one call to Step produced: the new tick number,
// the outcome events in emission order, and the overlays still alive.
type StepOutput struct {
	Tick     uint64        `json:"tick"`
	Events   []Event       `json:"events"`
	Overlays []PathOverlay `json:"paths"`
}
