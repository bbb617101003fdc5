package pathfind

import (
	"context"

	"gatewatch/server/logging"
)

const (
	// EventQuerySubmitted is emitted when a path query is accepted.
	EventQuerySubmitted logging.EventType = "pathfind.query_submitted"
	// EventQueryResolved is emitted when a query produces a route.
	EventQueryResolved logging.EventType = "pathfind.query_resolved"
	// EventQueryFailed is emitted when a query finds no route or errors.
	EventQueryFailed logging.EventType = "pathfind.query_failed"
	// EventObstacleToggled is emitted when the navigation field is rebuilt.
	EventObstacleToggled logging.EventType = "pathfind.obstacle_toggled"
)

// QueryPayload captures the endpoints of a path query.
type QueryPayload struct {
	QueryID  uint64  `json:"queryId"`
	Blocking bool    `json:"blocking"`
	StartX   float64 `json:"startX"`
	StartZ   float64 `json:"startZ"`
	EndX     float64 `json:"endX"`
	EndZ     float64 `json:"endZ"`
}

// ResolvedPayload captures the shape of a returned route.
type ResolvedPayload struct {
	QueryID  uint64 `json:"queryId"`
	Blocking bool   `json:"blocking"`
	Points   int    `json:"points"`
}

// FailedPayload captures why a query produced no route.
type FailedPayload struct {
	QueryID  uint64 `json:"queryId"`
	Blocking bool   `json:"blocking"`
	Reason   string `json:"reason"`
}

// ObstaclePayload captures a field rebuild.
type ObstaclePayload struct {
	Index      int    `json:"index"`
	Enabled    bool   `json:"enabled"`
	Generation uint64 `json:"generation"`
}

// QuerySubmitted publishes a query acceptance event.
func QuerySubmitted(ctx context.Context, pub logging.Publisher, tick uint64, payload QueryPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventQuerySubmitted,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityDebug,
		Category: logging.CategoryPathfind,
		Payload:  payload,
	})
}

// QueryResolved publishes a successful query result.
func QueryResolved(ctx context.Context, pub logging.Publisher, tick uint64, payload ResolvedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventQueryResolved,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPathfind,
		Payload:  payload,
	})
}

// QueryFailed publishes a no-route or query-error result.
func QueryFailed(ctx context.Context, pub logging.Publisher, tick uint64, payload FailedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventQueryFailed,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryPathfind,
		Payload:  payload,
	})
}

// ObstacleToggled publishes a navigation field rebuild.
func ObstacleToggled(ctx context.Context, pub logging.Publisher, tick uint64, payload ObstaclePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventObstacleToggled,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryPathfind,
		Payload:  payload,
	})
}
