package network

import (
	"context"

	"gatewatch/server/logging"
)

const (
	// EventClientConnected is emitted when a websocket subscriber attaches.
	EventClientConnected logging.EventType = "network.client_connected"
	// EventClientDisconnected is emitted when a subscriber detaches or times out.
	EventClientDisconnected logging.EventType = "network.client_disconnected"
	// EventCommandRejected is emitted when an inbound command fails validation.
	EventCommandRejected logging.EventType = "network.command_rejected"
)

// ClientPayload captures subscriber identity details.
type ClientPayload struct {
	RemoteAddr string `json:"remoteAddr"`
	Reason     string `json:"reason,omitempty"`
}

// CommandRejectedPayload captures why an inbound command was refused.
type CommandRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// ClientConnected publishes a subscriber attach event.
func ClientConnected(ctx context.Context, pub logging.Publisher, tick uint64, payload ClientPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClientConnected,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// ClientDisconnected publishes a subscriber detach event.
func ClientDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, payload ClientPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventClientDisconnected,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}

// CommandRejected publishes a validation failure for an inbound command.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload CommandRejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    logging.EntityRef{Kind: logging.EntityKindWorld},
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
	})
}
