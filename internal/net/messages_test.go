package net

import (
	"encoding/json"
	"testing"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/nav"
	"gatewatch/server/internal/sim"
)

func TestStateFrameWireShape(t *testing.T) {
	snap := sim.WorldSnapshot{
		Tick:   7,
		Player: sim.PlayerState{Health: 10, Money: 100},
		Entities: []sim.EntitySnapshot{{
			ID: 1, Kind: "target", Position: geom.Vec3{X: 1, Y: 0, Z: 2}, Yaw: 0.5, Health: 3, PathIndex: 1,
		}},
		Overlays: []sim.PathOverlay{{
			ID: 1, QueryID: 2, Points: []geom.Vec3{{X: 5, Y: 1, Z: 5}}, Color: "red", ExpiresAt: 4,
		}},
	}
	summary := nav.GridSummary{CellSize: 0.25, Cols: 4, Rows: 4, Generation: 1, Blocked: []int{3}}

	frame, err := marshalState(snap, nil, &summary, true)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("decode frame: %v", err)
	}

	if decoded["ver"] != float64(ProtocolVersion) || decoded["type"] != "state" || decoded["full"] != true {
		t.Fatalf("unexpected envelope: ver=%v type=%v full=%v", decoded["ver"], decoded["type"], decoded["full"])
	}
	player, ok := decoded["player"].(map[string]any)
	if !ok {
		t.Fatalf("expected player object, got %v", decoded["player"])
	}
	if player["health"] != 10.0 || player["money"] != 100.0 {
		t.Fatalf("unexpected player: %v", player)
	}

	entities, ok := decoded["entities"].([]any)
	if !ok || len(entities) != 1 {
		t.Fatalf("expected one entity, got %v", decoded["entities"])
	}
	entity := entities[0].(map[string]any)
	pos, ok := entity["position"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested position object, got %v", entity["position"])
	}
	if pos["x"] != 1.0 || pos["z"] != 2.0 {
		t.Fatalf("unexpected position: %v", pos)
	}
	if entity["kind"] != "target" || entity["pathIndex"] != 1.0 {
		t.Fatalf("unexpected entity fields: %v", entity)
	}

	paths, ok := decoded["paths"].([]any)
	if !ok || len(paths) != 1 {
		t.Fatalf("expected one path overlay, got %v", decoded["paths"])
	}
	overlay := paths[0].(map[string]any)
	points, ok := overlay["points"].([]any)
	if !ok || len(points) != 1 {
		t.Fatalf("expected point objects, got %v", overlay["points"])
	}
	point := points[0].(map[string]any)
	if point["x"] != 5.0 || point["y"] != 1.0 || point["z"] != 5.0 {
		t.Fatalf("unexpected point: %v", point)
	}
	if overlay["color"] != "red" || overlay["queryId"] != 2.0 {
		t.Fatalf("unexpected overlay fields: %v", overlay)
	}

	navMap, ok := decoded["nav"].(map[string]any)
	if !ok {
		t.Fatalf("expected nav summary, got %v", decoded["nav"])
	}
	for _, key := range []string{"cellSize", "cols", "rows", "originX", "originZ", "generation", "blocked"} {
		if _, present := navMap[key]; !present {
			t.Fatalf("nav summary missing %q: %v", key, navMap)
		}
	}
}
