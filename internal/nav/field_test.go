package nav

import (
	"errors"
	"math"
	"testing"

	"gatewatch/server/internal/geom"
)

func testSettings() Settings {
	return Settings{CellWidth: 1}.Normalized()
}

func testTerrain() Terrain {
	return Terrain{Samples: 11, Scale: 10}
}

func centerObstacle(enabled bool) Obstacle {
	return Obstacle{Position: geom.Vec3{X: 0, Y: 0.5, Z: 0}, HalfExtent: 1, Enabled: enabled}
}

func TestFindPathAcrossOpenGround(t *testing.T) {
	field := NewField(testSettings(), testTerrain(), nil)

	points, found, err := field.FindPath(geom.Vec3{X: -4, Z: -4}, geom.Vec3{X: 4, Z: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected a path across open ground")
	}
	if len(points) < 2 {
		t.Fatalf("expected at least start and end, got %d points", len(points))
	}
	first := points[0]
	last := points[len(points)-1]
	if geom.DistanceXZ(first, geom.Vec3{X: -4, Z: -4}) > 1.5 {
		t.Fatalf("first point %+v too far from start", first)
	}
	if geom.DistanceXZ(last, geom.Vec3{X: 4, Z: 4}) > 1.5 {
		t.Fatalf("last point %+v too far from end", last)
	}
	for _, p := range points {
		if math.Abs(p.Y-field.terrain.HeightAt(p.X, p.Z)) > 1e-9 {
			t.Fatalf("point %+v does not sit on the terrain", p)
		}
	}
}

func TestFindPathDetoursAroundObstacle(t *testing.T) {
	field := NewField(testSettings(), testTerrain(), []Obstacle{centerObstacle(true)})

	points, found, err := field.FindPath(geom.Vec3{X: -4, Z: -4}, geom.Vec3{X: 4, Z: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("expected a detour path around the obstacle")
	}
	if len(points) < 3 {
		t.Fatalf("expected a corner waypoint in the detour, got %d points", len(points))
	}
	for _, p := range points {
		if p.X > -2 && p.X < 2 && p.Z > -2 && p.Z < 2 {
			t.Fatalf("path point %+v crosses the obstacle footprint", p)
		}
	}
}

func TestFindPathNoRouteReportsNotFoundWithoutError(t *testing.T) {
	wall := Obstacle{Position: geom.Vec3{X: 3, Y: 0.5, Z: 3}, HalfExtent: 5, Enabled: true}
	field := NewField(testSettings(), testTerrain(), []Obstacle{wall})

	points, found, err := field.FindPath(geom.Vec3{X: -4, Z: -4}, geom.Vec3{X: 4, Z: 4})
	if err != nil {
		t.Fatalf("no path is not an error, got: %v", err)
	}
	if found {
		t.Fatalf("expected no path into the covered corner, got %d points", len(points))
	}
}

func TestFindPathStartEqualsEnd(t *testing.T) {
	field := NewField(testSettings(), testTerrain(), nil)

	point := geom.Vec3{X: 1.2, Z: 1.2}
	points, found, err := field.FindPath(point, point)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !found {
		t.Fatal("identical endpoints must resolve")
	}
	if len(points) != 1 {
		t.Fatalf("expected a trivial single-point path, got %d points", len(points))
	}

	// Distinct points inside the same cell collapse the same way.
	points, found, err = field.FindPath(geom.Vec3{X: 1.1, Z: 1.1}, geom.Vec3{X: 1.4, Z: 1.4})
	if err != nil || !found || len(points) != 1 {
		t.Fatalf("same-cell endpoints: points=%d found=%v err=%v", len(points), found, err)
	}
}

func TestFindPathRejectsMalformedEndpoints(t *testing.T) {
	field := NewField(testSettings(), testTerrain(), nil)

	_, found, err := field.FindPath(geom.Vec3{X: math.NaN()}, geom.Vec3{X: 4, Z: 4})
	if !errors.Is(err, ErrNotFinite) {
		t.Fatalf("expected ErrNotFinite, got %v", err)
	}
	if found {
		t.Fatal("malformed query must not report a path")
	}

	_, found, err = field.FindPath(geom.Vec3{X: 0, Z: 0}, geom.Vec3{X: 300, Z: 0})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if found {
		t.Fatal("out-of-bounds query must not report a path")
	}
}

func TestToggleObstacleRebuildsGrid(t *testing.T) {
	field := NewField(testSettings(), testTerrain(), []Obstacle{centerObstacle(false)})

	if field.ObstacleEnabled(0) {
		t.Fatal("obstacle must start disabled")
	}
	before := field.Summary()
	if len(before.Blocked) != 0 {
		t.Fatalf("open ground should have no blocked cells, got %d", len(before.Blocked))
	}

	enabled, err := field.ToggleObstacle(0)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !enabled {
		t.Fatal("toggle must enable the obstacle")
	}
	after := field.Summary()
	if after.Generation != before.Generation+1 {
		t.Fatalf("expected generation %d, got %d", before.Generation+1, after.Generation)
	}
	if len(after.Blocked) == 0 {
		t.Fatal("enabled obstacle must block cells")
	}

	enabled, err = field.ToggleObstacle(0)
	if err != nil || enabled {
		t.Fatalf("second toggle should disable, got enabled=%v err=%v", enabled, err)
	}
	final := field.Summary()
	if len(final.Blocked) != 0 {
		t.Fatalf("disabling must clear blocked cells, got %d", len(final.Blocked))
	}
}

func TestToggleObstacleUnknownIndex(t *testing.T) {
	field := NewField(testSettings(), testTerrain(), nil)
	if _, err := field.ToggleObstacle(0); err == nil {
		t.Fatal("expected an error toggling a missing obstacle")
	}
}
