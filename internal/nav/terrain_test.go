package nav

import (
	"math"
	"testing"
)

func TestHeightAtFollowsSineRidge(t *testing.T) {
	terrain := DefaultTerrain()

	// Height varies along the north-south axis only.
	h1 := terrain.HeightAt(-10, 5)
	h2 := terrain.HeightAt(10, 5)
	if math.Abs(h1-h2) > 1e-9 {
		t.Fatalf("height must not vary along east-west: %.9f vs %.9f", h1, h2)
	}

	// At the south edge the row coordinate is 0, so the ridge starts flat.
	if got := terrain.HeightAt(0, -terrain.HalfExtent()); math.Abs(got) > 1e-9 {
		t.Fatalf("expected 0 at the south edge, got %.9f", got)
	}

	// Beyond the footprint the edge value holds.
	inside := terrain.HeightAt(0, terrain.HalfExtent())
	outside := terrain.HeightAt(0, terrain.HalfExtent()+100)
	if math.Abs(inside-outside) > 1e-9 {
		t.Fatalf("expected clamped height beyond the edge, got %.9f vs %.9f", inside, outside)
	}
}

func TestContains(t *testing.T) {
	terrain := DefaultTerrain()
	if !terrain.Contains(0, 0) {
		t.Fatal("origin must be inside the terrain")
	}
	if terrain.Contains(terrain.HalfExtent()+1, 0) {
		t.Fatal("point beyond the east edge must be outside")
	}
}

func TestObstacleCoversRespectsEnabledAndHeight(t *testing.T) {
	obs := DefaultObstacle()
	if obs.covers(-5, -5, 4.6, 2, 0) {
		t.Fatal("disabled obstacle must cover nothing")
	}
	obs.Enabled = true
	if !obs.covers(-5, -5, 4.6, 2, 0) {
		t.Fatal("enabled obstacle must cover its footprint")
	}
	if obs.covers(5, 5, 4.6, 2, 0) {
		t.Fatal("obstacle must not cover ground outside its footprint")
	}
	// A column far below the cube and its clearance is unaffected.
	if obs.covers(-5, -5, -10, 2, 0) {
		t.Fatal("obstacle floating far above the ground must not block it")
	}
}
