package nav

import (
	"math"

	"gatewatch/server/internal/geom"
)

// Terrain is the ground heightfield. It is sampled on a square grid of
// Samples x Samples points centered on the origin and spanning Scale world
// units per side; sample heights follow a sine ridge along the north-south
// axis, scaled by Scale.
type Terrain struct {
	Samples int     `yaml:"samples" json:"samples"`
	Scale   float64 `yaml:"scale" json:"scale"`
}

// DefaultTerrain matches the shipped level ground.
func DefaultTerrain() Terrain {
	return Terrain{Samples: 50, Scale: 50}
}

// HalfExtent is the distance from the origin to the terrain edge.
func (t Terrain) HalfExtent() float64 {
	return t.Scale / 2
}

// Contains reports whether the point sits over the terrain footprint.
func (t Terrain) Contains(x, z float64) bool {
	half := t.HalfExtent()
	return x >= -half && x <= half && z >= -half && z <= half
}

// HeightAt samples the ground height at a world position. Points outside
// the footprint are clamped to the edge.
func (t Terrain) HeightAt(x, z float64) float64 {
	half := t.HalfExtent()
	z = geom.Clamp(z, -half, half)
	row := (z/t.Scale + 0.5) * float64(t.Samples-1)
	return math.Sin(row/10) / 10 * t.Scale
}

// Obstacle is an axis-aligned cube that removes walkable cells under its
// footprint while enabled.
type Obstacle struct {
	Position   geom.Vec3 `yaml:"position" json:"position"`
	HalfExtent float64   `yaml:"half_extent" json:"halfExtent"`
	Enabled    bool      `yaml:"enabled" json:"enabled"`
}

// DefaultObstacle matches the shipped toggleable cube. It starts disabled.
func DefaultObstacle() Obstacle {
	return Obstacle{Position: geom.Vec3{X: -5, Y: 5, Z: -5}, HalfExtent: 2.5}
}

// covers reports whether the obstacle column blocks a ground cell at the
// given position, treating the walkable clearance above the ground as part
// of the cell.
func (o Obstacle) covers(x, z, groundY, clearance, inflate float64) bool {
	if !o.Enabled {
		return false
	}
	half := o.HalfExtent + inflate
	if x < o.Position.X-half || x > o.Position.X+half {
		return false
	}
	if z < o.Position.Z-half || z > o.Position.Z+half {
		return false
	}
	return o.Position.Y-o.HalfExtent <= groundY+clearance && o.Position.Y+o.HalfExtent >= groundY
}
