// Package level loads the YAML level files that configure a run: the route
// waypoints, entity stats, terrain, and navigation envelope. Every field is
// optional; absent fields take the shipped defaults.
package level

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/nav"
)

type Level struct {
	Name       string        `yaml:"name" json:"name"`
	Path       [][2]float64  `yaml:"path" json:"path"`
	Player     Player        `yaml:"player" json:"player"`
	Enemy      Enemy         `yaml:"enemy" json:"enemy"`
	Tower      Tower         `yaml:"tower" json:"tower"`
	Projectile Projectile    `yaml:"projectile" json:"projectile"`
	Nav        nav.Settings  `yaml:"nav" json:"nav"`
	Terrain    TerrainConfig `yaml:"terrain" json:"terrain"`
	Debug      Debug         `yaml:"debug" json:"debug"`
}

type Player struct {
	Health int `yaml:"health" json:"health"`
	Money  int `yaml:"money" json:"money"`
}

type Enemy struct {
	Speed  float64    `yaml:"speed" json:"speed"`
	Health int        `yaml:"health" json:"health"`
	Spawn  [3]float64 `yaml:"spawn" json:"spawn"`
	Count  int        `yaml:"count" json:"count"`
}

type Tower struct {
	Interval     float64     `yaml:"interval" json:"interval"`
	Range        float64     `yaml:"range" json:"range"`
	MuzzleOffset [3]float64  `yaml:"muzzle_offset" json:"muzzleOffset"`
	Placements   []Placement `yaml:"placements" json:"placements"`
}

type Placement struct {
	Kind     string     `yaml:"kind" json:"kind"`
	Position [3]float64 `yaml:"position" json:"position"`
}

type Projectile struct {
	Speed        float64 `yaml:"speed" json:"speed"`
	Lifetime     float64 `yaml:"lifetime" json:"lifetime"`
	Damage       int     `yaml:"damage" json:"damage"`
	ImpactRadius float64 `yaml:"impact_radius" json:"impactRadius"`
}

type TerrainConfig struct {
	Samples  int          `yaml:"samples" json:"samples"`
	Scale    float64      `yaml:"scale" json:"scale"`
	Obstacle nav.Obstacle `yaml:"obstacle" json:"obstacle"`
}

type Debug struct {
	QueryStart [3]float64 `yaml:"query_start" json:"queryStart"`
	QueryEnd   [3]float64 `yaml:"query_end" json:"queryEnd"`
	OverlayTTL float64    `yaml:"overlay_ttl" json:"overlayTTL"`
}

// Default returns the shipped level.
func Default() Level {
	var lvl Level
	lvl.applyDefaults()
	return lvl
}

// Load reads, defaults, and validates a level file.
func Load(path string) (Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Level{}, fmt.Errorf("read level: %w", err)
	}
	lvl, err := Parse(data)
	if err != nil {
		return Level{}, fmt.Errorf("level %s: %w", path, err)
	}
	return lvl, nil
}

// Parse decodes level YAML, applies defaults, and validates.
func Parse(data []byte) (Level, error) {
	var lvl Level
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return Level{}, fmt.Errorf("decode level: %w", err)
	}
	if lvl.Path != nil && len(lvl.Path) == 0 {
		return Level{}, fmt.Errorf("path must not be empty")
	}
	if err := validateExplicit(data); err != nil {
		return Level{}, err
	}
	lvl.applyDefaults()
	if err := lvl.Validate(); err != nil {
		return Level{}, err
	}
	return lvl, nil
}

// explicitValues redecodes the fields whose zero value is a legal YAML
// input, so an explicit zero can be told apart from an absent key.
type explicitValues struct {
	Enemy struct {
		Speed *float64 `yaml:"speed"`
	} `yaml:"enemy"`
	Tower struct {
		Interval *float64 `yaml:"interval"`
	} `yaml:"tower"`
	Nav struct {
		CellWidth  *float64 `yaml:"cell_width"`
		CellHeight *float64 `yaml:"cell_height"`
	} `yaml:"nav"`
}

// validateExplicit rejects values a file set to something unusable before
// defaulting papers over them.
func validateExplicit(data []byte) error {
	var raw explicitValues
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode level: %w", err)
	}
	if v := raw.Enemy.Speed; v != nil && *v <= 0 {
		return fmt.Errorf("enemy speed must be positive, got %v", *v)
	}
	if v := raw.Tower.Interval; v != nil && *v <= 0 {
		return fmt.Errorf("tower interval must be positive, got %v", *v)
	}
	if v := raw.Nav.CellWidth; v != nil && *v <= 0 {
		return fmt.Errorf("nav cell width must be positive, got %v", *v)
	}
	if v := raw.Nav.CellHeight; v != nil && *v <= 0 {
		return fmt.Errorf("nav cell height must be positive, got %v", *v)
	}
	return nil
}

func (l *Level) applyDefaults() {
	if l.Name == "" {
		l.Name = "meadow"
	}
	if l.Path == nil {
		l.Path = [][2]float64{{6, 2}, {6, 6}, {9, 9}}
	}
	if l.Player.Health == 0 {
		l.Player.Health = 10
	}
	if l.Player.Money == 0 {
		l.Player.Money = 100
	}
	if l.Enemy.Speed == 0 {
		l.Enemy.Speed = 0.25
	}
	if l.Enemy.Health == 0 {
		l.Enemy.Health = 3
	}
	if l.Enemy.Spawn == ([3]float64{}) {
		l.Enemy.Spawn = [3]float64{-2, 0, 2.5}
	}
	if l.Enemy.Count == 0 {
		l.Enemy.Count = 1
	}
	if l.Tower.Interval == 0 {
		l.Tower.Interval = 0.5
	}
	if l.Tower.Range == 0 {
		l.Tower.Range = 100
	}
	if l.Tower.MuzzleOffset == ([3]float64{}) {
		l.Tower.MuzzleOffset = [3]float64{0, 2, -2}
	}
	if l.Tower.Placements == nil {
		l.Tower.Placements = []Placement{{Kind: "missile", Position: [3]float64{0, 2, -2}}}
	}
	for i := range l.Tower.Placements {
		if l.Tower.Placements[i].Kind == "" {
			l.Tower.Placements[i].Kind = "missile"
		}
	}
	if l.Projectile.Speed == 0 {
		l.Projectile.Speed = 5
	}
	if l.Projectile.Lifetime == 0 {
		l.Projectile.Lifetime = 10
	}
	if l.Projectile.Damage == 0 {
		l.Projectile.Damage = 1
	}
	if l.Projectile.ImpactRadius == 0 {
		l.Projectile.ImpactRadius = 0.5
	}
	l.Nav = l.Nav.Normalized()
	if l.Terrain.Samples == 0 {
		l.Terrain.Samples = 50
	}
	if l.Terrain.Scale == 0 {
		l.Terrain.Scale = 50
	}
	if l.Terrain.Obstacle.HalfExtent == 0 {
		l.Terrain.Obstacle = nav.DefaultObstacle()
	}
	if l.Debug.QueryStart == ([3]float64{}) {
		l.Debug.QueryStart = [3]float64{5, 1, 5}
	}
	if l.Debug.QueryEnd == ([3]float64{}) {
		l.Debug.QueryEnd = [3]float64{-15, 1, -15}
	}
	if l.Debug.OverlayTTL == 0 {
		l.Debug.OverlayTTL = 4
	}
}

// Validate checks invariants a defaulted level must still satisfy.
func (l Level) Validate() error {
	if len(l.Path) == 0 {
		return fmt.Errorf("path must not be empty")
	}
	if l.Enemy.Speed <= 0 {
		return fmt.Errorf("enemy speed must be positive, got %v", l.Enemy.Speed)
	}
	if l.Enemy.Health <= 0 {
		return fmt.Errorf("enemy health must be positive, got %d", l.Enemy.Health)
	}
	if l.Enemy.Count < 0 {
		return fmt.Errorf("enemy count must not be negative, got %d", l.Enemy.Count)
	}
	if l.Player.Health <= 0 {
		return fmt.Errorf("player health must be positive, got %d", l.Player.Health)
	}
	if l.Player.Money < 0 {
		return fmt.Errorf("player money must not be negative, got %d", l.Player.Money)
	}
	if l.Tower.Interval <= 0 {
		return fmt.Errorf("tower interval must be positive, got %v", l.Tower.Interval)
	}
	if l.Tower.Range <= 0 {
		return fmt.Errorf("tower range must be positive, got %v", l.Tower.Range)
	}
	if l.Projectile.Speed <= 0 || l.Projectile.Lifetime <= 0 {
		return fmt.Errorf("projectile speed and lifetime must be positive")
	}
	if l.Projectile.ImpactRadius <= 0 {
		return fmt.Errorf("projectile impact radius must be positive, got %v", l.Projectile.ImpactRadius)
	}
	if l.Debug.OverlayTTL <= 0 {
		return fmt.Errorf("debug overlay ttl must be positive, got %v", l.Debug.OverlayTTL)
	}
	return nil
}

// Waypoints returns the route in world coordinates.
func (l Level) Waypoints() []geom.Vec2 {
	points := make([]geom.Vec2, 0, len(l.Path))
	for _, wp := range l.Path {
		points = append(points, geom.Vec2{X: wp[0], Z: wp[1]})
	}
	return points
}

// EnemySpawn is the default spawn position for hostile units.
func (l Level) EnemySpawn() geom.Vec3 {
	return vec3(l.Enemy.Spawn)
}

// MuzzleOffset is the projectile spawn offset shared by all towers.
func (l Level) MuzzleOffset() geom.Vec3 {
	return vec3(l.Tower.MuzzleOffset)
}

// TowerPlacement is one initial tower in world coordinates.
type TowerPlacement struct {
	Kind     string
	Position geom.Vec3
}

// TowerPlacements returns the towers created at level load.
func (l Level) TowerPlacements() []TowerPlacement {
	placements := make([]TowerPlacement, 0, len(l.Tower.Placements))
	for _, p := range l.Tower.Placements {
		placements = append(placements, TowerPlacement{Kind: p.Kind, Position: vec3(p.Position)})
	}
	return placements
}

// Ground is the terrain heightfield.
func (l Level) Ground() nav.Terrain {
	return nav.Terrain{Samples: l.Terrain.Samples, Scale: l.Terrain.Scale}
}

// Obstacles returns the toggleable obstacle set for the navigation field.
func (l Level) Obstacles() []nav.Obstacle {
	return []nav.Obstacle{l.Terrain.Obstacle}
}

// DebugQuery returns the default endpoints for operator path queries.
func (l Level) DebugQuery() (geom.Vec3, geom.Vec3) {
	return vec3(l.Debug.QueryStart), vec3(l.Debug.QueryEnd)
}

func vec3(v [3]float64) geom.Vec3 {
	return geom.Vec3{X: v[0], Y: v[1], Z: v[2]}
}
