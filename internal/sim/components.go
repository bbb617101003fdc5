package sim

import "gatewatch/server/internal/geom"

// Transform is the spatial component shared by every entity kind.
type Transform struct {
	Position geom.Vec3
	Yaw      float64
}

// Target marches along the level route one waypoint at a time. PathIndex
// addresses the waypoint currently being approached; once it passes the end
// of the route the target has breached.
type Target struct {
	Speed     float64
	PathIndex int
}

// Health is depleted by projectile impacts. Entities at or below zero are
// removed during lifecycle resolution.
type Health struct {
	Current int
}

// Tower scans for targets each time its cooldown elapses. The muzzle offset
// is applied to the tower anchor to get the projectile origin.
type Tower struct {
	Kind              string
	Interval          float64
	Range             float64
	MuzzleOffset      geom.Vec3
	CooldownRemaining float64
}

// Projectile flies along a fixed direction until it hits something or its
// time budget runs out. Direction is stored as aimed (not normalized).
type Projectile struct {
	Direction geom.Vec3
	Speed     float64
	TTL       float64
	Damage    int
}
