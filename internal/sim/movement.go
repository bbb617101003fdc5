package sim

import (
	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
)

// advanceTargets walks every target toward its current waypoint. Waypoints
// live in the XZ plane; a target keeps its own height while marching.
//
// A target within one step of the waypoint does not move this tick: it only
// advances its path index, and the leftover distance is absorbed on the next
// tick toward the new waypoint. Past the last waypoint a target stops moving
// and waits for lifecycle resolution to count the breach.
func (w *World) advanceTargets(dt float64) {
	w.targets.Each(func(id registry.Entity, target *Target) bool {
		if target.PathIndex >= len(w.waypoints) {
			return true
		}
		tr := w.transforms.Get(id)
		if tr == nil {
			return true
		}
		wp := w.waypoints[target.PathIndex]
		goal := geom.Vec3{X: wp.X, Y: tr.Position.Y, Z: wp.Z}
		step := target.Speed * dt
		if geom.DistanceXZ(tr.Position, goal) > step {
			dir := goal.Sub(tr.Position).Normalize()
			tr.Position = tr.Position.Add(dir.Scale(step))
			tr.Yaw = geom.YawToward(tr.Position, goal)
		} else {
			target.PathIndex++
		}
		return true
	})
}
