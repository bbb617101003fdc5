package sim

import (
	"fmt"
	"time"

	"gatewatch/server/internal/geom"
	"gatewatch/server/internal/registry"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandSpawnEnemy     CommandType = "SpawnEnemy"
	CommandBuildTower     CommandType = "BuildTower"
	CommandAsyncPath      CommandType = "AsyncPath"
	CommandToggleObstacle CommandType = "ToggleObstacle"
)

// SpawnCommand places a new target. A nil position falls back to the
// level's enemy spawn point.
type SpawnCommand struct {
	Position *geom.Vec3 `json:"position,omitempty"`
}

// BuildCommand places a tower of the given kind.
type BuildCommand struct {
	Kind     string    `json:"kind"`
	Position geom.Vec3 `json:"position"`
}

// PathCommand requests an asynchronous path query. UseDebug substitutes the
// level's configured debug endpoints for Start and End.
type PathCommand struct {
	Start    geom.Vec3 `json:"start"`
	End      geom.Vec3 `json:"end"`
	UseDebug bool      `json:"useDebug,omitempty"`
}

// ObstacleCommand flips the indexed navigation obstacle.
type ObstacleCommand struct {
	Index int `json:"index"`
}

// Command represents an intent captured for processing on the next tick.
// Exactly one of the pointer fields matching Type is set.
type Command struct {
	Origin   string           `json:"origin,omitempty"`
	Type     CommandType      `json:"type"`
	IssuedAt time.Time        `json:"issuedAt"`
	Spawn    *SpawnCommand    `json:"spawn,omitempty"`
	Build    *BuildCommand    `json:"build,omitempty"`
	Path     *PathCommand     `json:"path,omitempty"`
	Obstacle *ObstacleCommand `json:"obstacle,omitempty"`
}

// CommandResult reports what applying one command produced. Err is set when
// the command was well-formed but could not be applied (for example an
// obstacle index out of range); the tick itself never fails.
type CommandResult struct {
	Type    CommandType
	Origin  string
	Entity  registry.Entity
	QueryID uint64
	Enabled bool
	Err     error
}

// Apply executes staged commands in arrival order before the next step.
// Only ever called from the tick loop, never concurrently with Step.
func (w *World) Apply(commands []Command) []CommandResult {
	if len(commands) == 0 {
		return nil
	}
	results := make([]CommandResult, 0, len(commands))
	for _, cmd := range commands {
		res := CommandResult{Type: cmd.Type, Origin: cmd.Origin}
		switch cmd.Type {
		case CommandSpawnEnemy:
			pos := w.lvl.EnemySpawn()
			if cmd.Spawn != nil && cmd.Spawn.Position != nil {
				pos = *cmd.Spawn.Position
			}
			if !pos.Finite() {
				res.Err = fmt.Errorf("spawn position is not finite")
				break
			}
			res.Entity = w.SpawnTarget(pos)
		case CommandBuildTower:
			if cmd.Build == nil {
				res.Err = fmt.Errorf("build command missing payload")
				break
			}
			if !cmd.Build.Position.Finite() {
				res.Err = fmt.Errorf("tower position is not finite")
				break
			}
			res.Entity = w.BuildTower(cmd.Build.Kind, cmd.Build.Position)
		case CommandAsyncPath:
			if cmd.Path == nil {
				res.Err = fmt.Errorf("path command missing payload")
				break
			}
			start, end := cmd.Path.Start, cmd.Path.End
			if cmd.Path.UseDebug {
				start, end = w.lvl.DebugQuery()
			}
			if !start.Finite() || !end.Finite() {
				res.Err = fmt.Errorf("path endpoints are not finite")
				break
			}
			res.QueryID = w.SubmitAsyncPath(start, end)
		case CommandToggleObstacle:
			index := 0
			if cmd.Obstacle != nil {
				index = cmd.Obstacle.Index
			}
			enabled, err := w.ToggleObstacle(index)
			res.Enabled = enabled
			res.Err = err
		default:
			res.Err = fmt.Errorf("unknown command type %q", cmd.Type)
		}
		if res.Err == nil {
			w.metrics.RecordCommand(string(cmd.Type))
		}
		results = append(results, res)
	}
	return results
}
