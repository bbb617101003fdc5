package sim

import (
	"math"
	"testing"

	"gatewatch/server/internal/geom"
)

func TestApplySpawnAndBuild(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	results := w.Apply([]Command{
		{Origin: "op", Type: CommandSpawnEnemy},
		{Origin: "op", Type: CommandBuildTower, Build: &BuildCommand{Kind: "missile", Position: geom.Vec3{X: 1, Y: 0, Z: 1}}},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("result %d: unexpected error %v", i, res.Err)
		}
		if res.Entity == 0 {
			t.Fatalf("result %d: expected a spawned entity", i)
		}
	}
	if got := w.EntityCount(); got != 2 {
		t.Fatalf("expected 2 entities after apply, got %d", got)
	}
}

func TestApplySpawnDefaultsToLevelSpawnPoint(t *testing.T) {
	lvl := testLevel()
	w := NewWorld(lvl, nil, nil, nil)
	results := w.Apply([]Command{{Type: CommandSpawnEnemy}})
	if results[0].Err != nil {
		t.Fatalf("unexpected error %v", results[0].Err)
	}
	tr := w.transforms.Get(results[0].Entity)
	if tr == nil {
		t.Fatalf("spawned target has no transform")
	}
	if tr.Position != lvl.EnemySpawn() {
		t.Fatalf("expected spawn at %+v, got %+v", lvl.EnemySpawn(), tr.Position)
	}
}

func TestApplyRejectsNonFinitePositions(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	bad := geom.Vec3{X: math.NaN()}
	results := w.Apply([]Command{
		{Type: CommandSpawnEnemy, Spawn: &SpawnCommand{Position: &bad}},
		{Type: CommandBuildTower, Build: &BuildCommand{Position: bad}},
		{Type: CommandAsyncPath, Path: &PathCommand{Start: bad, End: geom.Vec3{}}},
	})
	for i, res := range results {
		if res.Err == nil {
			t.Fatalf("result %d: expected a precondition error", i)
		}
	}
	if got := w.EntityCount(); got != 0 {
		t.Fatalf("expected no entities after rejected commands, got %d", got)
	}
}

func TestApplyAsyncPathReturnsQueryID(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	results := w.Apply([]Command{{Type: CommandAsyncPath, Path: &PathCommand{UseDebug: true}}})
	if results[0].Err != nil {
		t.Fatalf("unexpected error %v", results[0].Err)
	}
	if results[0].QueryID == 0 {
		t.Fatalf("expected a query ID")
	}
	if got := w.PendingPathTasks(); got != 1 {
		t.Fatalf("expected 1 pending task, got %d", got)
	}
}

func TestApplyToggleObstacle(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	results := w.Apply([]Command{{Type: CommandToggleObstacle, Obstacle: &ObstacleCommand{Index: 0}}})
	if results[0].Err != nil {
		t.Fatalf("unexpected error %v", results[0].Err)
	}
	if !results[0].Enabled {
		t.Fatalf("expected obstacle enabled after first toggle")
	}
	results = w.Apply([]Command{{Type: CommandToggleObstacle, Obstacle: &ObstacleCommand{Index: 99}}})
	if results[0].Err == nil {
		t.Fatalf("expected out-of-range obstacle index to error")
	}
}

func TestApplyUnknownCommandErrors(t *testing.T) {
	w := NewWorld(testLevel(), nil, nil, nil)
	results := w.Apply([]Command{{Type: CommandType("Teleport")}})
	if results[0].Err == nil {
		t.Fatalf("expected unknown command to error")
	}
}
