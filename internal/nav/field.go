package nav

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gatewatch/server/internal/geom"
)

var (
	// ErrNotFinite marks a query whose endpoints carry NaN or infinite
	// coordinates.
	ErrNotFinite = errors.New("nav: endpoint is not finite")
	// ErrOutOfBounds marks a query endpoint outside the navigable world
	// volume.
	ErrOutOfBounds = errors.New("nav: endpoint outside world bounds")
)

// Field is the shared navigation structure. Queries take read access, an
// obstacle toggle rebuilds the grid under write access; the two never
// interleave.
type Field struct {
	mu         sync.RWMutex
	settings   Settings
	terrain    Terrain
	obstacles  []Obstacle
	grid       *grid
	generation uint64
}

func NewField(settings Settings, terrain Terrain, obstacles []Obstacle) *Field {
	settings = settings.Normalized()
	if terrain.Samples <= 1 || terrain.Scale <= 0 {
		terrain = DefaultTerrain()
	}
	f := &Field{
		settings:  settings,
		terrain:   terrain,
		obstacles: append([]Obstacle(nil), obstacles...),
	}
	f.grid = buildGrid(f.settings, f.terrain, f.obstacles)
	f.generation = 1
	return f
}

// Settings returns the navigation envelope the field was built with.
func (f *Field) Settings() Settings {
	return f.settings
}

// Generation increments on every rebuild.
func (f *Field) Generation() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.generation
}

// ToggleObstacle flips one obstacle and rebuilds the walkable grid under the
// write lock. It returns the obstacle's new state.
func (f *Field) ToggleObstacle(index int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.obstacles) {
		return false, fmt.Errorf("nav: no obstacle at index %d", index)
	}
	f.obstacles[index].Enabled = !f.obstacles[index].Enabled
	f.grid = buildGrid(f.settings, f.terrain, f.obstacles)
	f.generation++
	return f.obstacles[index].Enabled, nil
}

// ObstacleEnabled reports one obstacle's current state.
func (f *Field) ObstacleEnabled(index int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if index < 0 || index >= len(f.obstacles) {
		return false
	}
	return f.obstacles[index].Enabled
}

// FindPath runs the polygon-path query plus string pulling between two world
// positions under the read lock. The three outcomes are distinct: a found
// path, found == false with a nil error when no route exists, and a non-nil
// error for malformed input.
func (f *Field) FindPath(start, end geom.Vec3) ([]geom.Vec3, bool, error) {
	if !start.Finite() {
		return nil, false, fmt.Errorf("start (%v, %v, %v): %w", start.X, start.Y, start.Z, ErrNotFinite)
	}
	if !end.Finite() {
		return nil, false, fmt.Errorf("end (%v, %v, %v): %w", end.X, end.Y, end.Z, ErrNotFinite)
	}
	if err := f.checkBounds("start", start); err != nil {
		return nil, false, err
	}
	if err := f.checkBounds("end", end); err != nil {
		return nil, false, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	g := f.grid

	maxRings := int(math.Ceil(endpointSnapRadius / g.cellSize))
	startCol, startRow := g.clampLocate(start.X, start.Z)
	endCol, endRow := g.clampLocate(end.X, end.Z)
	startCol, startRow, ok := g.closestWalkable(startCol, startRow, maxRings)
	if !ok {
		return nil, false, nil
	}
	endCol, endRow, ok = g.closestWalkable(endCol, endRow, maxRings)
	if !ok {
		return nil, false, nil
	}

	startCell := cellPoint{col: startCol, row: startRow}
	endCell := cellPoint{col: endCol, row: endRow}
	if startCell == endCell {
		return []geom.Vec3{g.cellCenter(startCell.col, startCell.row)}, true, nil
	}

	cells, ok := g.astar(startCell, endCell)
	if !ok || len(cells) == 0 {
		return nil, false, nil
	}
	pulled := g.stringPull(cells)
	points := make([]geom.Vec3, 0, len(pulled))
	for _, cell := range pulled {
		points = append(points, g.cellCenter(cell.col, cell.row))
	}
	return points, true, nil
}

func (f *Field) checkBounds(label string, p geom.Vec3) error {
	half := f.settings.WorldHalfExtents
	if p.X < -half || p.X > half || p.Z < -half || p.Z > half || p.Y < f.settings.WorldBottomBound {
		return fmt.Errorf("%s (%v, %v, %v): %w", label, p.X, p.Y, p.Z, ErrOutOfBounds)
	}
	return nil
}

// clampLocate maps a world position to the nearest grid cell, clamping
// positions off the grid edge onto it.
func (g *grid) clampLocate(x, z float64) (int, int) {
	col := int(math.Floor((x - g.originX) / g.cellSize))
	row := int(math.Floor((z - g.originZ) / g.cellSize))
	if col < 0 {
		col = 0
	}
	if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// GridSummary is the navdraw overlay payload: enough structure to draw the
// walkable grid without exposing the grid itself.
type GridSummary struct {
	CellSize   float64 `json:"cellSize"`
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	OriginX    float64 `json:"originX"`
	OriginZ    float64 `json:"originZ"`
	Generation uint64  `json:"generation"`
	Blocked    []int   `json:"blocked"`
}

// Summary captures the current grid for debug rendering.
func (f *Field) Summary() GridSummary {
	f.mu.RLock()
	defer f.mu.RUnlock()
	g := f.grid
	summary := GridSummary{
		CellSize:   g.cellSize,
		Cols:       g.cols,
		Rows:       g.rows,
		OriginX:    g.originX,
		OriginZ:    g.originZ,
		Generation: f.generation,
	}
	for idx, ok := range g.walkable {
		if !ok {
			summary.Blocked = append(summary.Blocked, idx)
		}
	}
	return summary
}
