package nav

import (
	"math"

	"gatewatch/server/internal/geom"
)

type gridNeighbor struct {
	col      int
	row      int
	cost     float64
	diagonal bool
}

var gridNeighborOffsets = [...]gridNeighbor{
	{col: 0, row: -1, cost: 1, diagonal: false},
	{col: 1, row: 0, cost: 1, diagonal: false},
	{col: 0, row: 1, cost: 1, diagonal: false},
	{col: -1, row: 0, cost: 1, diagonal: false},
	{col: 1, row: -1, cost: math.Sqrt2, diagonal: true},
	{col: 1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: 1, cost: math.Sqrt2, diagonal: true},
	{col: -1, row: -1, cost: math.Sqrt2, diagonal: true},
}

// endpointSnapRadius bounds how far, in world units, a query endpoint may
// be from the nearest walkable cell before the query reports no path.
const endpointSnapRadius = 5.0

type cellPoint struct {
	col int
	row int
}

// grid is one generation of the walkable-cell structure. Grids are built
// whole and never mutated, so readers holding one across a rebuild stay
// consistent.
type grid struct {
	cols, rows int
	cellSize   float64
	originX    float64
	originZ    float64
	maxStep    float64
	walkable   []bool
	heights    []float64
}

func buildGrid(settings Settings, terrain Terrain, obstacles []Obstacle) *grid {
	half := terrain.HalfExtent()
	if settings.WorldHalfExtents < half {
		half = settings.WorldHalfExtents
	}
	cellSize := settings.CellWidth
	cols := int(math.Ceil(2 * half / cellSize))
	rows := cols
	if cols <= 0 {
		cols = 1
		rows = 1
	}
	g := &grid{
		cols:     cols,
		rows:     rows,
		cellSize: cellSize,
		originX:  -half,
		originZ:  -half,
		maxStep:  settings.StepHeight * settings.CellHeight,
		walkable: make([]bool, cols*rows),
		heights:  make([]float64, cols*rows),
	}

	clearance := settings.WalkableHeight * settings.CellHeight
	inflate := settings.WalkableRadius * settings.CellWidth
	maxSlope := math.Tan(settings.MaxWalkableSlopeDegrees * math.Pi / 180)

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			idx := g.index(col, row)
			center := g.cellCenter(col, row)
			if !terrain.Contains(center.X, center.Z) {
				continue
			}
			h := terrain.HeightAt(center.X, center.Z)
			g.heights[idx] = h
			if h < settings.WorldBottomBound {
				continue
			}
			gradX := math.Abs(terrain.HeightAt(center.X+cellSize, center.Z)-h) / cellSize
			gradZ := math.Abs(terrain.HeightAt(center.X, center.Z+cellSize)-h) / cellSize
			if gradX > maxSlope || gradZ > maxSlope {
				continue
			}
			covered := false
			for _, obs := range obstacles {
				if obs.covers(center.X, center.Z, h, clearance, inflate) {
					covered = true
					break
				}
			}
			if !covered {
				g.walkable[idx] = true
			}
		}
	}

	return g
}

func (g *grid) inBounds(col, row int) bool {
	return g != nil && col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *grid) index(col, row int) int {
	return row*g.cols + col
}

func (g *grid) isWalkable(col, row int) bool {
	if !g.inBounds(col, row) {
		return false
	}
	return g.walkable[g.index(col, row)]
}

func (g *grid) cellCenter(col, row int) geom.Vec3 {
	x := g.originX + (float64(col)+0.5)*g.cellSize
	z := g.originZ + (float64(row)+0.5)*g.cellSize
	var y float64
	if g.inBounds(col, row) {
		y = g.heights[g.index(col, row)]
	}
	return geom.Vec3{X: x, Y: y, Z: z}
}

func (g *grid) locate(x, z float64) (int, int, bool) {
	if g == nil || g.cols == 0 || g.rows == 0 {
		return 0, 0, false
	}
	col := int(math.Floor((x - g.originX) / g.cellSize))
	row := int(math.Floor((z - g.originZ) / g.cellSize))
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	return col, row, true
}

// canStep reports whether the height difference between two adjacent cells
// is climbable.
func (g *grid) canStep(fromIdx, toIdx int) bool {
	return math.Abs(g.heights[toIdx]-g.heights[fromIdx]) <= g.maxStep
}

// canTraverseDiagonal forbids cutting corners: a diagonal move requires both
// adjacent cardinal cells to be walkable.
func (g *grid) canTraverseDiagonal(current cellPoint, delta gridNeighbor) bool {
	if g == nil || !delta.diagonal {
		return true
	}
	horizCol := current.col + delta.col
	horizRow := current.row
	vertCol := current.col
	vertRow := current.row + delta.row
	if !g.inBounds(horizCol, horizRow) || !g.inBounds(vertCol, vertRow) {
		return false
	}
	return g.walkable[g.index(horizCol, horizRow)] && g.walkable[g.index(vertCol, vertRow)]
}

// closestWalkable searches outward from a cell for the nearest walkable one,
// giving up beyond maxRings rings.
func (g *grid) closestWalkable(col, row, maxRings int) (int, int, bool) {
	if !g.inBounds(col, row) {
		return 0, 0, false
	}
	visited := make(map[int]struct{})
	queue := []cellPoint{{col: col, row: row}}
	visited[g.index(col, row)] = struct{}{}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if abs(current.col-col) > maxRings || abs(current.row-row) > maxRings {
			continue
		}
		if g.walkable[g.index(current.col, current.row)] {
			return current.col, current.row, true
		}
		for _, delta := range gridNeighborOffsets {
			nc := current.col + delta.col
			nr := current.row + delta.row
			if !g.inBounds(nc, nr) {
				continue
			}
			nIdx := g.index(nc, nr)
			if _, seen := visited[nIdx]; seen {
				continue
			}
			visited[nIdx] = struct{}{}
			queue = append(queue, cellPoint{col: nc, row: nr})
		}
	}
	return 0, 0, false
}

// lineWalkable reports whether the straight segment between two cell centers
// crosses only walkable cells. Used by the string-pulling pass.
func (g *grid) lineWalkable(a, b cellPoint) bool {
	ax := g.originX + (float64(a.col)+0.5)*g.cellSize
	az := g.originZ + (float64(a.row)+0.5)*g.cellSize
	bx := g.originX + (float64(b.col)+0.5)*g.cellSize
	bz := g.originZ + (float64(b.row)+0.5)*g.cellSize
	dist := math.Hypot(bx-ax, bz-az)
	if dist == 0 {
		return g.isWalkable(a.col, a.row)
	}
	steps := int(math.Ceil(dist/(g.cellSize/2))) + 1
	prevIdx := -1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		col, row, ok := g.locate(ax+(bx-ax)*t, az+(bz-az)*t)
		if !ok || !g.walkable[g.index(col, row)] {
			return false
		}
		idx := g.index(col, row)
		if prevIdx >= 0 && idx != prevIdx && !g.canStep(prevIdx, idx) {
			return false
		}
		prevIdx = idx
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
