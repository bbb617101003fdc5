package nav

import (
	"container/heap"
	"math"
)

func (g *grid) heuristic(a, b cellPoint) float64 {
	dx := math.Abs(float64(a.col - b.col))
	dz := math.Abs(float64(a.row - b.row))
	if dx > dz {
		return dx + (math.Sqrt2-1)*dz
	}
	return dz + (math.Sqrt2-1)*dx
}

type pathNode struct {
	point  cellPoint
	g      float64
	f      float64
	index  int
	parent *pathNode
}

type pathQueue []*pathNode

func (pq pathQueue) Len() int { return len(pq) }

func (pq pathQueue) Less(i, j int) bool { return pq[i].f < pq[j].f }

func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *pathQueue) Push(x any) {
	n := len(*pq)
	item := x.(*pathNode)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

func (g *grid) astar(start, goal cellPoint) ([]cellPoint, bool) {
	open := &pathQueue{}
	heap.Init(open)
	startNode := &pathNode{point: start, g: 0, f: g.heuristic(start, goal)}
	heap.Push(open, startNode)
	gScore := map[int]float64{g.index(start.col, start.row): 0}
	closed := make(map[int]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		currIdx := g.index(current.point.col, current.point.row)
		if _, seen := closed[currIdx]; seen {
			continue
		}
		closed[currIdx] = struct{}{}
		if current.point == goal {
			return reconstructCellPath(current), true
		}

		for _, delta := range gridNeighborOffsets {
			if delta.diagonal && !g.canTraverseDiagonal(current.point, delta) {
				continue
			}
			nc := current.point.col + delta.col
			nr := current.point.row + delta.row
			if !g.inBounds(nc, nr) {
				continue
			}
			idx := g.index(nc, nr)
			if !g.walkable[idx] {
				continue
			}
			if !g.canStep(currIdx, idx) {
				continue
			}
			if _, seen := closed[idx]; seen {
				continue
			}
			tentativeG := current.g + delta.cost
			if prev, ok := gScore[idx]; ok && tentativeG >= prev {
				continue
			}
			gScore[idx] = tentativeG
			heap.Push(open, &pathNode{
				point:  cellPoint{col: nc, row: nr},
				g:      tentativeG,
				f:      tentativeG + g.heuristic(cellPoint{col: nc, row: nr}, goal),
				parent: current,
			})
		}
	}
	return nil, false
}

func reconstructCellPath(end *pathNode) []cellPoint {
	if end == nil {
		return nil
	}
	path := make([]cellPoint, 0)
	for node := end; node != nil; node = node.parent {
		path = append(path, node.point)
	}
	for i := 0; i < len(path)/2; i++ {
		j := len(path) - 1 - i
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// stringPull drops every intermediate cell that is reachable in a straight
// walkable line from the previously kept cell, reducing the raw cell
// sequence to corner waypoints.
func (g *grid) stringPull(cells []cellPoint) []cellPoint {
	if len(cells) <= 2 {
		return cells
	}
	pulled := make([]cellPoint, 0, len(cells))
	pulled = append(pulled, cells[0])
	anchor := cells[0]
	for i := 1; i < len(cells)-1; i++ {
		if g.lineWalkable(anchor, cells[i+1]) {
			continue
		}
		pulled = append(pulled, cells[i])
		anchor = cells[i]
	}
	pulled = append(pulled, cells[len(cells)-1])
	return pulled
}
