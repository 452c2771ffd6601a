package spatial

import (
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// ============================================================================
// Types
// ============================================================================

// GridNode is one cell of the grid and the keys of the shapes overlapping it
type GridNode[K constraints.Unsigned] struct {
	boundary actor.AABB
	keys     []K
}

func (n *GridNode[K]) Boundary() actor.AABB { return n.boundary }

func (n *GridNode[K]) Keys() []K { return n.keys }

// Grid partitions the bounds of the inserted shapes into scale×scale×scale
// uniform cells (scale×scale in 2D).
type Grid[K constraints.Unsigned] struct {
	base[K]
	cells []GridNode[K]
}

// NewGrid creates an empty grid
func NewGrid[K constraints.Unsigned](opts Options) *Grid[K] {
	return &Grid[K]{base: base[K]{opts: opts}}
}

// Insert - rebuilds the grid, shapes sorted by cell
func (g *Grid[K]) Insert(shapes []actor.Shape) error {
	return g.build(shapes, true)
}

// InsertNoSort - rebuilds the grid keeping the caller's order
func (g *Grid[K]) InsertNoSort(shapes []actor.Shape) error {
	return g.build(shapes, false)
}

func (g *Grid[K]) build(shapes []actor.Shape, sorted bool) error {
	if err := checkCapacity[K](len(shapes)); err != nil {
		return err
	}

	worldExtent, shapeExtent := g.measure(shapes)
	g.setScale(g.chooseScale(len(shapes), worldExtent, shapeExtent))
	g.order(shapes, sorted)

	count := g.scale[0] * g.scale[1] * g.scale[2]
	if cap(g.cells) < count {
		g.cells = make([]GridNode[K], count)
	}
	g.cells = g.cells[:count]

	for z := 0; z < g.scale[2]; z++ {
		for y := 0; y < g.scale[1]; y++ {
			for x := 0; x < g.scale[0]; x++ {
				c := [3]int{x, y, z}
				cell := &g.cells[g.gridKey(c)]
				cell.boundary = g.cellBounds(c)
				cell.keys = cell.keys[:0]
			}
		}
	}

	// a shape is at most half a cell larger than its own cell, so the range
	// below stays within the 3×3×3 neighborhood of the center cell
	for i, s := range g.shapes {
		lo := g.cellOf(s.Min())
		hi := g.cellOf(s.Max())
		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					cell := &g.cells[g.gridKey([3]int{x, y, z})]
					cell.keys = append(cell.keys, K(i))
				}
			}
		}
	}

	return nil
}

// Nodes returns the cells in row-major order
func (g *Grid[K]) Nodes() []GridNode[K] {
	return g.cells
}

// Scale returns the number of cells per axis
func (g *Grid[K]) Scale() [3]int {
	return g.scale
}

// Collisions - every overlapping pair, each reported once
func (g *Grid[K]) Collisions() []Pair[K] {
	g.flags.Clear()
	g.pairs = g.pairs[:0]

	for i := range g.cells {
		g.testKeys(g.cells[i].keys)
	}
	return g.pairs
}

// CollisionsAt - overlapping pairs within the cell containing point
func (g *Grid[K]) CollisionsAt(point mgl64.Vec3) []Pair[K] {
	g.flags.Clear()
	g.pairs = g.pairs[:0]
	if len(g.shapes) == 0 {
		return g.pairs
	}

	c := g.cellOf(g.bounds.Clamp(point))
	g.testKeys(g.cells[g.gridKey(c)].keys)
	return g.pairs
}

// RayCast walks the cells crossed by the ray (3D DDA), stopping once the
// next cell starts beyond the nearest hit.
func (g *Grid[K]) RayCast(ray actor.Ray) []Hit[K] {
	g.hits = g.hits[:0]
	g.seen.Clear()

	tEntry, ok := g.rayEntry(ray)
	if !ok {
		return g.hits
	}

	entry := g.bounds.Clamp(ray.At(tEntry))
	cell := g.cellOf(entry)

	var step [3]int
	var tMax, tDelta mgl64.Vec3
	for i := 0; i < 3; i++ {
		d := ray.Direction[i]
		switch {
		case d > 1e-12 && g.scale[i] > 1:
			step[i] = 1
			boundary := g.bounds.Min[i] + float64(cell[i]+1)*g.cellSize[i]
			tMax[i] = tEntry + (boundary-entry[i])/d
			tDelta[i] = g.cellSize[i] / d
		case d < -1e-12 && g.scale[i] > 1:
			step[i] = -1
			boundary := g.bounds.Min[i] + float64(cell[i])*g.cellSize[i]
			tMax[i] = tEntry + (boundary-entry[i])/d
			tDelta[i] = -g.cellSize[i] / d
		default:
			tMax[i] = math.Inf(1)
			tDelta[i] = math.Inf(1)
		}
	}

	nearest := math.Inf(1)
	for {
		nearest = g.castKeys(ray, g.cells[g.gridKey(cell)].keys, nearest)

		// next cell along the axis with the closest boundary
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		if math.IsInf(tMax[axis], 1) || tMax[axis] > nearest {
			break
		}
		cell[axis] += step[axis]
		if cell[axis] < 0 || cell[axis] >= g.scale[axis] {
			break
		}
		tMax[axis] += tDelta[axis]
	}

	g.sortHits()
	return g.hits
}

// Overlap - keys of the shapes overlapping shape, each reported once
func (g *Grid[K]) Overlap(shape actor.Shape) []K {
	g.found = g.found[:0]
	g.seen.Clear()

	query := actor.BoundsOf(shape)
	if len(g.shapes) == 0 || !query.Overlaps(g.bounds) {
		return g.found
	}

	lo := g.cellOf(g.bounds.Clamp(query.Min))
	hi := g.cellOf(g.bounds.Clamp(query.Max))
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				g.overlapKeys(shape, g.cells[g.gridKey([3]int{x, y, z})].keys)
			}
		}
	}
	return g.found
}
