// Package spatial implements the broad phase: two interchangeable spatial
// indexes over a set of shapes, a uniform grid and a loose octree.
//
// Both indexes rebuild from scratch on every Insert. Shapes are sorted by the
// cell holding their center (radix sort on the grid key) so that spatially
// close shapes are close in memory; IndexMap translates sorted positions back
// to the caller's order.
//
// Query results and every scratch buffer are owned by the index and reused by
// the next query: an index must not be queried concurrently, and results must
// be consumed (or copied) before the next call.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/intersect"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// ErrCapacity is returned when more shapes are inserted than the key type can address
var ErrCapacity = errors.New("spatial: shape count exceeds key capacity")

// MaxScale bounds the number of cells per axis
const MaxScale = 1024

// Pair is two colliding shapes, A < B, in sorted order
type Pair[K constraints.Unsigned] struct {
	A, B K
}

// Hit is a shape crossed by a ray
type Hit[K constraints.Unsigned] struct {
	Index    K
	Point    mgl64.Vec3
	Distance float64
}

// Index is the contract shared by Grid and Tree
type Index[K constraints.Unsigned] interface {
	// Insert rebuilds the index over shapes, sorted by cell
	Insert(shapes []actor.Shape) error
	// InsertNoSort rebuilds the index keeping the caller's order
	InsertNoSort(shapes []actor.Shape) error
	// Collisions returns every pair of overlapping shapes
	Collisions() []Pair[K]
	// CollisionsAt restricts Collisions to the cell containing point
	CollisionsAt(point mgl64.Vec3) []Pair[K]
	// RayCast returns the shapes crossed by the ray, nearest first
	RayCast(ray actor.Ray) []Hit[K]
	// Overlap returns the shapes overlapping shape
	Overlap(shape actor.Shape) []K
	// IndexMap maps a sorted position to the position given to Insert
	IndexMap() []K
	// Shapes returns the shapes in sorted order
	Shapes() []actor.Shape
	Len() int
	Bounds() actor.AABB
}

// Options shared by both indexes
type Options struct {
	// Dimensions is 3 (default) or 2. In 2D the Z axis is not subdivided.
	Dimensions int
}

func (o Options) planar() bool {
	return o.Dimensions == 2
}

// base holds the state common to Grid and Tree
type base[K constraints.Unsigned] struct {
	opts Options

	shapes   []actor.Shape
	indexMap []K
	items    []sortItem[uint32]
	sortBuf  []sortItem[uint32]

	bounds   actor.AABB
	cellSize mgl64.Vec3
	scale    [3]int

	flags BitFlag
	seen  BitFlag

	pairs []Pair[K]
	hits  []Hit[K]
	found []K
}

func maxKey[K constraints.Unsigned]() uint64 {
	var zero K
	return uint64(zero - 1)
}

func checkCapacity[K constraints.Unsigned](count int) error {
	if count > 0 && uint64(count-1) > maxKey[K]() {
		return fmt.Errorf("%w: %d shapes, max key %d", ErrCapacity, count, maxKey[K]())
	}
	return nil
}

// measure computes the cubic bounds of shapes and the largest shape extent
func (b *base[K]) measure(shapes []actor.Shape) (worldExtent, shapeExtent float64) {
	bounds := actor.EmptyAABB()
	maxSquare := 0.0
	for _, s := range shapes {
		bounds = bounds.Extend(s.Min()).Extend(s.Max())
		maxSquare = math.Max(maxSquare, s.SquareSize())
	}
	if bounds.IsEmpty() {
		bounds = actor.AABB{}
	}

	size := bounds.Size()
	worldExtent = math.Max(size.X(), size.Y())
	if !b.opts.planar() {
		worldExtent = math.Max(worldExtent, size.Z())
	}
	// a single point or coincident shapes
	if worldExtent <= 0 {
		worldExtent = 1
	}

	b.bounds.Min = bounds.Min
	b.bounds.Max = bounds.Min.Add(mgl64.Vec3{worldExtent, worldExtent, worldExtent})
	if b.opts.planar() {
		b.bounds.Max[2] = bounds.Max[2]
	}

	return worldExtent, math.Sqrt(maxSquare)
}

// chooseScale returns the smallest power of two cells per axis so that a
// cell is at least half the largest shape, capped by the cube root of the
// shape count (square root in 2D).
func (b *base[K]) chooseScale(count int, worldExtent, shapeExtent float64) int {
	ratio := math.Inf(1)
	if shapeExtent > 0 {
		ratio = worldExtent / shapeExtent
	}

	limit := math.Cbrt(float64(count))
	if b.opts.planar() {
		limit = math.Sqrt(float64(count))
	}
	limit = math.Max(1, math.Floor(limit))

	scale := 1
	for float64(scale) < ratio && float64(scale*2) <= limit && scale < MaxScale {
		scale <<= 1
	}
	return scale
}

func (b *base[K]) setScale(scale int) {
	b.scale = [3]int{scale, scale, scale}
	if b.opts.planar() {
		b.scale[2] = 1
	}
	size := b.bounds.Size()
	for i := 0; i < 3; i++ {
		b.cellSize[i] = size[i] / float64(b.scale[i])
	}
}

// cellOf returns the cell coordinates of a point, clamped to the grid
func (b *base[K]) cellOf(point mgl64.Vec3) [3]int {
	var c [3]int
	for i := 0; i < 3; i++ {
		if b.cellSize[i] <= 0 {
			continue
		}
		v := int(math.Floor((point[i] - b.bounds.Min[i]) / b.cellSize[i]))
		c[i] = min(max(v, 0), b.scale[i]-1)
	}
	return c
}

// gridKey is the row-major index of a cell
func (b *base[K]) gridKey(c [3]int) uint32 {
	return uint32((c[2]*b.scale[1]+c[1])*b.scale[0] + c[0])
}

// cellBounds returns the boundary of the cell at c
func (b *base[K]) cellBounds(c [3]int) actor.AABB {
	var box actor.AABB
	for i := 0; i < 3; i++ {
		box.Min[i] = b.bounds.Min[i] + float64(c[i])*b.cellSize[i]
		box.Max[i] = box.Min[i] + b.cellSize[i]
	}
	return box
}

// order sorts (or not) the shapes by grid key and fills shapes and indexMap
func (b *base[K]) order(shapes []actor.Shape, sorted bool) {
	n := len(shapes)
	b.items = b.items[:0]
	for i, s := range shapes {
		b.items = append(b.items, sortItem[uint32]{key: b.gridKey(b.cellOf(s.Center())), index: i})
	}

	items := b.items
	if sorted && n > 1 {
		if cap(b.sortBuf) < n {
			b.sortBuf = make([]sortItem[uint32], n)
		}
		items = radixSort(b.items, b.sortBuf)
		// keep both buffers for the next rebuild
		if &items[0] != &b.items[0] {
			b.sortBuf, b.items = b.items, items
		}
	}

	b.shapes = b.shapes[:0]
	b.indexMap = b.indexMap[:0]
	for _, it := range items {
		b.shapes = append(b.shapes, shapes[it.index])
		b.indexMap = append(b.indexMap, K(it.index))
	}

	b.flags.Resize(n, n)
	b.seen.Resize(1, n)
}

func (b *base[K]) IndexMap() []K { return b.indexMap }

func (b *base[K]) Shapes() []actor.Shape { return b.shapes }

func (b *base[K]) Len() int { return len(b.shapes) }

func (b *base[K]) Bounds() actor.AABB { return b.bounds }

// testKeys runs the narrow phase on every pair of keys not tested yet.
// keys are ascending, so a < b.
func (b *base[K]) testKeys(keys []K) {
	for i := 0; i < len(keys); i++ {
		a := keys[i]
		for j := i + 1; j < len(keys); j++ {
			c := keys[j]
			if b.flags.GetSetOn(int(a), int(c)) {
				continue
			}
			if intersect.Intersect(b.shapes[a], b.shapes[c]) {
				b.pairs = append(b.pairs, Pair[K]{A: a, B: c})
			}
		}
	}
}

// castKeys casts the ray against keys not tested yet, returns the nearest distance found
func (b *base[K]) castKeys(ray actor.Ray, keys []K, nearest float64) float64 {
	for _, k := range keys {
		if b.seen.GetSetOn(0, int(k)) {
			continue
		}
		point, t, ok := intersect.RayPoint(ray, b.shapes[k])
		if !ok {
			continue
		}
		b.hits = append(b.hits, Hit[K]{Index: k, Point: point, Distance: t})
		nearest = math.Min(nearest, t)
	}
	return nearest
}

// overlapKeys appends keys overlapping shape and not reported yet
func (b *base[K]) overlapKeys(shape actor.Shape, keys []K) {
	for _, k := range keys {
		if b.seen.GetSetOn(0, int(k)) {
			continue
		}
		if intersect.Intersect(shape, b.shapes[k]) {
			b.found = append(b.found, k)
		}
	}
}

func (b *base[K]) sortHits() {
	hits := b.hits
	// insertion sort, hit lists are short
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Distance < hits[j-1].Distance; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}

// rayEntry returns where the ray enters the index bounds
func (b *base[K]) rayEntry(ray actor.Ray) (float64, bool) {
	if len(b.shapes) == 0 {
		return 0, false
	}
	return intersect.RayAABB(ray, b.bounds)
}
