package spatial

import (
	"math"
	"math/bits"

	"github.com/akmonengine/kinema/actor"
	"github.com/akmonengine/kinema/intersect"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/exp/constraints"
)

// MaxDepth bounds the subdivision of a Tree, matching MaxScale
const MaxDepth = 10

const noChild = -1

// TreeNode is a node of the octree. Only leaves hold keys.
type TreeNode[K constraints.Unsigned] struct {
	boundary actor.AABB
	center   mgl64.Vec3
	keys     []K
	children [8]int32
	depth    int
	leaf     bool

	// children in the order the last ray crossed them
	rayOrder [8]int8
	rayDist  [8]float64
	rayCount int
}

func (n *TreeNode[K]) Boundary() actor.AABB { return n.boundary }

func (n *TreeNode[K]) Keys() []K { return n.keys }

func (n *TreeNode[K]) Depth() int { return n.depth }

func (n *TreeNode[K]) IsLeaf() bool { return n.leaf }

// Tree is a loose octree (quadtree in 2D): a shape straddling the center of a
// node is stored in every child it overlaps. Children are only created for
// non-empty octants; nodes live in a pool and reference their children by
// index.
type Tree[K constraints.Unsigned] struct {
	base[K]
	nodes    []TreeNode[K]
	maxDepth int
	depth    int
	root     int32
}

// NewTree creates an empty tree with an automatic depth
func NewTree[K constraints.Unsigned](opts Options) *Tree[K] {
	return &Tree[K]{
		base:     base[K]{opts: opts},
		maxDepth: -1,
		root:     noChild,
	}
}

// SetDepth fixes the subdivision depth for the next Insert, d < 0 picks it
// from the shape count and sizes. The depth is never finer than the level at
// which a cell gets smaller than the largest shape.
func (t *Tree[K]) SetDepth(d int) {
	t.maxDepth = min(d, MaxDepth)
}

// Depth returns the depth used by the last Insert
func (t *Tree[K]) Depth() int {
	return t.depth
}

// Insert - rebuilds the tree, shapes sorted by cell
func (t *Tree[K]) Insert(shapes []actor.Shape) error {
	return t.build(shapes, true)
}

// InsertNoSort - rebuilds the tree keeping the caller's order
func (t *Tree[K]) InsertNoSort(shapes []actor.Shape) error {
	return t.build(shapes, false)
}

func (t *Tree[K]) build(shapes []actor.Shape, sorted bool) error {
	if err := checkCapacity[K](len(shapes)); err != nil {
		return err
	}

	worldExtent, shapeExtent := t.measure(shapes)
	if t.maxDepth < 0 {
		t.depth = bits.TrailingZeros(uint(t.chooseScale(len(shapes), worldExtent, shapeExtent)))
	} else {
		t.depth = min(t.maxDepth, ratioDepth(worldExtent, shapeExtent))
	}
	t.setScale(1 << t.depth)
	t.order(shapes, sorted)

	t.nodes = t.nodes[:0]
	t.root = noChild
	if len(t.shapes) == 0 {
		return nil
	}

	t.root = t.newNode(t.bounds, 0)
	root := &t.nodes[t.root]
	for i := range t.shapes {
		root.keys = append(root.keys, K(i))
	}
	t.split(t.root)

	return nil
}

// ratioDepth returns the first depth whose cells are no larger than shapeExtent.
// Deeper nodes would only copy the same overlapping shapes into every child.
func ratioDepth(worldExtent, shapeExtent float64) int {
	if shapeExtent <= 0 {
		return MaxDepth
	}
	ratio := worldExtent / shapeExtent
	d := 0
	for d < MaxDepth && float64(int(1)<<d) < ratio {
		d++
	}
	return d
}

// newNode takes a node from the pool, keeping the keys buffer of a previous build
func (t *Tree[K]) newNode(boundary actor.AABB, depth int) int32 {
	idx := len(t.nodes)
	if idx < cap(t.nodes) {
		t.nodes = t.nodes[:idx+1]
	} else {
		t.nodes = append(t.nodes, TreeNode[K]{})
	}

	n := &t.nodes[idx]
	n.boundary = boundary
	n.center = boundary.Center()
	n.keys = n.keys[:0]
	n.depth = depth
	n.leaf = true
	n.rayCount = 0
	for i := range n.children {
		n.children[i] = noChild
	}
	return int32(idx)
}

// axes returns the number of split axes
func (t *Tree[K]) axes() int {
	if t.opts.planar() {
		return 2
	}
	return 3
}

func (t *Tree[K]) childCount() int {
	return 1 << t.axes()
}

// childBounds returns the boundary of octant o: bit 0 is +X, bit 1 +Y, bit 2 +Z
func (t *Tree[K]) childBounds(parent actor.AABB, center mgl64.Vec3, o int) actor.AABB {
	box := parent
	for i := 0; i < t.axes(); i++ {
		if o&(1<<i) != 0 {
			box.Min[i] = center[i]
		} else {
			box.Max[i] = center[i]
		}
	}
	return box
}

// octants returns the mask of the octants a shape overlaps
func (t *Tree[K]) octants(s actor.Shape, center mgl64.Vec3) uint8 {
	lo, hi := s.Min(), s.Max()
	mask := uint8(0)
	for o := 0; o < t.childCount(); o++ {
		in := true
		for i := 0; i < t.axes() && in; i++ {
			if o&(1<<i) != 0 {
				in = hi[i] >= center[i]
			} else {
				in = lo[i] <= center[i]
			}
		}
		if in {
			mask |= 1 << o
		}
	}
	return mask
}

func (t *Tree[K]) split(idx int32) {
	n := &t.nodes[idx]
	if n.depth >= t.depth || len(n.keys) <= 1 {
		return
	}

	keys := n.keys
	center := n.center
	boundary := n.boundary
	depth := n.depth
	for _, k := range keys {
		mask := t.octants(t.shapes[k], center)
		for o := 0; o < t.childCount(); o++ {
			if mask&(1<<o) == 0 {
				continue
			}
			child := t.nodes[idx].children[o]
			if child == noChild {
				// newNode may grow the pool
				child = t.newNode(t.childBounds(boundary, center, o), depth+1)
				t.nodes[idx].children[o] = child
			}
			c := &t.nodes[child]
			c.keys = append(c.keys, k)
		}
	}

	n = &t.nodes[idx]
	n.leaf = false
	n.keys = n.keys[:0]

	for o := 0; o < t.childCount(); o++ {
		if child := t.nodes[idx].children[o]; child != noChild {
			t.split(child)
		}
	}
}

// Nodes returns the node pool, the root is at index 0
func (t *Tree[K]) Nodes() []TreeNode[K] {
	return t.nodes
}

// Walk visits the nodes depth first, fn returning false skips the children
func (t *Tree[K]) Walk(fn func(node *TreeNode[K]) bool) {
	if t.root == noChild {
		return
	}
	t.walk(t.root, fn)
}

func (t *Tree[K]) walk(idx int32, fn func(node *TreeNode[K]) bool) {
	n := &t.nodes[idx]
	if !fn(n) || n.leaf {
		return
	}
	for _, child := range n.children {
		if child != noChild {
			t.walk(child, fn)
		}
	}
}

// Collisions - every overlapping pair, each reported once
func (t *Tree[K]) Collisions() []Pair[K] {
	t.flags.Clear()
	t.pairs = t.pairs[:0]

	for i := range t.nodes {
		if t.nodes[i].leaf {
			t.testKeys(t.nodes[i].keys)
		}
	}
	return t.pairs
}

// CollisionsAt - overlapping pairs within the leaf containing point
func (t *Tree[K]) CollisionsAt(point mgl64.Vec3) []Pair[K] {
	t.flags.Clear()
	t.pairs = t.pairs[:0]
	if t.root == noChild {
		return t.pairs
	}

	point = t.bounds.Clamp(point)
	idx := t.root
	for !t.nodes[idx].leaf {
		n := &t.nodes[idx]
		o := 0
		for i := 0; i < t.axes(); i++ {
			if point[i] >= n.center[i] {
				o |= 1 << i
			}
		}
		idx = n.children[o]
		if idx == noChild {
			return t.pairs
		}
	}

	t.testKeys(t.nodes[idx].keys)
	return t.pairs
}

// RayCast visits the children front to back, skipping those entered beyond
// the nearest hit.
func (t *Tree[K]) RayCast(ray actor.Ray) []Hit[K] {
	t.hits = t.hits[:0]
	t.seen.Clear()

	if _, ok := t.rayEntry(ray); !ok {
		return t.hits
	}

	t.castNode(ray, t.root, math.Inf(1))
	t.sortHits()
	return t.hits
}

func (t *Tree[K]) castNode(ray actor.Ray, idx int32, nearest float64) float64 {
	if t.nodes[idx].leaf {
		return t.castKeys(ray, t.nodes[idx].keys, nearest)
	}

	t.subdivideRay(ray, idx)
	for i := 0; i < t.nodes[idx].rayCount; i++ {
		n := &t.nodes[idx]
		if n.rayDist[i] > nearest {
			break
		}
		nearest = t.castNode(ray, n.children[n.rayOrder[i]], nearest)
	}
	return nearest
}

// subdivideRay stores in the node the children crossed by the ray, sorted by
// entry distance
func (t *Tree[K]) subdivideRay(ray actor.Ray, idx int32) {
	n := &t.nodes[idx]
	n.rayCount = 0
	for o := 0; o < t.childCount(); o++ {
		child := n.children[o]
		if child == noChild {
			continue
		}
		dist, ok := intersect.RayAABB(ray, t.nodes[child].boundary)
		if !ok {
			continue
		}

		j := n.rayCount
		for ; j > 0 && n.rayDist[j-1] > dist; j-- {
			n.rayDist[j] = n.rayDist[j-1]
			n.rayOrder[j] = n.rayOrder[j-1]
		}
		n.rayDist[j] = dist
		n.rayOrder[j] = int8(o)
		n.rayCount++
	}
}

// Overlap - keys of the shapes overlapping shape, each reported once
func (t *Tree[K]) Overlap(shape actor.Shape) []K {
	t.found = t.found[:0]
	t.seen.Clear()
	if t.root == noChild {
		return t.found
	}

	query := actor.BoundsOf(shape)
	t.overlapNode(shape, query, t.root)
	return t.found
}

func (t *Tree[K]) overlapNode(shape actor.Shape, query actor.AABB, idx int32) {
	n := &t.nodes[idx]
	if !n.boundary.Overlaps(query) {
		return
	}
	if n.leaf {
		t.overlapKeys(shape, n.keys)
		return
	}
	for _, child := range n.children {
		if child != noChild {
			t.overlapNode(shape, query, child)
		}
	}
}
