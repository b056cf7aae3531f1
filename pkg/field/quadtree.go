package field

// Rect is an axis-aligned rectangle with inclusive edges.
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) contains(p Vec2) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// intersectsCircle reports whether the circle (c, radius) overlaps r.
func (r Rect) intersectsCircle(c Vec2, radius float64) bool {
	nx := clampf(c.X, r.X, r.X+r.W)
	ny := clampf(c.Y, r.Y, r.Y+r.H)
	dx, dy := c.X-nx, c.Y-ny
	return dx*dx+dy*dy <= radius*radius
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const (
	quadCapacity = 8
	quadMaxDepth = 10
)

type quadItem struct {
	index int
	pos   Vec2
}

// QuadTree is a point quadtree over particle indices.
// Nodes split into four children once they exceed their capacity; at the
// maximum depth they keep growing instead, which bounds recursion when many
// points coincide.
type QuadTree struct {
	bounds   Rect
	depth    int
	items    []quadItem
	children *[4]QuadTree
}

// NewQuadTree creates an empty tree covering bounds.
func NewQuadTree(bounds Rect) *QuadTree {
	return &QuadTree{bounds: bounds}
}

// Insert adds the point for index i. Points outside the root bounds are
// rejected and false is returned.
func (t *QuadTree) Insert(i int, p Vec2) bool {
	if !t.bounds.contains(p) {
		return false
	}
	if t.children == nil {
		if len(t.items) < quadCapacity || t.depth >= quadMaxDepth {
			t.items = append(t.items, quadItem{index: i, pos: p})
			return true
		}
		t.subdivide()
	}
	for k := range t.children {
		if t.children[k].Insert(i, p) {
			return true
		}
	}
	// Only reachable through floating point edge cases; keep the point here.
	t.items = append(t.items, quadItem{index: i, pos: p})
	return true
}

func (t *QuadTree) subdivide() {
	hw, hh := t.bounds.W/2, t.bounds.H/2
	x, y := t.bounds.X, t.bounds.Y
	d := t.depth + 1
	t.children = &[4]QuadTree{
		{bounds: Rect{x, y, hw, hh}, depth: d},
		{bounds: Rect{x + hw, y, hw, hh}, depth: d},
		{bounds: Rect{x, y + hh, hw, hh}, depth: d},
		{bounds: Rect{x + hw, y + hh, hw, hh}, depth: d},
	}

	old := t.items
	t.items = nil
	for _, it := range old {
		placed := false
		for k := range t.children {
			if t.children[k].Insert(it.index, it.pos) {
				placed = true
				break
			}
		}
		if !placed {
			t.items = append(t.items, it)
		}
	}
}

// Query appends to dst the indices of every point strictly closer than
// radius to c, and returns the extended slice.
func (t *QuadTree) Query(c Vec2, radius float64, dst []int) []int {
	if !t.bounds.intersectsCircle(c, radius) {
		return dst
	}
	for _, it := range t.items {
		if c.Dist(it.pos) < radius {
			dst = append(dst, it.index)
		}
	}
	if t.children != nil {
		for k := range t.children {
			dst = t.children[k].Query(c, radius, dst)
		}
	}
	return dst
}

// Len returns the number of points stored in the tree.
func (t *QuadTree) Len() int {
	n := len(t.items)
	if t.children != nil {
		for k := range t.children {
			n += t.children[k].Len()
		}
	}
	return n
}

// Depth returns the depth of the deepest node below t.
func (t *QuadTree) Depth() int {
	if t.children == nil {
		return t.depth
	}
	max := t.depth
	for k := range t.children {
		if d := t.children[k].Depth(); d > max {
			max = d
		}
	}
	return max
}
