package field

import (
	"math"
	"sort"
)

// Connection is an unordered particle pair closer than the connection
// distance. I < J always holds.
type Connection struct {
	I, J int
	Dist float64
}

// Strength is 1 at distance 0 and falls linearly to 0 at maxDist.
func (c Connection) Strength(maxDist float64) float64 {
	if maxDist <= 0 {
		return 0
	}
	return math.Max(0, 1-c.Dist/maxDist)
}

// FindConnections returns every pair closer than maxDist, ordered by (I, J).
// The dst slice is reused.
func FindConnections(ps []Particle, maxDist float64, index SpatialIndex, dst []Connection) []Connection {
	dst = dst[:0]
	if maxDist <= 0 || len(ps) < 2 {
		return dst
	}
	if index == IndexQuadTree {
		return quadTreeConnections(ps, maxDist, dst)
	}
	return bruteConnections(ps, maxDist, dst)
}

func bruteConnections(ps []Particle, maxDist float64, dst []Connection) []Connection {
	for i := 0; i < len(ps); i++ {
		for j := i + 1; j < len(ps); j++ {
			d := ps[i].Pos.Dist(ps[j].Pos)
			if d < maxDist {
				dst = append(dst, Connection{I: i, J: j, Dist: d})
			}
		}
	}
	return dst
}

func quadTreeConnections(ps []Particle, maxDist float64, dst []Connection) []Connection {
	tree := NewQuadTree(boundsOf(ps))
	for i := range ps {
		tree.Insert(i, ps[i].Pos)
	}

	var hits []int
	for i := range ps {
		hits = tree.Query(ps[i].Pos, maxDist, hits[:0])
		for _, j := range hits {
			if j <= i {
				continue
			}
			dst = append(dst, Connection{I: i, J: j, Dist: ps[i].Pos.Dist(ps[j].Pos)})
		}
	}
	sort.Slice(dst, func(a, b int) bool {
		if dst[a].I != dst[b].I {
			return dst[a].I < dst[b].I
		}
		return dst[a].J < dst[b].J
	})
	return dst
}

// boundsOf returns the bounding box of every particle position.
func boundsOf(ps []Particle) Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range ps {
		p := ps[i].Pos
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}
