package field

import (
	"fmt"
	"image/color"
	"math"
)

// Boundary selects what happens when a particle reaches a surface edge.
type Boundary int

const (
	// BoundaryBounce reflects the velocity component and clamps the
	// position back onto the edge.
	BoundaryBounce Boundary = iota
	// BoundaryWrap moves the particle to the opposite edge.
	BoundaryWrap
)

func (b Boundary) String() string {
	switch b {
	case BoundaryBounce:
		return "bounce"
	case BoundaryWrap:
		return "wrap"
	default:
		return fmt.Sprintf("Boundary(%d)", int(b))
	}
}

// ParseBoundary converts "bounce" or "wrap" to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "", "bounce":
		return BoundaryBounce, nil
	case "wrap":
		return BoundaryWrap, nil
	}
	return 0, fmt.Errorf("unknown boundary policy %q (want bounce or wrap)", s)
}

// SpatialIndex selects how connection pairs are found.
type SpatialIndex int

const (
	// IndexBrute checks every unordered pair, O(n²).
	IndexBrute SpatialIndex = iota
	// IndexQuadTree rebuilds a quadtree each frame and runs a range query
	// per particle. Worth it well above a few hundred particles.
	IndexQuadTree
)

func (s SpatialIndex) String() string {
	switch s {
	case IndexBrute:
		return "brute"
	case IndexQuadTree:
		return "quadtree"
	default:
		return fmt.Sprintf("SpatialIndex(%d)", int(s))
	}
}

// ParseSpatialIndex converts "brute" or "quadtree" to a SpatialIndex.
func ParseSpatialIndex(s string) (SpatialIndex, error) {
	switch s {
	case "", "brute":
		return IndexBrute, nil
	case "quadtree":
		return IndexQuadTree, nil
	}
	return 0, fmt.Errorf("unknown spatial index %q (want brute or quadtree)", s)
}

// Config holds the animator parameters. Zero numeric fields are replaced
// by the values from DefaultConfig, so callers only set what they change.
// Zero therefore cannot express "none" for MaxSpeed or Restitution; use a
// small positive value (e.g. 1e-9) for a near-static field or a nearly
// inelastic bounce.
// Colours are non-premultiplied; their alpha is the opacity at full
// strength.
type Config struct {
	ParticleCount int

	MaxSpeed    float64 // initial speed bound, px/frame; 0 means the default (1)
	MaxVelocity float64 // clamp applied after forces; 0 means 2×MaxSpeed

	ConnectionDistance float64
	LineWidth          float64
	LineColor          color.NRGBA

	DotColor        color.NRGBA
	CategoryColors  [categoryCount]color.NRGBA
	ColorByCategory bool
	MinRadius       float64
	MaxRadius       float64

	Boundary    Boundary
	Restitution float64 // bounce speed factor in (0,1]; 0 means the default (1)
	Friction    float64 // per-frame damping in [0,1)
	Gravity     float64 // px/frame² added to Vel.Y

	PointerInteraction bool
	AttractionRadius   float64
	AttractionForce    float64
	HoverScale         float64

	SpatialIndex SpatialIndex
	TimeScaled   bool

	Background color.NRGBA
}

// DefaultConfig mirrors the hero network animation: 30 nodes, 150 px links,
// indigo lines.
func DefaultConfig() Config {
	return Config{
		ParticleCount:      30,
		MaxSpeed:           1,
		ConnectionDistance: 150,
		LineWidth:          1,
		LineColor:          color.NRGBA{R: 99, G: 102, B: 241, A: 255},
		DotColor:           color.NRGBA{R: 96, G: 165, B: 250, A: 255},
		CategoryColors: [categoryCount]color.NRGBA{
			{R: 96, G: 165, B: 250, A: 255},  // iot: blue
			{R: 52, G: 211, B: 153, A: 255},  // network: green
			{R: 167, G: 139, B: 250, A: 255}, // ict: purple
		},
		MinRadius:        2,
		MaxRadius:        5,
		Boundary:         BoundaryBounce,
		Restitution:      1,
		AttractionRadius: 120,
		AttractionForce:  0.05,
		HoverScale:       1.5,
	}
}

// Validate checks numeric bounds. Negative values, non-finite values and a
// non-positive particle count are rejected with a *ConfigError.
func (c Config) Validate() error {
	if c.ParticleCount <= 0 {
		return &ConfigError{Field: "ParticleCount", Reason: fmt.Sprintf("must be > 0, got %d", c.ParticleCount)}
	}

	bounds := []struct {
		name  string
		value float64
	}{
		{"MaxSpeed", c.MaxSpeed},
		{"MaxVelocity", c.MaxVelocity},
		{"ConnectionDistance", c.ConnectionDistance},
		{"LineWidth", c.LineWidth},
		{"MinRadius", c.MinRadius},
		{"MaxRadius", c.MaxRadius},
		{"Restitution", c.Restitution},
		{"Friction", c.Friction},
		{"AttractionRadius", c.AttractionRadius},
		{"AttractionForce", c.AttractionForce},
		{"HoverScale", c.HoverScale},
	}
	for _, b := range bounds {
		if math.IsNaN(b.value) || math.IsInf(b.value, 0) {
			return &ConfigError{Field: b.name, Reason: "must be finite"}
		}
		if b.value < 0 {
			return &ConfigError{Field: b.name, Reason: fmt.Sprintf("must be >= 0, got %g", b.value)}
		}
	}
	if math.IsNaN(c.Gravity) || math.IsInf(c.Gravity, 0) {
		return &ConfigError{Field: "Gravity", Reason: "must be finite"}
	}

	if c.MinRadius > c.MaxRadius && c.MaxRadius != 0 {
		return &ConfigError{Field: "MinRadius", Reason: fmt.Sprintf("%g exceeds MaxRadius %g", c.MinRadius, c.MaxRadius)}
	}
	if c.Friction >= 1 {
		return &ConfigError{Field: "Friction", Reason: fmt.Sprintf("must be < 1, got %g", c.Friction)}
	}
	if c.Restitution > 1 {
		return &ConfigError{Field: "Restitution", Reason: fmt.Sprintf("must be <= 1, got %g", c.Restitution)}
	}
	if c.Boundary != BoundaryBounce && c.Boundary != BoundaryWrap {
		return &ConfigError{Field: "Boundary", Reason: c.Boundary.String()}
	}
	if c.SpatialIndex != IndexBrute && c.SpatialIndex != IndexQuadTree {
		return &ConfigError{Field: "SpatialIndex", Reason: c.SpatialIndex.String()}
	}
	return nil
}

// withDefaults fills zero-valued fields from DefaultConfig. It runs after
// Validate so negative values are never silently replaced.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxSpeed == 0 {
		c.MaxSpeed = d.MaxSpeed
	}
	if c.MaxVelocity == 0 {
		c.MaxVelocity = 2 * c.MaxSpeed
	}
	if c.ConnectionDistance == 0 {
		c.ConnectionDistance = d.ConnectionDistance
	}
	if c.LineWidth == 0 {
		c.LineWidth = d.LineWidth
	}
	if c.LineColor == (color.NRGBA{}) {
		c.LineColor = d.LineColor
	}
	if c.DotColor == (color.NRGBA{}) {
		c.DotColor = d.DotColor
	}
	for i := range c.CategoryColors {
		if c.CategoryColors[i] == (color.NRGBA{}) {
			c.CategoryColors[i] = d.CategoryColors[i]
		}
	}
	if c.MaxRadius == 0 {
		c.MaxRadius = d.MaxRadius
		if c.MinRadius == 0 {
			c.MinRadius = d.MinRadius
		}
	}
	if c.MinRadius > c.MaxRadius {
		c.MinRadius = c.MaxRadius
	}
	if c.Restitution == 0 {
		c.Restitution = d.Restitution
	}
	if c.AttractionRadius == 0 {
		c.AttractionRadius = d.AttractionRadius
	}
	if c.AttractionForce == 0 {
		c.AttractionForce = d.AttractionForce
	}
	if c.HoverScale == 0 {
		c.HoverScale = d.HoverScale
	}
	return c
}
