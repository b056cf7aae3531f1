package field

// Category is the visual class of a particle (粒子类别).
// It only selects a colour when Config.ColorByCategory is set.
type Category int

const (
	CategoryIoT Category = iota
	CategoryNetwork
	CategoryICT

	categoryCount = 3
)

// String returns the lowercase category name.
func (c Category) String() string {
	switch c {
	case CategoryIoT:
		return "iot"
	case CategoryNetwork:
		return "network"
	case CategoryICT:
		return "ict"
	default:
		return "unknown"
	}
}

// categoryFor assigns categories round-robin over particle index.
func categoryFor(i int) Category {
	return Category(i % categoryCount)
}

// Particle is a single simulated point.
//
// Radius is the base size; the hover scale applied near the pointer is
// computed per frame and never written back here.
type Particle struct {
	Pos      Vec2    // Position (位置, 像素)
	Vel      Vec2    // Velocity (速度, 像素/帧)
	Radius   float64 // Base radius (基础半径)
	Category Category
}
