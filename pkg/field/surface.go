package field

import (
	"image/color"
	"sort"
	"sync"
)

// Surface is a drawable area owned by the host (a window, an offscreen
// image, a terminal). Sizes are in surface pixels.
type Surface interface {
	// Size returns the current pixel dimensions.
	Size() (width, height int)
	// Context2D returns the drawing context, or an error when none can be
	// obtained.
	Context2D() (Canvas, error)
	// OnResize registers fn to be called with the new dimensions after the
	// surface changes size. The returned func unregisters it.
	OnResize(fn func(width, height int)) (remove func())
}

// PointerSource is implemented by surfaces that can report pointer motion
// in surface-local coordinates.
type PointerSource interface {
	OnPointerMove(fn func(x, y float64)) (remove func())
	OnPointerLeave(fn func()) (remove func())
}

// Canvas receives the draw calls of one frame.
type Canvas interface {
	Clear(bg color.NRGBA)
	StrokeLine(x1, y1, x2, y2, width float64, c color.NRGBA)
	FillCircle(x, y, r float64, c color.NRGBA)
}

// Flusher is implemented by canvases that need an explicit present step
// at the end of each frame (terminal screens).
type Flusher interface {
	Flush()
}

// Releaser is implemented by canvases holding resources that must be freed
// when the animator detaches.
type Releaser interface {
	Release()
}

// Listeners is a small registry surfaces use to implement OnResize and the
// PointerSource methods. Callbacks are invoked outside the lock.
type Listeners[F any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]F
}

// Add registers fn and returns the func that removes it again.
func (l *Listeners[F]) Add(fn F) (remove func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]F)
	}
	l.nextID++
	id := l.nextID
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		delete(l.fns, id)
		l.mu.Unlock()
	}
}

// Snapshot returns the registered callbacks in registration order.
func (l *Listeners[F]) Snapshot() []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]int, 0, len(l.fns))
	for id := range l.fns {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]F, 0, len(ids))
	for _, id := range ids {
		out = append(out, l.fns[id])
	}
	return out
}

// Len returns the number of registered callbacks.
func (l *Listeners[F]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
