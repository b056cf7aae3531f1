package field

import (
	"errors"
	"image/color"
	"math/rand"
	"testing"
	"time"
)

type lineOp struct {
	x1, y1, x2, y2, width float64
	col                   color.NRGBA
}

type circleOp struct {
	x, y, r float64
	col     color.NRGBA
}

// recordCanvas keeps the draw calls of the last frame.
type recordCanvas struct {
	clears   int
	lines    []lineOp
	circles  []circleOp
	flushes  int
	released bool
	panicOn  int // panic on the n-th Clear (1-based), 0 = never
}

func (c *recordCanvas) Clear(color.NRGBA) {
	c.clears++
	c.lines = c.lines[:0]
	c.circles = c.circles[:0]
	if c.panicOn > 0 && c.clears == c.panicOn {
		panic("surface lost")
	}
}

func (c *recordCanvas) StrokeLine(x1, y1, x2, y2, width float64, col color.NRGBA) {
	c.lines = append(c.lines, lineOp{x1, y1, x2, y2, width, col})
}

func (c *recordCanvas) FillCircle(x, y, r float64, col color.NRGBA) {
	c.circles = append(c.circles, circleOp{x, y, r, col})
}

func (c *recordCanvas) Flush()   { c.flushes++ }
func (c *recordCanvas) Release() { c.released = true }

// fakeSurface is an in-memory Surface with pointer support.
type fakeSurface struct {
	w, h   int
	canvas *recordCanvas
	ctxErr error
	resize Listeners[func(int, int)]
	moves  Listeners[func(float64, float64)]
	leaves Listeners[func()]
}

func newFakeSurface(w, h int) *fakeSurface {
	return &fakeSurface{w: w, h: h, canvas: &recordCanvas{}}
}

func (s *fakeSurface) Size() (int, int) { return s.w, s.h }

func (s *fakeSurface) Context2D() (Canvas, error) {
	if s.ctxErr != nil {
		return nil, s.ctxErr
	}
	return s.canvas, nil
}

func (s *fakeSurface) OnResize(fn func(int, int)) func() { return s.resize.Add(fn) }

func (s *fakeSurface) OnPointerMove(fn func(float64, float64)) func() { return s.moves.Add(fn) }

func (s *fakeSurface) OnPointerLeave(fn func()) func() { return s.leaves.Add(fn) }

func (s *fakeSurface) setSize(w, h int) {
	s.w, s.h = w, h
	for _, fn := range s.resize.Snapshot() {
		fn(w, h)
	}
}

func (s *fakeSurface) movePointer(x, y float64) {
	for _, fn := range s.moves.Snapshot() {
		fn(x, y)
	}
}

func (s *fakeSurface) leave() {
	for _, fn := range s.leaves.Snapshot() {
		fn()
	}
}

var errNoContext = errors.New("context lost")

// newTestAnimator builds an animator on a manual scheduler with a fixed seed.
func newTestAnimator(t *testing.T, cfg Config) (*Animator, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	a, err := New(cfg, WithScheduler(sched), WithRand(rand.New(rand.NewSource(42))))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return a, sched
}

// advance runs n frames 1/60 s apart.
func advance(sched *ManualScheduler, n int) {
	now := time.Unix(0, 0)
	for i := 0; i < n; i++ {
		now = now.Add(DefaultFrameInterval)
		sched.Advance(now)
	}
}
