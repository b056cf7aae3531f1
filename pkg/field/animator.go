// Package field implements the animated particle network drawn behind the
// landing page hero: a fixed set of drifting points, joined by lines when
// they come close, optionally pulled toward the pointer.
//
// An Animator is created from a Config, attached to a Surface and then
// driven by a Scheduler, one frame per granted callback. Each frame clears
// the surface, integrates and constrains every particle, applies pointer
// attraction, draws the connection lines and finally the dots.
//
// Lifecycle:
//
//	Unattached --Attach--> Running --Detach--> Unattached
//
// Each Attach starts a fresh frame chain; callbacks left over from an
// earlier attachment are ignored.
package field

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State is the animator lifecycle state.
type State int

const (
	StateUnattached State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "unattached"
}

// Stats are counters exposed for hosts, tools and tests.
type Stats struct {
	Frames        uint64 // frames completed
	SkippedFrames uint64 // frames aborted by a recovered panic
	Connections   int    // lines drawn in the last frame
	Hovered       int    // particles inside the attraction radius last frame
}

// Option configures an Animator.
type Option func(*Animator)

// WithScheduler makes the animator request frames from s. Without it,
// Attach starts a private TickerScheduler that Detach stops again.
func WithScheduler(s Scheduler) Option {
	return func(a *Animator) { a.scheduler = s }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Animator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRand sets the random source used to seed particles.
func WithRand(r *rand.Rand) Option {
	return func(a *Animator) {
		if r != nil {
			a.rng = r
		}
	}
}

// Animator owns one particle field and its frame loop.
type Animator struct {
	id        string
	cfg       Config
	log       *zap.Logger
	rng       *rand.Rand
	scheduler Scheduler

	mu       sync.Mutex
	state    State
	gen      uint64
	surface  Surface
	canvas   Canvas
	active   Scheduler
	owned    *TickerScheduler
	frameID  FrameID
	removers []func()

	width, height float64
	particles     []Particle
	drawRadii     []float64
	conns         []Connection

	pointer    Vec2
	hasPointer bool

	lastFrame time.Time
	stats     Stats
}

// New validates cfg and returns an unattached animator.
// Invalid configs yield an error matching ErrInvalidConfig.
func New(cfg Config, opts ...Option) (*Animator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Animator{
		id:  uuid.NewString(),
		cfg: cfg.withDefaults(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	a.log = a.log.With(zap.String("animator", a.id))
	return a, nil
}

// ID returns the instance identifier used in log lines.
func (a *Animator) ID() string { return a.id }

// Config returns the effective configuration (defaults applied).
func (a *Animator) Config() Config { return a.cfg }

// State returns the current lifecycle state.
func (a *Animator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Attach binds the animator to s, seeds the particles over the surface and
// requests the first frame.
//
// It returns ErrAlreadyAttached while running and an error wrapping
// ErrSurfaceUnavailable when s has no drawing context; in both cases no
// frame is scheduled.
func (a *Animator) Attach(s Surface) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateRunning {
		return ErrAlreadyAttached
	}
	if s == nil {
		return fmt.Errorf("%w: nil surface", ErrSurfaceUnavailable)
	}
	canvas, err := s.Context2D()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSurfaceUnavailable, err)
	}
	if canvas == nil {
		return fmt.Errorf("%w: nil drawing context", ErrSurfaceUnavailable)
	}

	w, h := s.Size()
	a.surface = s
	a.canvas = canvas
	a.width, a.height = float64(max(w, 0)), float64(max(h, 0))
	a.seedParticles()
	a.hasPointer = false
	a.lastFrame = time.Time{}
	a.stats = Stats{}

	a.gen++
	gen := a.gen
	a.removers = append(a.removers[:0], s.OnResize(func(w, h int) { a.resize(gen, w, h) }))
	if ps, ok := s.(PointerSource); ok && a.cfg.PointerInteraction {
		a.removers = append(a.removers,
			ps.OnPointerMove(a.UpdatePointer),
			ps.OnPointerLeave(a.ClearPointer),
		)
	}

	a.active = a.scheduler
	if a.active == nil {
		a.owned = NewTickerScheduler(DefaultFrameInterval)
		a.active = a.owned
	}
	a.state = StateRunning
	a.requestFrame(gen)

	a.log.Info("[Field] attached",
		zap.Int("particles", len(a.particles)),
		zap.Float64("width", a.width),
		zap.Float64("height", a.height),
		zap.Stringer("boundary", a.cfg.Boundary),
		zap.Bool("pointer", a.cfg.PointerInteraction))
	return nil
}

// Detach cancels the pending frame, unregisters the listeners added by
// Attach, releases the drawing context and discards the particles. It is a
// no-op when unattached. Detach must not be called from a frame callback.
func (a *Animator) Detach() {
	a.mu.Lock()
	if a.state != StateRunning {
		a.mu.Unlock()
		return
	}

	a.active.CancelFrame(a.frameID)
	for _, remove := range a.removers {
		if remove != nil {
			remove()
		}
	}
	a.removers = a.removers[:0]
	if r, ok := a.canvas.(Releaser); ok {
		r.Release()
	}

	a.state = StateUnattached
	a.gen++
	a.surface = nil
	a.canvas = nil
	a.active = nil
	a.particles = nil
	a.drawRadii = nil
	a.conns = nil
	a.hasPointer = false
	frames := a.stats.Frames
	owned := a.owned
	a.owned = nil
	a.mu.Unlock()

	// 在释放锁之后关闭，正在等待锁的帧回调才能退出
	if owned != nil {
		owned.Close()
	}
	a.log.Info("[Field] detached", zap.Uint64("frames", frames))
}

// UpdatePointer records the pointer position in surface coordinates for
// the next frame. It does not draw and does nothing while unattached.
func (a *Animator) UpdatePointer(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRunning {
		return
	}
	a.pointer = Vec2{X: x, Y: y}
	a.hasPointer = true
}

// ClearPointer forgets the pointer, e.g. when it leaves the surface.
func (a *Animator) ClearPointer() {
	a.mu.Lock()
	a.hasPointer = false
	a.mu.Unlock()
}

// Particles returns a copy of the current particle set.
func (a *Animator) Particles() []Particle {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Particle, len(a.particles))
	copy(out, a.particles)
	return out
}

// Place overwrites position and velocity of particle i.
func (a *Animator) Place(i int, pos, vel Vec2) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRunning {
		return ErrNotAttached
	}
	if i < 0 || i >= len(a.particles) {
		return fmt.Errorf("particle index %d out of range [0,%d)", i, len(a.particles))
	}
	if !pos.IsFinite() || !vel.IsFinite() {
		return fmt.Errorf("particle %d: non-finite position or velocity", i)
	}
	a.particles[i].Pos = pos
	a.particles[i].Vel = vel
	return nil
}

// Bounds returns the surface extent the animator currently constrains to.
func (a *Animator) Bounds() (width, height float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width, a.height
}

// Stats returns a snapshot of the frame counters.
func (a *Animator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *Animator) seedParticles() {
	cfg := &a.cfg
	a.particles = make([]Particle, cfg.ParticleCount)
	a.drawRadii = make([]float64, cfg.ParticleCount)
	a.conns = a.conns[:0]
	for i := range a.particles {
		vel := Vec2{
			X: (a.rng.Float64() - 0.5) * 2 * cfg.MaxSpeed,
			Y: (a.rng.Float64() - 0.5) * 2 * cfg.MaxSpeed,
		}
		a.particles[i] = Particle{
			Pos:      Vec2{X: a.rng.Float64() * a.width, Y: a.rng.Float64() * a.height},
			Vel:      clampVelocity(vel, cfg.MaxSpeed),
			Radius:   cfg.MinRadius + a.rng.Float64()*(cfg.MaxRadius-cfg.MinRadius),
			Category: categoryFor(i),
		}
		a.drawRadii[i] = a.particles[i].Radius
	}
}

// resize only moves the bounds. Particles are not rescaled; any left
// outside are brought back by the boundary policy on the next frame.
func (a *Animator) resize(gen uint64, w, h int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRunning || a.gen != gen {
		return
	}
	a.width, a.height = float64(max(w, 0)), float64(max(h, 0))
	a.log.Debug("[Field] surface resized", zap.Int("width", w), zap.Int("height", h))
}

// requestFrame must be called with a.mu held.
func (a *Animator) requestFrame(gen uint64) {
	a.frameID = a.active.RequestFrame(func(now time.Time) { a.frame(gen, now) })
}

func (a *Animator) frame(gen uint64, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != StateRunning || a.gen != gen {
		return
	}

	// 无论本帧是否出错，都继续请求下一帧
	defer a.requestFrame(gen)
	defer func() {
		if r := recover(); r != nil {
			a.stats.SkippedFrames++
			a.log.Warn("[Field] frame failed, skipping",
				zap.Uint64("frame", a.stats.Frames),
				zap.Any("panic", r))
		}
	}()

	scale := a.frameScale(now)
	a.step(scale)
	a.draw()
	a.stats.Frames++
}

// frameScale is 1 unless TimeScaled is set, in which case integration
// follows the elapsed time relative to a 60 Hz frame.
func (a *Animator) frameScale(now time.Time) float64 {
	last := a.lastFrame
	a.lastFrame = now
	if !a.cfg.TimeScaled || last.IsZero() {
		return 1
	}
	scale := now.Sub(last).Seconds() / DefaultFrameInterval.Seconds()
	return math.Max(0, math.Min(scale, 3))
}

func (a *Animator) step(scale float64) {
	cfg := &a.cfg
	attracting := cfg.PointerInteraction && a.hasPointer
	hovered := 0
	for i := range a.particles {
		p := &a.particles[i]
		applyForces(p, cfg, scale)
		integrate(p, scale)
		applyBoundary(p, cfg.Boundary, cfg.Restitution, a.width, a.height)

		a.drawRadii[i] = p.Radius
		if attracting && attract(p, a.pointer, cfg, scale) {
			a.drawRadii[i] = p.Radius * cfg.HoverScale
			hovered++
		}
		p.Vel = clampVelocity(p.Vel, cfg.MaxVelocity)
	}
	a.stats.Hovered = hovered
}

func (a *Animator) draw() {
	cfg := &a.cfg
	c := a.canvas
	c.Clear(cfg.Background)

	a.conns = FindConnections(a.particles, cfg.ConnectionDistance, cfg.SpatialIndex, a.conns)
	for _, conn := range a.conns {
		t := conn.Strength(cfg.ConnectionDistance)
		col := cfg.LineColor
		col.A = uint8(math.Round(float64(col.A) * t))
		p, q := a.particles[conn.I].Pos, a.particles[conn.J].Pos
		c.StrokeLine(p.X, p.Y, q.X, q.Y, cfg.LineWidth*t, col)
	}
	a.stats.Connections = len(a.conns)

	for i := range a.particles {
		p := &a.particles[i]
		col := cfg.DotColor
		if cfg.ColorByCategory {
			col = cfg.CategoryColors[p.Category]
		}
		c.FillCircle(p.Pos.X, p.Pos.Y, a.drawRadii[i], col)
	}

	if f, ok := c.(Flusher); ok {
		f.Flush()
	}
}
