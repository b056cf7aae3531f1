package field

import "math"

// applyForces damps and accelerates the velocity before integration.
func applyForces(p *Particle, cfg *Config, scale float64) {
	if cfg.Friction > 0 {
		p.Vel = p.Vel.Scale(math.Pow(1-cfg.Friction, scale))
	}
	if cfg.Gravity != 0 {
		p.Vel.Y += cfg.Gravity * scale
	}
}

// integrate advances the position by one (scaled) frame of velocity.
func integrate(p *Particle, scale float64) {
	p.Pos = p.Pos.Add(p.Vel.Scale(scale))
}

// applyBoundary keeps the particle inside [0,w]×[0,h].
//
// Bounce clamps onto the crossed edge and points the velocity component
// back inside, so a particle left outside by a shrinking resize does not
// oscillate on the edge.
func applyBoundary(p *Particle, policy Boundary, restitution, w, h float64) {
	switch policy {
	case BoundaryWrap:
		p.Pos.X = wrap(p.Pos.X, w)
		p.Pos.Y = wrap(p.Pos.Y, h)
	default:
		p.Pos.X, p.Vel.X = bounce(p.Pos.X, p.Vel.X, restitution, w)
		p.Pos.Y, p.Vel.Y = bounce(p.Pos.Y, p.Vel.Y, restitution, h)
	}
}

func wrap(x, extent float64) float64 {
	switch {
	case x < 0:
		return extent
	case x > extent:
		return 0
	}
	return x
}

func bounce(x, v, restitution, extent float64) (float64, float64) {
	switch {
	case x < 0:
		return 0, math.Abs(v) * restitution
	case x > extent:
		return extent, -math.Abs(v) * restitution
	}
	return x, v
}

// attract pulls the particle toward the pointer when it lies within the
// attraction radius. It reports whether the particle is hovered.
func attract(p *Particle, pointer Vec2, cfg *Config, scale float64) bool {
	delta := pointer.Sub(p.Pos)
	d := delta.Len()
	if d <= 0 || d >= cfg.AttractionRadius {
		return false
	}
	strength := (cfg.AttractionRadius - d) / cfg.AttractionRadius * cfg.AttractionForce
	p.Vel = p.Vel.Add(delta.Scale(strength * scale / d))
	return true
}

// clampVelocity limits the speed to max and zeroes non-finite components.
func clampVelocity(v Vec2, max float64) Vec2 {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) {
		v.X = 0
	}
	if math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
		v.Y = 0
	}
	speed := v.Len()
	if speed > max && speed > 0 {
		v = v.Scale(max / speed)
	}
	return v
}
