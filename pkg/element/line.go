package element

import (
	"fmt"
	"math"

	"github.com/chazu/geoboard/pkg/coords"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

const (
	// verticalEps is the screen-space x displacement below which a line is
	// treated as vertical. Slopes steeper than this would blow up the
	// division, so they go through the tagged Vertical branch instead.
	verticalEps = 1e-4

	// zeroLenEps guards divisions by segment lengths.
	zeroLenEps = 1e-10

	// DefaultHitTolerance is the pointer hit radius in device pixels.
	DefaultHitTolerance = 3
)

// Line is a line element defined by two point parents. Its analytic standard
// form, tick marks and realness are derived state, recomputed by the board's
// update cycle whenever a parent moves. The line reads its parents'
// coordinates but never mutates them.
type Line struct {
	Base
	canvas Canvas
	rend   Renderer

	p1, p2 *Point // non-owning parent references

	// stdform holds [c, a, b, 0] for a·x + b·y + c = 0 in user space,
	// normalized to a²+b² = 1. The fourth slot is reserved for homogeneous
	// use and stays 0.
	stdform [4]float64

	straightFirst bool // extend past p1
	straightLast  bool // extend past p2

	hitTolerance float64

	isReal  bool
	wasReal bool

	ticksEnabled    bool
	ticksDelta      float64
	ticks           []coords.Coordinate
	prevTickCount   int
	tickVisualsLive bool // false until the renderer has drawn ticks once
}

// NewLine creates a line through the two parent elements. Both parents must
// be points; anything else is a construction error and no element is created.
// The line starts unbounded on both ends.
func NewLine(canvas Canvas, rend Renderer, id string, a, b Element) (*Line, error) {
	p1, ok := a.(*Point)
	if !ok {
		return nil, fmt.Errorf("line %q: first parent %q is not a point", id, a.ID())
	}
	p2, ok := b.(*Point)
	if !ok {
		return nil, fmt.Errorf("line %q: second parent %q is not a point", id, b.ID())
	}
	return &Line{
		Base:          newBase(id),
		canvas:        canvas,
		rend:          rend,
		p1:            p1,
		p2:            p2,
		straightFirst: true,
		straightLast:  true,
		hitTolerance:  DefaultHitTolerance,
	}, nil
}

// P1 returns the first (reference) endpoint.
func (l *Line) P1() *Point { return l.p1 }

// P2 returns the second endpoint.
func (l *Line) P2() *Point { return l.p2 }

// StdForm returns the current normalized standard form [c, a, b, 0].
func (l *Line) StdForm() [4]float64 { return l.stdform }

// Straight returns the per-endpoint extension flags.
func (l *Line) Straight() (first, last bool) { return l.straightFirst, l.straightLast }

// IsReal reports whether both endpoints currently have finite coordinates,
// as of the last update.
func (l *Line) IsReal() bool { return l.isReal }

// HitTolerance returns the pointer hit radius in pixels.
func (l *Line) HitTolerance() float64 { return l.hitTolerance }

// SetHitTolerance configures the pointer hit radius in pixels.
func (l *Line) SetHitTolerance(r float64) {
	if r > 0 {
		l.hitTolerance = r
	}
}

// Ticks returns the current tick coordinates. Index 0 is always p1 itself,
// followed by the block toward the first boundary intersection and then the
// block toward the second.
func (l *Line) Ticks() []coords.Coordinate { return l.ticks }

// TicksEnabled reports whether tick generation is on.
func (l *Line) TicksEnabled() bool { return l.ticksEnabled }

// TicksDelta returns the user-space tick spacing.
func (l *Line) TicksDelta() float64 { return l.ticksDelta }

// ---------------------------------------------------------------------------
// Update cycle
// ---------------------------------------------------------------------------

// Update recomputes the line's derived state from the current parent
// coordinates: realness, the standard form, and the tick set when enabled.
// It is a no-op unless the line has been marked dirty.
func (l *Line) Update() error {
	if !l.needsUpdate {
		return nil
	}
	l.isReal = l.p1.Coord().IsReal() && l.p2.Coord().IsReal()
	if l.isReal && !l.canvas.LegacyEquations() {
		l.updateStdform()
	}
	if l.isReal && l.ticksEnabled {
		l.regenerateTicks()
	}
	return nil
}

// UpdateRenderer pushes the refreshed state to the renderer. Visibility is
// toggled exactly on transitions of realness, independent of the dirty flag.
func (l *Line) UpdateRenderer() {
	if l.isReal != l.wasReal {
		if l.isReal {
			l.rend.Show(l)
		} else {
			l.rend.Hide(l)
		}
		l.wasReal = l.isReal
	}
	if !l.needsUpdate {
		return
	}
	if l.visible && l.isReal {
		l.rend.UpdateLine(l)
		if l.ticksEnabled {
			// No tick visuals exist before the first draw, so there is
			// nothing to retire then.
			if l.tickVisualsLive {
				l.rend.UpdateTicks(l, l.prevTickCount)
			} else {
				l.rend.UpdateTicks(l, 0)
				l.tickVisualsLive = true
			}
		}
	}
	l.needsUpdate = false
}

// updateStdform recomputes the normalized standard form from the parents'
// user coordinates. Both endpoints satisfy a·x + b·y + c = 0 afterwards.
func (l *Line) updateStdform() {
	u1 := l.p1.Coord().User()
	u2 := l.p2.Coord().User()

	a := -(u2.Y - u1.Y)
	b := u2.X - u1.X
	c := -(a*u1.X + b*u1.Y)

	n := math.Hypot(a, b)
	if n < zeroLenEps {
		// Coincident endpoints define no line; keep the raw coefficients
		// so repeated updates stay idempotent.
		l.stdform = [4]float64{c, a, b, 0}
		return
	}
	l.stdform = [4]float64{c / n, a / n, b / n, 0}
}

// ---------------------------------------------------------------------------
// Hit testing
// ---------------------------------------------------------------------------

// HasPoint reports whether the screen position (sx, sy) lies within the hit
// tolerance band of the line, honoring the straight flags on bounded ends.
// It works against the parents' current coordinates, independent of the
// update cycle.
func (l *Line) HasPoint(sx, sy float64) bool {
	c1 := l.p1.Coord()
	c2 := l.p2.Coord()
	if !c1.IsReal() || !c2.IsReal() {
		return false
	}
	s1 := c1.Screen()
	s2 := c2.Screen()

	// Coincident endpoints: slope and distance ratios degenerate, so this
	// is defined as "no match".
	if s1.Sub(s2).Length() < verticalEps {
		return false
	}

	r := l.hitTolerance
	sl := l.Slope()

	if sl.Vertical() {
		if math.Abs(sx-s1.X) >= r {
			return false
		}
		if l.straightFirst && l.straightLast {
			return true
		}
		return l.hasPointVerticalBounded(sy, s1, s2)
	}

	// Banded test: scan a 2r window of integer x offsets around the query
	// and accept when any scanned line-y falls within r of the query y.
	m := sl.Value()
	k := s1.Y - m*s1.X
	hit := false
	ir := int(math.Ceil(r))
	for i := -ir; i <= ir; i++ {
		ly := m*(sx+float64(i)) + k
		if math.Abs(ly-sy) < r {
			hit = true
			break
		}
	}
	if !hit {
		return false
	}
	if l.straightFirst && l.straightLast {
		return true
	}

	// Bounded ends: compare pairwise distances. A query beyond an endpoint
	// is farther from the opposite endpoint than the endpoints are from
	// each other.
	q := v2.Vec{X: sx, Y: sy}
	d := s1.Sub(s2).Length()
	d1 := q.Sub(s1).Length()
	d2 := q.Sub(s2).Length()
	if d1 > d {
		return l.straightLast // beyond p2
	}
	if d2 > d {
		return l.straightFirst // beyond p1
	}
	return true
}

// hasPointVerticalBounded decides the permitted-side check for a vertical
// line with at least one bounded end. Orientation comes from direct y
// comparison: the endpoint with the smaller screen y decides which straight
// flag governs each side.
func (l *Line) hasPointVerticalBounded(sy float64, s1, s2 v2.Vec) bool {
	loIsP1 := s1.Y <= s2.Y
	lo, hi := s1.Y, s2.Y
	if !loIsP1 {
		lo, hi = s2.Y, s1.Y
	}
	switch {
	case sy < lo:
		if loIsP1 {
			return l.straightFirst
		}
		return l.straightLast
	case sy > hi:
		if loIsP1 {
			return l.straightLast
		}
		return l.straightFirst
	default:
		return true
	}
}

// ---------------------------------------------------------------------------
// Ticks
// ---------------------------------------------------------------------------

// EnableTicks turns on tick generation with the given user-space spacing and
// immediately recomputes and redraws the line.
func (l *Line) EnableTicks(delta float64) error {
	if delta <= 0 {
		return fmt.Errorf("line %q: tick spacing must be positive, got %v", l.id, delta)
	}
	l.ticksEnabled = true
	l.ticksDelta = delta
	l.refresh()
	return nil
}

// DisableTicks turns off tick generation, retires the tick visuals and
// redraws immediately.
func (l *Line) DisableTicks() {
	if !l.ticksEnabled {
		return
	}
	l.ticksEnabled = false
	l.ticks = nil
	l.prevTickCount = 0
	l.tickVisualsLive = false
	l.rend.RemoveTicks(l)
	l.refresh()
}

// SetStraight configures whether the line extends past each endpoint and
// immediately recomputes and redraws.
func (l *Line) SetStraight(first, last bool) {
	l.straightFirst = first
	l.straightLast = last
	l.refresh()
}

// refresh runs an immediate local update cycle. Configuration mutators must
// not wait for the next externally driven cycle. A line's Update reads only
// parent coordinates and cannot fail, so the error is dropped here.
func (l *Line) refresh() {
	l.MarkDirty()
	_ = l.Update()
	l.UpdateRenderer()
}

// regenerateTicks rebuilds the tick set wholesale: p1 itself at index 0,
// then floor(L/delta) ticks stepping outward toward each boundary
// intersection of the visible canvas.
func (l *Line) regenerateTicks() {
	l.prevTickCount = len(l.ticks)

	p1 := l.p1.Coord()
	ticks := []coords.Coordinate{p1}
	if c1, c2, ok := l.rend.CalcStraight(l); ok {
		ticks = append(ticks, l.ticksToward(p1, c1)...)
		ticks = append(ticks, l.ticksToward(p1, c2)...)
	}
	l.ticks = ticks
}

// ticksToward emits the tick block from p1 outward to one boundary
// intersection. A zero-length side emits no ticks: the unit step would be a
// division by zero, and "no ticks on this side" is the defined degradation.
func (l *Line) ticksToward(from, to coords.Coordinate) []coords.Coordinate {
	d := to.User().Sub(from.User())
	length := d.Length()
	if length < zeroLenEps {
		return nil
	}
	n := int(math.Floor(length / l.ticksDelta))
	if n <= 0 {
		return nil
	}
	step := d.MulScalar(l.ticksDelta / length)
	tf := from.Transform()
	out := make([]coords.Coordinate, 0, n)
	pos := from.User()
	for i := 0; i < n; i++ {
		pos = pos.Add(step)
		out = append(out, coords.FromUser(tf, pos))
	}
	return out
}

// ---------------------------------------------------------------------------
// Derived quantities
// ---------------------------------------------------------------------------

// Slope returns the screen-space slope between the endpoints, tagged Vertical
// when the screen x displacement is below the vertical epsilon. Computed on
// demand; not guaranteed to track endpoint moves between update cycles.
func (l *Line) Slope() Slope {
	s1 := l.p1.Coord().Screen()
	s2 := l.p2.Coord().Screen()
	if math.Abs(s2.X-s1.X) < verticalEps {
		return VerticalSlope()
	}
	return FiniteSlope((s2.Y - s1.Y) / (s2.X - s1.X))
}

// Rise returns the screen-space y intercept, rounded to the nearest pixel.
// ok is false for a vertical line, which has no y intercept.
func (l *Line) Rise() (rise int, ok bool) {
	sl := l.Slope()
	if sl.Vertical() {
		return 0, false
	}
	s1 := l.p1.Coord().Screen()
	return int(math.Round(s1.Y - sl.Value()*s1.X)), true
}

// TextAnchor returns the user-space midpoint of the segment, used for label
// placement.
func (l *Line) TextAnchor() coords.Coordinate {
	mid := l.p1.Coord().User().Add(l.p2.Coord().User()).MulScalar(0.5)
	return coords.FromUser(l.canvas.Transform(), mid)
}

// Trace hands the renderer an immutable snapshot of the current style so the
// line's present position is kept as a background image.
func (l *Line) Trace() {
	l.rend.TraceLine(l, l.Style())
}
