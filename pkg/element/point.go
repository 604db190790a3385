package element

import (
	"github.com/chazu/geoboard/pkg/coords"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Point is a free point element. It owns its user-space base position and a
// queue of transforms; the effective position is the base position with all
// queued transforms applied, converted to a dual-space Coordinate under the
// board's current transform.
type Point struct {
	Base
	canvas     Canvas
	rend       Renderer
	base       v2.Vec
	transforms []*Transform
	coord      coords.Coordinate
	wasReal    bool
}

// NewPoint creates a point at the given user coordinates.
func NewPoint(canvas Canvas, rend Renderer, id string, x, y float64) *Point {
	p := &Point{
		Base:   newBase(id),
		canvas: canvas,
		rend:   rend,
		base:   v2.Vec{X: x, Y: y},
	}
	p.coord = coords.FromUser(canvas.Transform(), p.base)
	return p
}

// Coord returns the point's current dual-space coordinate, as of the last
// update cycle.
func (p *Point) Coord() coords.Coordinate { return p.coord }

// IsReal reports whether the point's coordinate is currently finite.
func (p *Point) IsReal() bool { return p.coord.IsReal() }

// SetPosition rewrites the base position and drops queued transforms.
// Interactive moves should go through Translate instead so the transform
// record stays replayable; SetPosition is for (re)construction.
func (p *Point) SetPosition(x, y float64) {
	p.base = v2.Vec{X: x, Y: y}
	p.transforms = nil
	p.MarkDirty()
}

// AddTransform appends a transform to the queue.
func (p *Point) AddTransform(t *Transform) {
	p.transforms = append(p.transforms, t)
	p.MarkDirty()
}

// Translate queues a translation by (dx, dy) user units. When the queue
// already ends in a matrix transform the translation is melted into it
// instead of appending, so a drag gesture stays a single queue entry.
func (p *Point) Translate(dx, dy float64) {
	t := NewTranslation(dx, dy)
	if n := len(p.transforms); n > 0 {
		p.transforms[n-1].Melt(t)
	} else {
		p.transforms = append(p.transforms, t)
	}
	p.MarkDirty()
}

// Transforms returns the queued transforms, oldest first.
func (p *Point) Transforms() []*Transform { return p.transforms }

// Update recomputes the effective position from the base position and the
// transform queue under the board's current transform.
func (p *Point) Update() error {
	if !p.needsUpdate {
		return nil
	}
	pos := p.base
	for _, t := range p.transforms {
		pos = t.Apply(pos)
	}
	p.coord = coords.FromUser(p.canvas.Transform(), pos)
	return nil
}

// UpdateRenderer pushes the point to the renderer, toggling visibility
// exactly on transitions of the point's realness.
func (p *Point) UpdateRenderer() {
	real := p.coord.IsReal()
	if real != p.wasReal {
		if real {
			p.rend.Show(p)
		} else {
			p.rend.Hide(p)
		}
		p.wasReal = real
	}
	if !p.needsUpdate {
		return
	}
	if p.visible && real {
		p.rend.UpdatePoint(p)
	}
	p.needsUpdate = false
}
