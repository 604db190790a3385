// Package element implements the interactive board elements: free points and
// the lines constructed on top of them. Elements never reach for the board or
// renderer through globals; both are injected as the Canvas and Renderer
// capabilities at construction. The board drives the two-phase update cycle
// (recompute, then draw); elements never initiate their own recomputation.
package element

import "github.com/chazu/geoboard/pkg/coords"

// Handle is an index into the board's element arena. Dependency ("child")
// lists hold handles rather than element pointers so that removing an element
// cannot leave aliased references behind.
type Handle int

// NoHandle marks an element that has not been registered with a board yet.
const NoHandle Handle = -1

// Element is the contract every board element fulfills toward the board's
// update cycle and dependency graph.
type Element interface {
	ID() string
	Handle() Handle
	SetHandle(h Handle)

	Visible() bool
	NeedsUpdate() bool
	MarkDirty()

	Dependents() []Handle
	AddDependent(h Handle)
	RemoveDependent(h Handle)

	// Update recomputes the element's derived state from its parents.
	// Called by the board in dependency order during phase one of the cycle.
	Update() error

	// UpdateRenderer pushes the refreshed state to the renderer and clears
	// the dirty flag. Phase two of the cycle.
	UpdateRenderer()
}

// Canvas is the capability an element consumes from its hosting board:
// the current user→screen transform and the visible extent in pixels.
type Canvas interface {
	Transform() coords.Transform
	Size() (w, h float64)

	// LegacyEquations reports whether the board manages line equations
	// itself (documents imported from the legacy format carry their own
	// analytic forms). When true, lines must not overwrite their standard
	// form during update.
	LegacyEquations() bool
}

// Renderer is the drawing capability injected into elements. Implementations
// live under pkg/render; tests use the recording backend.
type Renderer interface {
	UpdatePoint(p *Point)
	UpdateLine(ln *Line)
	Show(el Element)
	Hide(el Element)

	// CalcStraight clips the (possibly unbounded) line against the visible
	// canvas rectangle and returns the two boundary intersection points.
	// ok is false when the line lies entirely outside the canvas or is
	// degenerate.
	CalcStraight(ln *Line) (c1, c2 coords.Coordinate, ok bool)

	// UpdateTicks redraws the tick marks of ln. oldCount is the number of
	// tick visuals from the previous computation that must be retired;
	// zero on the first computation.
	UpdateTicks(ln *Line, oldCount int)
	RemoveTicks(ln *Line)

	// TraceLine keeps the line's current position as a background image,
	// drawn with the given immutable style snapshot.
	TraceLine(ln *Line, st Style)
}

// Base carries the state shared by all element kinds.
type Base struct {
	id          string
	handle      Handle
	visible     bool
	needsUpdate bool
	style       Style
	dependents  []Handle
}

func newBase(id string) Base {
	return Base{
		id:          id,
		handle:      NoHandle,
		visible:     true,
		needsUpdate: true,
		style:       DefaultStyle(),
	}
}

func (b *Base) ID() string          { return b.id }
func (b *Base) Handle() Handle      { return b.handle }
func (b *Base) SetHandle(h Handle)  { b.handle = h }
func (b *Base) Visible() bool       { return b.visible }
func (b *Base) SetVisible(v bool)   { b.visible = v }
func (b *Base) NeedsUpdate() bool   { return b.needsUpdate }
func (b *Base) MarkDirty()          { b.needsUpdate = true }
func (b *Base) Style() Style        { return b.style }
func (b *Base) SetStyle(st Style)   { b.style = st }

// Dependents returns the handles of elements that must be recomputed when
// this element changes.
func (b *Base) Dependents() []Handle { return b.dependents }

// AddDependent registers h as a dependent. Registering the same handle twice
// is a no-op.
func (b *Base) AddDependent(h Handle) {
	for _, d := range b.dependents {
		if d == h {
			return
		}
	}
	b.dependents = append(b.dependents, h)
}

// RemoveDependent detaches h from the dependent list.
func (b *Base) RemoveDependent(h Handle) {
	for i, d := range b.dependents {
		if d == h {
			b.dependents = append(b.dependents[:i], b.dependents[i+1:]...)
			return
		}
	}
}
