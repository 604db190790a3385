// Package board implements the host board: it owns the user→screen transform,
// the element arena and the dependency graph between elements, and drives the
// two-phase update cycle. Elements see the board only through the
// element.Canvas capability.
package board

import (
	"fmt"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/geoboard/pkg/coords"
	"github.com/chazu/geoboard/pkg/element"
)

// Compile-time capability check.
var _ element.Canvas = (*Board)(nil)

// Options configures a new board.
type Options struct {
	// BoundingBox is the visible user-space extent as [xmin, ymax, xmax, ymin],
	// matching the reading order top-left to bottom-right.
	BoundingBox [4]float64

	// Width and Height are the canvas size in device pixels.
	Width  float64
	Height float64

	// LegacyEquations marks boards imported from the legacy document format,
	// which carry their own line equations. Lines skip their standard-form
	// update on such boards.
	LegacyEquations bool
}

// RendererFactory builds the renderer for a board. The factory receives the
// board as the Canvas capability because most backends need the transform and
// extent for clipping.
type RendererFactory func(c element.Canvas) element.Renderer

// Board is the host of all elements.
type Board struct {
	tf     coords.Transform
	width  float64
	height float64
	legacy bool
	rend   element.Renderer

	elements []element.Element // arena; removed slots are nil
	byID     map[string]element.Handle
}

// New creates an empty board. Zero-valued options fall back to a 500×500
// pixel canvas showing user space [-5,5]×[-5,5].
func New(opts Options, factory RendererFactory) *Board {
	if opts.Width <= 0 {
		opts.Width = 500
	}
	if opts.Height <= 0 {
		opts.Height = 500
	}
	if opts.BoundingBox == [4]float64{} {
		opts.BoundingBox = [4]float64{-5, 5, 5, -5}
	}
	b := &Board{
		width:  opts.Width,
		height: opts.Height,
		legacy: opts.LegacyEquations,
		byID:   make(map[string]element.Handle),
	}
	b.tf = transformFor(opts.BoundingBox, opts.Width, opts.Height)
	b.rend = factory(b)
	return b
}

// transformFor derives the affine user→screen transform showing bbox on a
// w×h pixel canvas.
func transformFor(bbox [4]float64, w, h float64) coords.Transform {
	xmin, ymax, xmax, ymin := bbox[0], bbox[1], bbox[2], bbox[3]
	unitX := w / (xmax - xmin)
	unitY := h / (ymax - ymin)
	return coords.Transform{
		Origin: v2.Vec{X: -xmin * unitX, Y: ymax * unitY},
		UnitX:  unitX,
		UnitY:  unitY,
	}
}

// Transform returns the current user→screen transform.
func (b *Board) Transform() coords.Transform { return b.tf }

// Size returns the canvas size in device pixels.
func (b *Board) Size() (w, h float64) { return b.width, b.height }

// LegacyEquations reports whether the board manages line equations itself.
func (b *Board) LegacyEquations() bool { return b.legacy }

// Renderer returns the injected renderer.
func (b *Board) Renderer() element.Renderer { return b.rend }

// ---------------------------------------------------------------------------
// Element registry
// ---------------------------------------------------------------------------

// register inserts an element into the arena and assigns its handle.
func (b *Board) register(el element.Element) element.Handle {
	h := element.Handle(len(b.elements))
	b.elements = append(b.elements, el)
	b.byID[el.ID()] = h
	el.SetHandle(h)
	logger().Debug("element registered", "id", el.ID(), "handle", int(h))
	return h
}

// AddPoint creates and registers a free point at user coordinates (x, y).
func (b *Board) AddPoint(id string, x, y float64) (*element.Point, error) {
	if _, exists := b.byID[id]; exists {
		return nil, fmt.Errorf("board: element id %q already in use", id)
	}
	p := element.NewPoint(b, b.rend, id, x, y)
	b.register(p)
	return p, nil
}

// AddLine creates and registers a line through the two named parent elements
// and registers it as a dependent of both. Construction fails loudly when a
// parent is missing or is not a point; no partial element is registered.
func (b *Board) AddLine(id, p1ID, p2ID string) (*element.Line, error) {
	if _, exists := b.byID[id]; exists {
		return nil, fmt.Errorf("board: element id %q already in use", id)
	}
	a, err := b.lookup(p1ID)
	if err != nil {
		return nil, fmt.Errorf("board: line %q: %w", id, err)
	}
	c, err := b.lookup(p2ID)
	if err != nil {
		return nil, fmt.Errorf("board: line %q: %w", id, err)
	}
	ln, err := element.NewLine(b, b.rend, id, a, c)
	if err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	h := b.register(ln)
	a.AddDependent(h)
	c.AddDependent(h)
	return ln, nil
}

func (b *Board) lookup(id string) (element.Element, error) {
	h, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("no element named %q", id)
	}
	return b.elements[h], nil
}

// Get returns the element with the given id, or nil.
func (b *Board) Get(id string) element.Element {
	h, ok := b.byID[id]
	if !ok {
		return nil
	}
	return b.elements[h]
}

// Remove deletes an element from the board, detaching it from its parents'
// dependent lists. Elements that still have dependents cannot be removed.
func (b *Board) Remove(id string) error {
	h, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("board: no element named %q", id)
	}
	el := b.elements[h]
	if len(el.Dependents()) > 0 {
		return fmt.Errorf("board: element %q still has %d dependents", id, len(el.Dependents()))
	}
	for _, other := range b.elements {
		if other != nil {
			other.RemoveDependent(h)
		}
	}
	b.elements[h] = nil
	delete(b.byID, id)
	logger().Debug("element removed", "id", id)
	return nil
}

// ElementCount returns the number of live elements.
func (b *Board) ElementCount() int {
	n := 0
	for _, el := range b.elements {
		if el != nil {
			n++
		}
	}
	return n
}

// ---------------------------------------------------------------------------
// Dirty propagation and the update cycle
// ---------------------------------------------------------------------------

// MarkDirty marks the element and everything that transitively depends on it
// as needing an update.
func (b *Board) MarkDirty(h element.Handle) {
	seen := make(map[element.Handle]bool)
	queue := []element.Handle{h}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] || int(cur) < 0 || int(cur) >= len(b.elements) {
			continue
		}
		seen[cur] = true
		el := b.elements[cur]
		if el == nil {
			continue
		}
		el.MarkDirty()
		queue = append(queue, el.Dependents()...)
	}
}

// TranslatePoint queues a translation onto the named point and propagates
// dirtiness to its dependents. This is the only coordinate-mutation path;
// the board never writes point coordinates in place.
func (b *Board) TranslatePoint(id string, dx, dy float64) error {
	el, err := b.lookup(id)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}
	p, ok := el.(*element.Point)
	if !ok {
		return fmt.Errorf("board: element %q is not a point", id)
	}
	p.Translate(dx, dy)
	b.MarkDirty(p.Handle())
	return nil
}

// Update runs one full cycle: recompute all dirty elements in dependency
// order (parents precede dependents in the arena), then let them draw.
func (b *Board) Update() error {
	for _, el := range b.elements {
		if el == nil || !el.NeedsUpdate() {
			continue
		}
		if err := el.Update(); err != nil {
			return fmt.Errorf("board: update %q: %w", el.ID(), err)
		}
	}
	for _, el := range b.elements {
		if el != nil {
			el.UpdateRenderer()
		}
	}
	return nil
}

// Repaint marks every element dirty and runs a full cycle. Used by backends
// whose medium is wiped between frames.
func (b *Board) Repaint() error {
	for _, el := range b.elements {
		if el != nil {
			el.MarkDirty()
		}
	}
	return b.Update()
}

// SetBoundingBox changes the visible user-space extent, rebuilds the
// transform and recomputes everything immediately.
func (b *Board) SetBoundingBox(bbox [4]float64) error {
	if bbox[2] <= bbox[0] || bbox[1] <= bbox[3] {
		return fmt.Errorf("board: degenerate bounding box %v", bbox)
	}
	b.tf = transformFor(bbox, b.width, b.height)
	logger().Debug("bounding box changed", "bbox", bbox)
	return b.Repaint()
}

// ---------------------------------------------------------------------------
// Pointer events
// ---------------------------------------------------------------------------

// hitTester is satisfied by elements that support pointer hit-testing.
type hitTester interface {
	HasPoint(sx, sy float64) bool
}

// HitTest returns the ids of all elements under the screen position
// (sx, sy), in arena order. It runs against current coordinates,
// independent of the update cycle.
func (b *Board) HitTest(sx, sy float64) []string {
	var hits []string
	for _, el := range b.elements {
		if el == nil {
			continue
		}
		ht, ok := el.(hitTester)
		if ok && ht.HasPoint(sx, sy) {
			hits = append(hits, el.ID())
		}
	}
	return hits
}
