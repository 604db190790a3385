// Package term implements a terminal renderer backend on tcell. One board
// pixel maps to one terminal cell, which keeps the coordinate math identical
// to the other backends at a coarse scale.
package term

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/chazu/geoboard/pkg/coords"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render"
)

// Compile-time interface check.
var _ element.Renderer = (*Renderer)(nil)

// Renderer draws board elements into a tcell screen.
type Renderer struct {
	screen tcell.Screen
	canvas element.Canvas
	hidden map[string]bool

	lineStyle  tcell.Style
	tickStyle  tcell.Style
	pointStyle tcell.Style
	traceStyle tcell.Style
}

// New creates a terminal renderer drawing the given canvas onto screen.
// The screen must already be initialized.
func New(screen tcell.Screen, canvas element.Canvas) *Renderer {
	return &Renderer{
		screen:     screen,
		canvas:     canvas,
		hidden:     make(map[string]bool),
		lineStyle:  tcell.StyleDefault.Foreground(tcell.ColorTeal),
		tickStyle:  tcell.StyleDefault.Foreground(tcell.ColorYellow),
		pointStyle: tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true),
		traceStyle: tcell.StyleDefault.Foreground(tcell.ColorGray),
	}
}

// Clear wipes the screen before a repaint cycle.
func (r *Renderer) Clear() { r.screen.Clear() }

// Flush pushes the drawn cells to the terminal.
func (r *Renderer) Flush() { r.screen.Show() }

// UpdatePoint draws the point marker and its id label.
func (r *Renderer) UpdatePoint(p *element.Point) {
	if r.hidden[p.ID()] {
		return
	}
	s := p.Coord().Screen()
	x, y := cell(s.X), cell(s.Y)
	r.set(x, y, '●', r.pointStyle)
	for i, ch := range p.ID() {
		r.set(x+1+i, y, ch, r.pointStyle)
	}
}

// UpdateLine draws the clipped line extent cell by cell.
func (r *Renderer) UpdateLine(ln *element.Line) {
	if r.hidden[ln.ID()] {
		return
	}
	r.strokeLine(ln, r.lineStyle)
}

func (r *Renderer) strokeLine(ln *element.Line, style tcell.Style) {
	c1, c2, ok := render.ClipStraight(ln, r.canvas)
	if !ok {
		return
	}
	s1, s2 := c1.Screen(), c2.Screen()
	x0, y0 := cell(s1.X), cell(s1.Y)
	x1, y1 := cell(s2.X), cell(s2.Y)
	ch := lineChar(x1-x0, y1-y0)
	for _, pt := range bresenham(x0, y0, x1, y1) {
		r.set(pt.X, pt.Y, ch, style)
	}
}

// Show unhides an element.
func (r *Renderer) Show(el element.Element) { delete(r.hidden, el.ID()) }

// Hide hides an element. Cells are reclaimed on the next repaint cycle.
func (r *Renderer) Hide(el element.Element) { r.hidden[el.ID()] = true }

// CalcStraight clips the line against the canvas rectangle.
func (r *Renderer) CalcStraight(ln *element.Line) (coords.Coordinate, coords.Coordinate, bool) {
	return render.ClipStraight(ln, r.canvas)
}

// UpdateTicks draws tick markers. The old visuals were wiped by the repaint
// cycle's Clear, so oldCount needs no per-cell retirement here.
func (r *Renderer) UpdateTicks(ln *element.Line, oldCount int) {
	if r.hidden[ln.ID()] {
		return
	}
	for i, t := range ln.Ticks() {
		if i == 0 {
			continue // index 0 is p1 itself, drawn as a point
		}
		s := t.Screen()
		r.set(cell(s.X), cell(s.Y), '+', r.tickStyle)
	}
}

// RemoveTicks is a no-op for the cell medium; the repaint cycle clears.
func (r *Renderer) RemoveTicks(ln *element.Line) {}

// TraceLine draws the line's current extent in the dim trace style.
func (r *Renderer) TraceLine(ln *element.Line, st element.Style) {
	r.strokeLine(ln, r.traceStyle)
}

func (r *Renderer) set(x, y int, ch rune, style tcell.Style) {
	if x < 0 || y < 0 {
		return
	}
	w, h := r.screen.Size()
	if x >= w || y >= h {
		return
	}
	r.screen.SetContent(x, y, ch, nil, style)
}

func cell(v float64) int { return int(math.Round(v)) }
