// Package record implements a recording renderer backend. It keeps the last
// drawn state of every element instead of producing pixels, which makes it
// both the test double for element and board tests and the scene source for
// frontend bindings.
package record

import (
	"sort"

	"github.com/chazu/geoboard/pkg/coords"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render"
)

// Compile-time interface check.
var _ element.Renderer = (*Recorder)(nil)

// PointState is the recorded draw state of a point.
type PointState struct {
	ID      string  `json:"id"`
	X       float64 `json:"x"` // screen pixels
	Y       float64 `json:"y"`
	UserX   float64 `json:"userX"`
	UserY   float64 `json:"userY"`
	Visible bool    `json:"visible"`
}

// LineState is the recorded draw state of a line: the clipped screen extent
// plus tick positions.
type LineState struct {
	ID      string        `json:"id"`
	X1      float64       `json:"x1"` // drawn extent, screen pixels
	Y1      float64       `json:"y1"`
	X2      float64       `json:"x2"`
	Y2      float64       `json:"y2"`
	Ticks   [][2]float64  `json:"ticks,omitempty"` // screen pixels
	Style   element.Style `json:"style"`
	Visible bool          `json:"visible"`
}

// TickUpdate records one tick-lifecycle call.
type TickUpdate struct {
	ID       string
	OldCount int
	NewCount int
}

// Trace records one clone-to-background call with its style snapshot.
type Trace struct {
	ID    string
	X1    float64
	Y1    float64
	X2    float64
	Y2    float64
	Style element.Style
}

// Scene is the JSON-serializable drawing produced by a full update cycle.
type Scene struct {
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Points []PointState `json:"points"`
	Lines  []LineState  `json:"lines"`
}

// Recorder implements element.Renderer by recording draw state.
type Recorder struct {
	canvas element.Canvas

	points map[string]*PointState
	lines  map[string]*LineState
	hidden map[string]bool

	// Call records inspected by tests.
	ShowCalls    int
	HideCalls    int
	TickUpdates  []TickUpdate
	RemovedTicks []string
	Traces       []Trace
}

// New creates a Recorder drawing onto the given canvas.
func New(c element.Canvas) *Recorder {
	return &Recorder{
		canvas: c,
		points: make(map[string]*PointState),
		lines:  make(map[string]*LineState),
		hidden: make(map[string]bool),
	}
}

// UpdatePoint records the point's current position.
func (r *Recorder) UpdatePoint(p *element.Point) {
	s := p.Coord().Screen()
	u := p.Coord().User()
	r.points[p.ID()] = &PointState{
		ID:      p.ID(),
		X:       s.X,
		Y:       s.Y,
		UserX:   u.X,
		UserY:   u.Y,
		Visible: !r.hidden[p.ID()],
	}
}

// UpdateLine records the line's clipped drawn extent.
func (r *Recorder) UpdateLine(ln *element.Line) {
	st, ok := r.lines[ln.ID()]
	if !ok {
		st = &LineState{ID: ln.ID()}
		r.lines[ln.ID()] = st
	}
	c1, c2, clipped := render.ClipStraight(ln, r.canvas)
	if clipped {
		s1, s2 := c1.Screen(), c2.Screen()
		st.X1, st.Y1, st.X2, st.Y2 = s1.X, s1.Y, s2.X, s2.Y
	} else {
		s1 := ln.P1().Coord().Screen()
		s2 := ln.P2().Coord().Screen()
		st.X1, st.Y1, st.X2, st.Y2 = s1.X, s1.Y, s2.X, s2.Y
	}
	st.Style = ln.Style()
	st.Visible = !r.hidden[ln.ID()]
}

// Show marks an element visible.
func (r *Recorder) Show(el element.Element) {
	r.ShowCalls++
	delete(r.hidden, el.ID())
	if st, ok := r.lines[el.ID()]; ok {
		st.Visible = true
	}
	if st, ok := r.points[el.ID()]; ok {
		st.Visible = true
	}
}

// Hide marks an element hidden.
func (r *Recorder) Hide(el element.Element) {
	r.HideCalls++
	r.hidden[el.ID()] = true
	if st, ok := r.lines[el.ID()]; ok {
		st.Visible = false
	}
	if st, ok := r.points[el.ID()]; ok {
		st.Visible = false
	}
}

// CalcStraight clips the line against the canvas rectangle.
func (r *Recorder) CalcStraight(ln *element.Line) (coords.Coordinate, coords.Coordinate, bool) {
	return render.ClipStraight(ln, r.canvas)
}

// UpdateTicks records the line's tick positions and the retired count.
func (r *Recorder) UpdateTicks(ln *element.Line, oldCount int) {
	ticks := ln.Ticks()
	r.TickUpdates = append(r.TickUpdates, TickUpdate{
		ID:       ln.ID(),
		OldCount: oldCount,
		NewCount: len(ticks),
	})
	st, ok := r.lines[ln.ID()]
	if !ok {
		st = &LineState{ID: ln.ID()}
		r.lines[ln.ID()] = st
	}
	st.Ticks = st.Ticks[:0]
	for _, t := range ticks {
		s := t.Screen()
		st.Ticks = append(st.Ticks, [2]float64{s.X, s.Y})
	}
}

// RemoveTicks retires all tick visuals of the line.
func (r *Recorder) RemoveTicks(ln *element.Line) {
	r.RemovedTicks = append(r.RemovedTicks, ln.ID())
	if st, ok := r.lines[ln.ID()]; ok {
		st.Ticks = nil
	}
}

// TraceLine records a clone-to-background with its style snapshot.
func (r *Recorder) TraceLine(ln *element.Line, st element.Style) {
	c1, c2, ok := render.ClipStraight(ln, r.canvas)
	tr := Trace{ID: ln.ID(), Style: st}
	if ok {
		s1, s2 := c1.Screen(), c2.Screen()
		tr.X1, tr.Y1, tr.X2, tr.Y2 = s1.X, s1.Y, s2.X, s2.Y
	}
	r.Traces = append(r.Traces, tr)
}

// Line returns the recorded state of the line with the given id, or nil.
func (r *Recorder) Line(id string) *LineState { return r.lines[id] }

// Point returns the recorded state of the point with the given id, or nil.
func (r *Recorder) Point(id string) *PointState { return r.points[id] }

// Scene exports all recorded state, ordered by element id for deterministic
// output.
func (r *Recorder) Scene() Scene {
	w, h := r.canvas.Size()
	sc := Scene{Width: w, Height: h}
	for _, p := range r.points {
		sc.Points = append(sc.Points, *p)
	}
	for _, l := range r.lines {
		sc.Lines = append(sc.Lines, *l)
	}
	sort.Slice(sc.Points, func(i, j int) bool { return sc.Points[i].ID < sc.Points[j].ID })
	sort.Slice(sc.Lines, func(i, j int) bool { return sc.Lines[i].ID < sc.Lines[j].ID })
	return sc
}
