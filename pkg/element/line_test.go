package element_test

import (
	"math"
	"testing"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/geoboard/pkg/coords"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render/record"
)

// canvasStub is a minimal Canvas for driving elements without a board.
type canvasStub struct {
	tf     coords.Transform
	w, h   float64
	legacy bool
}

func (c canvasStub) Transform() coords.Transform { return c.tf }
func (c canvasStub) Size() (float64, float64)    { return c.w, c.h }
func (c canvasStub) LegacyEquations() bool       { return c.legacy }

// cycle runs one two-phase update pass over the given elements, parents first.
func cycle(els ...element.Element) {
	for _, e := range els {
		if err := e.Update(); err != nil {
			panic(err)
		}
	}
	for _, e := range els {
		e.UpdateRenderer()
	}
}

func mustLine(t *testing.T, c element.Canvas, r element.Renderer, id string, p1, p2 *element.Point) *element.Line {
	t.Helper()
	ln, err := element.NewLine(c, r, id, p1, p2)
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	return ln
}

func TestNewLineRejectsNonPointParents(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 100, h: 100}
	rec := record.New(c)
	a := element.NewPoint(c, rec, "A", 0, 0)
	b := element.NewPoint(c, rec, "B", 1, 1)
	ln := mustLine(t, c, rec, "AB", a, b)

	if _, err := element.NewLine(c, rec, "bad", a, ln); err == nil {
		t.Fatal("expected error for line parent, got nil")
	}
	if _, err := element.NewLine(c, rec, "bad", ln, b); err == nil {
		t.Fatal("expected error for line parent, got nil")
	}
}

func TestStdformSatisfiesEndpoints(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 100, h: 100}
	rec := record.New(c)

	cases := []struct {
		name           string
		x1, y1, x2, y2 float64
	}{
		{"diagonal", 1, 2, 4, 7},
		{"horizontal", 0, 3, -5, 3},
		{"vertical", 2, -1, 2, 6},
		{"steep", -3, -3, -2.5, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p1 := element.NewPoint(c, rec, "P1", tc.x1, tc.y1)
			p2 := element.NewPoint(c, rec, "P2", tc.x2, tc.y2)
			ln := mustLine(t, c, rec, "L", p1, p2)
			cycle(p1, p2, ln)

			sf := ln.StdForm()
			cc, a, b := sf[0], sf[1], sf[2]
			if n := math.Hypot(a, b); math.Abs(n-1) > 1e-12 {
				t.Errorf("norm(a,b) = %v, want 1", n)
			}
			for _, pt := range [][2]float64{{tc.x1, tc.y1}, {tc.x2, tc.y2}} {
				if got := a*pt[0] + b*pt[1] + cc; math.Abs(got) > 1e-12 {
					t.Errorf("a*x+b*y+c = %v at (%v,%v), want 0", got, pt[0], pt[1])
				}
			}
			if sf[3] != 0 {
				t.Errorf("stdform[3] = %v, want 0", sf[3])
			}
		})
	}
}

func TestStdformHorizontalExample(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 100, h: 100}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 0, 0)
	p2 := element.NewPoint(c, rec, "B", 4, 0)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	want := [4]float64{0, 0, 1, 0}
	if got := ln.StdForm(); got != want {
		t.Errorf("StdForm = %v, want %v", got, want)
	}
	sl := ln.Slope()
	if sl.Vertical() || sl.Value() != 0 {
		t.Errorf("Slope = %+v, want finite 0", sl)
	}
	rise, ok := ln.Rise()
	if !ok || rise != 0 {
		t.Errorf("Rise = (%d, %v), want (0, true)", rise, ok)
	}
}

func TestStdformCoincidentEndpoints(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 100, h: 100}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 1, 1)
	p2 := element.NewPoint(c, rec, "B", 1, 1)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	if got := ln.StdForm(); got != [4]float64{0, 0, 0, 0} {
		t.Errorf("StdForm = %v, want zero coefficients", got)
	}
	if ln.HasPoint(1, -1) {
		t.Error("HasPoint matched a degenerate line")
	}
}

func TestUpdateIdempotent(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 50, h: 50}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 1, -2)
	p2 := element.NewPoint(c, rec, "B", 7, 3)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	if err := ln.EnableTicks(1); err != nil {
		t.Fatal(err)
	}
	cycle(p1, p2, ln)

	sf1 := ln.StdForm()
	t1 := append([]coords.Coordinate(nil), ln.Ticks()...)

	ln.MarkDirty()
	cycle(p1, p2, ln)

	if sf2 := ln.StdForm(); sf2 != sf1 {
		t.Errorf("stdform changed across updates: %v then %v", sf1, sf2)
	}
	t2 := ln.Ticks()
	if len(t2) != len(t1) {
		t.Fatalf("tick count changed: %d then %d", len(t1), len(t2))
	}
	for i := range t1 {
		if t1[i].User() != t2[i].User() {
			t.Errorf("tick %d moved: %v then %v", i, t1[i].User(), t2[i].User())
		}
	}
}

func TestLegacyEquationsSkipsStdform(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 50, h: 50, legacy: true}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 0, 0)
	p2 := element.NewPoint(c, rec, "B", 4, 0)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	if got := ln.StdForm(); got != [4]float64{} {
		t.Errorf("StdForm = %v, want untouched zero value", got)
	}
}

// ---------------------------------------------------------------------------
// Hit testing
// ---------------------------------------------------------------------------

func TestHasPointVertical(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 20, h: 20}
	rec := record.New(c)
	// Screen positions: (2,0) and (2,-5).
	p1 := element.NewPoint(c, rec, "A", 2, 0)
	p2 := element.NewPoint(c, rec, "B", 2, 5)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	if !ln.Slope().Vertical() {
		t.Fatal("expected a vertical slope")
	}
	if rise, ok := ln.Rise(); ok {
		t.Errorf("Rise = (%d, true) for a vertical line, want no intercept", rise)
	}
	if !ln.HasPoint(2, -3) {
		t.Error("on-line query missed")
	}
	if ln.HasPoint(10, -3) {
		t.Error("query 8px off the line matched")
	}
	if !ln.HasPoint(2, 7) {
		t.Error("unbounded vertical line must match beyond its endpoints")
	}

	ln.SetStraight(false, false)
	if !ln.HasPoint(2, -3) {
		t.Error("between-endpoints query missed on segment")
	}
	if ln.HasPoint(2, 2) {
		t.Error("query beyond p1 matched with straightFirst off")
	}
	if ln.HasPoint(2, -7) {
		t.Error("query beyond p2 matched with straightLast off")
	}
}

func TestHasPointBandAndBounds(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 40, h: 40}
	rec := record.New(c)
	// Screen positions: (0,0) and (10,0).
	p1 := element.NewPoint(c, rec, "A", 0, 0)
	p2 := element.NewPoint(c, rec, "B", 10, 0)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	if !ln.HasPoint(5, 2) {
		t.Error("query 2px above the line missed at tolerance 3")
	}
	if ln.HasPoint(5, 4) {
		t.Error("query 4px above the line matched at tolerance 3")
	}
	if !ln.HasPoint(15, 0) {
		t.Error("unbounded line must match beyond p2")
	}

	ln.SetStraight(true, false)
	if ln.HasPoint(15, 0) {
		t.Error("query beyond p2 matched with straightLast off")
	}
	if !ln.HasPoint(-5, 0) {
		t.Error("query beyond p1 must match with straightFirst on")
	}

	ln.SetStraight(false, true)
	if ln.HasPoint(-5, 0) {
		t.Error("query beyond p1 matched with straightFirst off")
	}
	if !ln.HasPoint(15, 0) {
		t.Error("query beyond p2 must match with straightLast on")
	}

	ln.SetStraight(false, false)
	if !ln.HasPoint(5, 0) {
		t.Error("between-endpoints query missed on segment")
	}
}

func TestHasPointReflexiveOnSegment(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 0, 0)
	p2 := element.NewPoint(c, rec, "B", 8, 6)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	ln.SetStraight(false, false)
	s1 := p1.Coord().Screen()
	s2 := p2.Coord().Screen()
	for i := 0; i <= 10; i++ {
		f := float64(i) / 10
		sx := s1.X + f*(s2.X-s1.X)
		sy := s1.Y + f*(s2.Y-s1.Y)
		if !ln.HasPoint(sx, sy) {
			t.Errorf("on-segment sample %d at (%v,%v) missed", i, sx, sy)
		}
	}
}

func TestHasPointNotReal(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", math.NaN(), 0)
	p2 := element.NewPoint(c, rec, "B", 10, 0)
	ln := mustLine(t, c, rec, "AB", p1, p2)

	if ln.HasPoint(5, 0) {
		t.Error("line with a NaN endpoint matched a hit query")
	}
}

func TestSetHitTolerance(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 0, 0)
	p2 := element.NewPoint(c, rec, "B", 10, 0)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	ln.SetHitTolerance(8)
	if !ln.HasPoint(5, 6) {
		t.Error("query inside the widened band missed")
	}
	ln.SetHitTolerance(-1) // ignored
	if got := ln.HitTolerance(); got != 8 {
		t.Errorf("HitTolerance = %v after invalid set, want 8", got)
	}
}

// ---------------------------------------------------------------------------
// Ticks
// ---------------------------------------------------------------------------

// tickCanvas frames user space [0,5]×[0,10] onto a 5×10 pixel canvas.
func tickCanvas() canvasStub {
	return canvasStub{
		tf: coords.Transform{Origin: v2.Vec{X: 0, Y: 10}, UnitX: 1, UnitY: 1},
		w:  5, h: 10,
	}
}

func TestTickCountAndAnchor(t *testing.T) {
	c := tickCanvas()
	rec := record.New(c)
	// p1 sits 3 user units from the left boundary and 2 from the right.
	p1 := element.NewPoint(c, rec, "A", 3, 4)
	p2 := element.NewPoint(c, rec, "B", 4, 4)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	if err := ln.EnableTicks(1); err != nil {
		t.Fatal(err)
	}
	cycle(p1, p2, ln)

	ticks := ln.Ticks()
	if len(ticks) != 6 {
		t.Fatalf("len(Ticks) = %d, want 6 (anchor + 3 + 2)", len(ticks))
	}
	if ticks[0].User() != p1.Coord().User() {
		t.Errorf("ticks[0] = %v, want p1 position %v", ticks[0].User(), p1.Coord().User())
	}
	for i, tk := range ticks {
		u := tk.User()
		if math.IsNaN(u.X) || math.IsNaN(u.Y) {
			t.Errorf("tick %d is NaN", i)
		}
		if u.Y != 4 {
			t.Errorf("tick %d left the line: y = %v", i, u.Y)
		}
	}
}

func TestTickZeroLengthSide(t *testing.T) {
	c := tickCanvas()
	rec := record.New(c)
	// p1 on the left boundary: the side toward it has length zero and must
	// contribute no ticks rather than divide by zero.
	p1 := element.NewPoint(c, rec, "A", 0, 4)
	p2 := element.NewPoint(c, rec, "B", 1, 4)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	if err := ln.EnableTicks(1); err != nil {
		t.Fatal(err)
	}
	cycle(p1, p2, ln)

	ticks := ln.Ticks()
	if len(ticks) != 6 {
		t.Fatalf("len(Ticks) = %d, want 6 (anchor + 0 + 5)", len(ticks))
	}
	for i, tk := range ticks {
		u := tk.User()
		if math.IsNaN(u.X) || math.IsNaN(u.Y) {
			t.Errorf("tick %d is NaN", i)
		}
	}
}

func TestEnableTicksRejectsBadDelta(t *testing.T) {
	c := tickCanvas()
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 1, 4)
	p2 := element.NewPoint(c, rec, "B", 2, 4)
	ln := mustLine(t, c, rec, "AB", p1, p2)

	if err := ln.EnableTicks(0); err == nil {
		t.Error("EnableTicks(0) succeeded, want error")
	}
	if err := ln.EnableTicks(-2); err == nil {
		t.Error("EnableTicks(-2) succeeded, want error")
	}
	if ln.TicksEnabled() {
		t.Error("ticks enabled after rejected deltas")
	}
}

func TestTickRendererLifecycle(t *testing.T) {
	c := tickCanvas()
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 3, 4)
	p2 := element.NewPoint(c, rec, "B", 4, 4)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	if err := ln.EnableTicks(1); err != nil {
		t.Fatal(err)
	}
	if len(rec.TickUpdates) != 1 {
		t.Fatalf("len(TickUpdates) = %d after enable, want 1", len(rec.TickUpdates))
	}
	first := rec.TickUpdates[0]
	if first.OldCount != 0 {
		t.Errorf("first draw retired %d tick visuals, want 0", first.OldCount)
	}

	// Move an endpoint: the next draw must retire the previous tick count.
	p2.Translate(0, 1)
	ln.MarkDirty()
	cycle(p1, p2, ln)
	if len(rec.TickUpdates) != 2 {
		t.Fatalf("len(TickUpdates) = %d after move, want 2", len(rec.TickUpdates))
	}
	if got := rec.TickUpdates[1].OldCount; got != first.NewCount {
		t.Errorf("second draw retired %d, want previous count %d", got, first.NewCount)
	}

	ln.DisableTicks()
	if len(ln.Ticks()) != 0 {
		t.Errorf("len(Ticks) = %d after disable, want 0", len(ln.Ticks()))
	}
	if len(rec.RemovedTicks) != 1 || rec.RemovedTicks[0] != "AB" {
		t.Errorf("RemovedTicks = %v, want [AB]", rec.RemovedTicks)
	}
}

// ---------------------------------------------------------------------------
// Renderer cycle
// ---------------------------------------------------------------------------

func TestVisibilityFollowsRealness(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 0, 0)
	p2 := element.NewPoint(c, rec, "B", 10, 0)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	st := rec.Line("AB")
	if st == nil || !st.Visible {
		t.Fatalf("line state after first cycle = %+v, want visible", st)
	}
	hides := rec.HideCalls

	p1.SetPosition(math.NaN(), 0)
	ln.MarkDirty()
	cycle(p1, p2, ln)
	if ln.IsReal() {
		t.Error("IsReal = true with a NaN endpoint")
	}
	if rec.Line("AB").Visible {
		t.Error("line still visible with a NaN endpoint")
	}
	if rec.HideCalls == hides {
		t.Error("no Hide call on the real to not-real transition")
	}

	// A second unreal cycle must not hide again.
	hides = rec.HideCalls
	ln.MarkDirty()
	cycle(p1, p2, ln)
	if rec.HideCalls != hides {
		t.Error("Hide called again without a realness transition")
	}

	p1.SetPosition(0, 0)
	ln.MarkDirty()
	cycle(p1, p2, ln)
	if !ln.IsReal() || !rec.Line("AB").Visible {
		t.Error("line not shown again after becoming real")
	}
}

func TestSetStraightRedrawsImmediately(t *testing.T) {
	c := canvasStub{tf: coords.Transform{Origin: v2.Vec{X: 0, Y: 40}, UnitX: 1, UnitY: 1}, w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 10, 20)
	p2 := element.NewPoint(c, rec, "B", 30, 20)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	st := rec.Line("AB")
	if st.X1 != 0 || st.X2 != 40 {
		t.Fatalf("straight line drawn [%v,%v], want clipped to [0,40]", st.X1, st.X2)
	}

	// No board cycle here: the mutator itself must refresh the drawing.
	ln.SetStraight(false, false)
	st = rec.Line("AB")
	if st.X1 != 10 || st.X2 != 30 {
		t.Errorf("segment drawn [%v,%v], want endpoint extent [10,30]", st.X1, st.X2)
	}
}

func TestTextAnchorMidpoint(t *testing.T) {
	c := canvasStub{tf: coords.Identity(), w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 1, 2)
	p2 := element.NewPoint(c, rec, "B", 5, 8)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	got := ln.TextAnchor().User()
	if got.X != 3 || got.Y != 5 {
		t.Errorf("TextAnchor = (%v,%v), want (3,5)", got.X, got.Y)
	}
}

func TestTraceSnapshotsStyle(t *testing.T) {
	c := canvasStub{tf: coords.Transform{Origin: v2.Vec{X: 0, Y: 40}, UnitX: 1, UnitY: 1}, w: 40, h: 40}
	rec := record.New(c)
	p1 := element.NewPoint(c, rec, "A", 10, 20)
	p2 := element.NewPoint(c, rec, "B", 30, 20)
	ln := mustLine(t, c, rec, "AB", p1, p2)
	cycle(p1, p2, ln)

	st := ln.Style()
	st.StrokeColor = "#e67e22"
	ln.SetStyle(st)
	ln.Trace()

	st.StrokeColor = "#000000"
	ln.SetStyle(st)

	if len(rec.Traces) != 1 {
		t.Fatalf("len(Traces) = %d, want 1", len(rec.Traces))
	}
	if got := rec.Traces[0].Style.StrokeColor; got != "#e67e22" {
		t.Errorf("trace stroke color = %q, want snapshot %q", got, "#e67e22")
	}
}
