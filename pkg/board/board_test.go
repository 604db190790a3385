package board_test

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/geoboard/pkg/board"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render/record"
)

// newBoard creates a board with a recording renderer on the default canvas:
// 500×500 pixels showing user space [-5,5]×[-5,5].
func newBoard(t *testing.T, opts board.Options) (*board.Board, *record.Recorder) {
	t.Helper()
	var rec *record.Recorder
	b := board.New(opts, func(c element.Canvas) element.Renderer {
		rec = record.New(c)
		return rec
	})
	return b, rec
}

func TestTransformFromBoundingBox(t *testing.T) {
	b, _ := newBoard(t, board.Options{
		BoundingBox: [4]float64{-10, 7.5, 10, -7.5},
		Width:       800,
		Height:      600,
	})

	tf := b.Transform()
	if tf.UnitX != 40 || tf.UnitY != 40 {
		t.Errorf("units = (%v,%v), want (40,40)", tf.UnitX, tf.UnitY)
	}
	if tf.Origin.X != 400 || tf.Origin.Y != 300 {
		t.Errorf("origin = (%v,%v), want (400,300)", tf.Origin.X, tf.Origin.Y)
	}

	p, err := b.AddPoint("TL", -10, 7.5)
	if err != nil {
		t.Fatal(err)
	}
	s := p.Coord().Screen()
	if s.X != 0 || s.Y != 0 {
		t.Errorf("top-left corner at screen (%v,%v), want (0,0)", s.X, s.Y)
	}
}

func TestDefaultOptions(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	w, h := b.Size()
	if w != 500 || h != 500 {
		t.Errorf("Size = (%v,%v), want (500,500)", w, h)
	}
	p, err := b.AddPoint("O", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	s := p.Coord().Screen()
	if s.X != 250 || s.Y != 250 {
		t.Errorf("user origin at screen (%v,%v), want canvas center (250,250)", s.X, s.Y)
	}
}

func TestDuplicateIDsRejected(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	if _, err := b.AddPoint("A", 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddPoint("A", 1, 1); err == nil {
		t.Error("duplicate point id accepted")
	}
	if _, err := b.AddPoint("B", 1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := b.AddLine("A", "A", "B"); err == nil {
		t.Error("line reusing a point id accepted")
	}
}

func TestAddLineValidatesParents(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	b.AddPoint("A", 0, 0)
	b.AddPoint("B", 2, 2)
	b.AddLine("AB", "A", "B")

	if _, err := b.AddLine("L", "A", "missing"); err == nil {
		t.Error("line with a missing parent accepted")
	}
	if _, err := b.AddLine("L", "A", "AB"); err == nil {
		t.Error("line with a line parent accepted")
	}
	if b.Get("L") != nil {
		t.Error("partial element registered after failed construction")
	}
	if got := b.ElementCount(); got != 3 {
		t.Errorf("ElementCount = %d, want 3", got)
	}
}

func TestTranslatePropagatesToLine(t *testing.T) {
	b, rec := newBoard(t, board.Options{})
	b.AddPoint("A", -2, 0)
	b.AddPoint("B", 2, 0)
	ln, err := b.AddLine("AB", "A", "B")
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Update(); err != nil {
		t.Fatal(err)
	}
	before := ln.StdForm()

	if err := b.TranslatePoint("A", 0, 1); err != nil {
		t.Fatal(err)
	}
	if !ln.NeedsUpdate() {
		t.Fatal("line not marked dirty by a parent move")
	}
	if err := b.Update(); err != nil {
		t.Fatal(err)
	}
	if ln.StdForm() == before {
		t.Error("stdform unchanged after a parent move")
	}
	if ln.NeedsUpdate() {
		t.Error("dirty flag not cleared by the update cycle")
	}

	st := rec.Point("A")
	if st == nil || st.UserY != 1 {
		t.Errorf("recorded point A = %+v, want userY 1", st)
	}
}

func TestTranslateRejectsNonPoint(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	b.AddPoint("A", 0, 0)
	b.AddPoint("B", 1, 1)
	b.AddLine("AB", "A", "B")

	if err := b.TranslatePoint("AB", 1, 0); err == nil {
		t.Error("translating a line accepted")
	}
	if err := b.TranslatePoint("missing", 1, 0); err == nil {
		t.Error("translating a missing element accepted")
	}
}

func TestRemoveRefusesWithDependents(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	b.AddPoint("A", 0, 0)
	b.AddPoint("B", 1, 1)
	b.AddLine("AB", "A", "B")

	err := b.Remove("A")
	if err == nil {
		t.Fatal("removed a point that still anchors a line")
	}
	if !strings.Contains(err.Error(), "dependents") {
		t.Errorf("error = %q, want a dependents message", err)
	}

	if err := b.Remove("AB"); err != nil {
		t.Fatal(err)
	}
	if err := b.Remove("A"); err != nil {
		t.Fatalf("point not removable after its line: %v", err)
	}
	if b.Get("A") != nil || b.Get("AB") != nil {
		t.Error("removed elements still resolvable")
	}
	if got := b.ElementCount(); got != 1 {
		t.Errorf("ElementCount = %d, want 1", got)
	}
	if errs := b.Validate(); len(errs) != 0 {
		t.Errorf("Validate after removal = %v, want none", errs)
	}
}

func TestHitTestFindsLine(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	b.AddPoint("A", -2, 0)
	b.AddPoint("B", 2, 0)
	b.AddLine("AB", "A", "B")
	if err := b.Update(); err != nil {
		t.Fatal(err)
	}

	// The line runs along screen y = 250 on the default canvas.
	hits := b.HitTest(250, 250)
	if len(hits) != 1 || hits[0] != "AB" {
		t.Errorf("HitTest(250,250) = %v, want [AB]", hits)
	}
	if hits := b.HitTest(250, 100); len(hits) != 0 {
		t.Errorf("HitTest(250,100) = %v, want none", hits)
	}
}

func TestSetBoundingBoxReprojects(t *testing.T) {
	b, rec := newBoard(t, board.Options{})
	b.AddPoint("A", 1, 0)
	if err := b.Update(); err != nil {
		t.Fatal(err)
	}
	if got := rec.Point("A").X; got != 300 {
		t.Fatalf("point A at screen x %v, want 300", got)
	}

	// Zoom in to [-2.5,2.5]²: 100 pixels per user unit.
	if err := b.SetBoundingBox([4]float64{-2.5, 2.5, 2.5, -2.5}); err != nil {
		t.Fatal(err)
	}
	if got := rec.Point("A").X; got != 350 {
		t.Errorf("point A at screen x %v after zoom, want 350", got)
	}

	if err := b.SetBoundingBox([4]float64{5, 5, -5, -5}); err == nil {
		t.Error("degenerate bounding box accepted")
	}
}

func TestValidateCleanBoard(t *testing.T) {
	b, _ := newBoard(t, board.Options{})
	b.AddPoint("A", 0, 0)
	b.AddPoint("B", 3, 4)
	b.AddLine("AB", "A", "B")
	ln, _ := b.AddLine("ray", "B", "A")
	ln.SetStraight(true, false)

	if errs := b.Validate(); len(errs) != 0 {
		t.Errorf("Validate = %v, want none", errs)
	}
}

func TestRepaintRedrawsEverything(t *testing.T) {
	b, rec := newBoard(t, board.Options{})
	b.AddPoint("A", 0, 0)
	b.AddPoint("B", 1, 1)
	ln, _ := b.AddLine("AB", "A", "B")
	ln.EnableTicks(1)
	if err := b.Update(); err != nil {
		t.Fatal(err)
	}
	n := len(rec.TickUpdates)

	if err := b.Repaint(); err != nil {
		t.Fatal(err)
	}
	if len(rec.TickUpdates) != n+1 {
		t.Errorf("tick draws = %d after repaint, want %d", len(rec.TickUpdates), n+1)
	}
	if math.IsNaN(rec.Line("AB").X1) {
		t.Error("repaint produced a NaN extent")
	}
}
