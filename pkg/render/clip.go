package render

import (
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/geoboard/pkg/coords"
	"github.com/chazu/geoboard/pkg/element"
)

// clipEps guards parallel-edge divisions during clipping.
const clipEps = 1e-10

// ClipStraight computes where the line's drawn extent meets the visible
// canvas rectangle, in screen space. The first result lies on the p1 side,
// the second on the p2 side. An end whose straight flag is off stays at its
// endpoint instead of being extended to the boundary. ok is false when the
// endpoints coincide or a fully straight line misses the canvas entirely.
func ClipStraight(ln *element.Line, c element.Canvas) (coords.Coordinate, coords.Coordinate, bool) {
	s1 := ln.P1().Coord().Screen()
	s2 := ln.P2().Coord().Screen()
	tf := c.Transform()
	w, h := c.Size()

	dir := s2.Sub(s1)
	if dir.Length() < clipEps {
		return coords.Coordinate{}, coords.Coordinate{}, false
	}

	first, last := ln.Straight()
	ts := edgeCrossings(s1, dir, w, h)

	// tA parameterizes the p1-side end of the drawn extent, tB the p2 side.
	tA, tB := 0.0, 1.0
	if first {
		if len(ts) == 0 {
			return coords.Coordinate{}, coords.Coordinate{}, false
		}
		tA = minOf(ts)
	}
	if last {
		if len(ts) == 0 {
			return coords.Coordinate{}, coords.Coordinate{}, false
		}
		tB = maxOf(ts)
	}

	a := coords.FromScreen(tf, s1.Add(dir.MulScalar(tA)))
	b := coords.FromScreen(tf, s1.Add(dir.MulScalar(tB)))
	return a, b, true
}

// edgeCrossings returns the line parameters t at which s1 + t·dir crosses
// the rectangle [0,w]×[0,h], keeping only crossings that actually lie on the
// rectangle's edges.
func edgeCrossings(s1, dir v2.Vec, w, h float64) []float64 {
	var ts []float64

	if absf(dir.X) > clipEps {
		for _, x := range []float64{0, w} {
			t := (x - s1.X) / dir.X
			y := s1.Y + t*dir.Y
			if y >= -clipEps && y <= h+clipEps {
				ts = append(ts, t)
			}
		}
	}
	if absf(dir.Y) > clipEps {
		for _, y := range []float64{0, h} {
			t := (y - s1.Y) / dir.Y
			x := s1.X + t*dir.X
			if x >= -clipEps && x <= w+clipEps {
				ts = append(ts, t)
			}
		}
	}
	return ts
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
