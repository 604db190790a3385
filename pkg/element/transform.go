package element

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Transform is a 3×3 homogeneous matrix acting on user-space positions.
// Point mutation goes through queued transforms rather than coordinate
// writes, so the sequence of applied moves stays available for replay.
type Transform struct {
	m [3][3]float64
}

// NewTranslation returns a transform moving positions by (dx, dy).
func NewTranslation(dx, dy float64) *Transform {
	return &Transform{m: [3][3]float64{
		{1, 0, dx},
		{0, 1, dy},
		{0, 0, 1},
	}}
}

// NewScaling returns a transform scaling positions about the user origin.
func NewScaling(sx, sy float64) *Transform {
	return &Transform{m: [3][3]float64{
		{sx, 0, 0},
		{0, sy, 0},
		{0, 0, 1},
	}}
}

// NewRotation returns a counterclockwise rotation about the user origin.
// angle is in radians.
func NewRotation(angle float64) *Transform {
	s, c := math.Sincos(angle)
	return &Transform{m: [3][3]float64{
		{c, -s, 0},
		{s, c, 0},
		{0, 0, 1},
	}}
}

// Apply transforms a user-space position.
func (t *Transform) Apply(p v2.Vec) v2.Vec {
	return v2.Vec{
		X: t.m[0][0]*p.X + t.m[0][1]*p.Y + t.m[0][2],
		Y: t.m[1][0]*p.X + t.m[1][1]*p.Y + t.m[1][2],
	}
}

// Melt merges o into t in place so that applying t afterwards is equivalent
// to applying the old t first and then o. Used to collapse successive drag
// translations into one matrix instead of growing the transform queue.
func (t *Transform) Melt(o *Transform) {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				r[i][j] += o.m[i][k] * t.m[k][j]
			}
		}
	}
	t.m = r
}
