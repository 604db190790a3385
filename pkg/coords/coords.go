// Package coords provides the dual-space coordinate value used by all board
// elements. A Coordinate carries the same position in user (logical) space and
// screen (device pixel) space, together with the Transform snapshot that links
// the two, so the representations cannot drift apart.
package coords

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Transform maps user-space positions to screen-space pixels.
// Origin is the screen position of the user-space origin; UnitX and UnitY are
// pixels per user unit on each axis. Screen Y grows downward, so user Y is
// negated during conversion.
type Transform struct {
	Origin v2.Vec  // screen pixels of user (0,0)
	UnitX  float64 // pixels per user unit, x axis
	UnitY  float64 // pixels per user unit, y axis
}

// Identity returns a 1:1 transform with the user origin at screen (0,0).
func Identity() Transform {
	return Transform{UnitX: 1, UnitY: 1}
}

// ToScreen converts a user-space position to screen pixels.
func (t Transform) ToScreen(u v2.Vec) v2.Vec {
	return v2.Vec{
		X: t.Origin.X + u.X*t.UnitX,
		Y: t.Origin.Y - u.Y*t.UnitY,
	}
}

// ToUser converts a screen-space position to user coordinates.
func (t Transform) ToUser(s v2.Vec) v2.Vec {
	return v2.Vec{
		X: (s.X - t.Origin.X) / t.UnitX,
		Y: (t.Origin.Y - s.Y) / t.UnitY,
	}
}

// Coordinate is an immutable dual-space position. Both representations are
// consistent for the Transform snapshot held inside; obtaining a position
// under a new transform requires WithTransform, never mutation.
type Coordinate struct {
	usr v2.Vec
	scr v2.Vec
	tf  Transform
}

// FromUser builds a Coordinate from a user-space position.
func FromUser(tf Transform, u v2.Vec) Coordinate {
	return Coordinate{usr: u, scr: tf.ToScreen(u), tf: tf}
}

// FromScreen builds a Coordinate from a screen-space position.
func FromScreen(tf Transform, s v2.Vec) Coordinate {
	return Coordinate{usr: tf.ToUser(s), scr: s, tf: tf}
}

// User returns the user-space position.
func (c Coordinate) User() v2.Vec { return c.usr }

// Screen returns the screen-space position.
func (c Coordinate) Screen() v2.Vec { return c.scr }

// Transform returns the transform snapshot this Coordinate was derived under.
func (c Coordinate) Transform() Transform { return c.tf }

// WithTransform re-derives the screen representation under a new transform,
// keeping the user-space position.
func (c Coordinate) WithTransform(tf Transform) Coordinate {
	return FromUser(tf, c.usr)
}

// IsReal reports whether the user-space position is finite. Degenerate
// constructions produce NaN coordinates; those are "not real" and downstream
// rendering hides the element instead of drawing garbage.
func (c Coordinate) IsReal() bool {
	return !math.IsNaN(c.usr.X) && !math.IsNaN(c.usr.Y) &&
		!math.IsInf(c.usr.X, 0) && !math.IsInf(c.usr.Y, 0)
}

// ScreenDistance returns the screen-space Euclidean distance between two
// coordinates.
func ScreenDistance(a, b Coordinate) float64 {
	return a.scr.Sub(b.scr).Length()
}

// UserDistance returns the user-space Euclidean distance between two
// coordinates.
func UserDistance(a, b Coordinate) float64 {
	return a.usr.Sub(b.usr).Length()
}
