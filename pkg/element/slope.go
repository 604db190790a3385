package element

// Slope is the tagged result of a screen-space slope computation: either a
// finite value or vertical. Callers must branch on Vertical before using the
// value, which keeps sentinel arithmetic out of the hit-test and accessors.
type Slope struct {
	vertical bool
	v        float64
}

// FiniteSlope returns a finite slope value.
func FiniteSlope(v float64) Slope { return Slope{v: v} }

// VerticalSlope returns the vertical marker.
func VerticalSlope() Slope { return Slope{vertical: true} }

// Vertical reports whether the slope is vertical.
func (s Slope) Vertical() bool { return s.vertical }

// Value returns the finite slope. Only meaningful when Vertical is false;
// for a vertical slope it returns 0.
func (s Slope) Value() float64 {
	if s.vertical {
		return 0
	}
	return s.v
}
