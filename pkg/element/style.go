package element

// Style holds the visual attributes of an element. It is a plain value type:
// snapshots taken for tracing are copies, so later style edits cannot reach
// back into an already-traced image.
type Style struct {
	StrokeColor string  `json:"strokeColor"`
	StrokeWidth float64 `json:"strokeWidth"`
	Dash        int     `json:"dash"`    // dash pattern index, 0 = solid
	Opacity     float64 `json:"opacity"` // 0..1
}

// DefaultStyle returns the style new elements start with.
func DefaultStyle() Style {
	return Style{
		StrokeColor: "#0072b2",
		StrokeWidth: 2,
		Opacity:     1,
	}
}
