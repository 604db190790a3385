package board

import (
	"fmt"

	"github.com/chazu/geoboard/pkg/element"
)

// ValidationError describes a single structural finding on a board.
type ValidationError struct {
	ElementID string
	Message   string
}

func (e ValidationError) Error() string {
	if e.ElementID == "" {
		return e.Message
	}
	return fmt.Sprintf("element %s: %s", e.ElementID, e.Message)
}

// Validate runs structural checks on the board and returns all findings.
// An empty result means the board is structurally sound. Validate is
// read-only and never mutates the board.
//
// Checked invariants:
//   - the id index and the arena agree
//   - dependent handles resolve to live elements
//   - parents precede their dependents in arena order, so one pass of the
//     update cycle sees parents refreshed before dependents
func (b *Board) Validate() []ValidationError {
	var errs []ValidationError

	for id, h := range b.byID {
		if int(h) < 0 || int(h) >= len(b.elements) || b.elements[h] == nil {
			errs = append(errs, ValidationError{
				ElementID: id,
				Message:   fmt.Sprintf("index entry points at dead handle %d", int(h)),
			})
			continue
		}
		if b.elements[h].ID() != id {
			errs = append(errs, ValidationError{
				ElementID: id,
				Message:   fmt.Sprintf("index entry resolves to element %q", b.elements[h].ID()),
			})
		}
	}

	for h, el := range b.elements {
		if el == nil {
			continue
		}
		for _, d := range el.Dependents() {
			if int(d) < 0 || int(d) >= len(b.elements) || b.elements[d] == nil {
				errs = append(errs, ValidationError{
					ElementID: el.ID(),
					Message:   fmt.Sprintf("dependent handle %d does not resolve", int(d)),
				})
				continue
			}
			if int(d) <= h {
				errs = append(errs, ValidationError{
					ElementID: el.ID(),
					Message: fmt.Sprintf("dependent %q does not follow its parent in update order",
						b.elements[d].ID()),
				})
			}
		}
		if ln, ok := el.(*element.Line); ok {
			for _, p := range []*element.Point{ln.P1(), ln.P2()} {
				if b.Get(p.ID()) == nil {
					errs = append(errs, ValidationError{
						ElementID: el.ID(),
						Message:   fmt.Sprintf("parent point %q is not registered", p.ID()),
					})
				}
			}
		}
	}

	return errs
}
