package construct

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/geoboard/pkg/board"
	"github.com/chazu/geoboard/pkg/element"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms construction source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: bounding-box -> bounding_box
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters (not a
		// minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpElemRef wraps a board element id so builtins can pass elements to one
// another.
type sexpElemRef struct {
	id string
}

func (r *sexpElemRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(elem %q)", r.id)
}
func (r *sexpElemRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks whether a Sexp is a preprocessed keyword string, returning the
// keyword name without the prefix.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toElemID extracts an element id from either an element reference or a
// plain name string.
func toElemID(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpElemRef:
		return v.id, nil
	case *zygo.SexpStr:
		if !strings.HasPrefix(v.S, kwPrefix) {
			return v.S, nil
		}
	}
	return "", fmt.Errorf("expected element reference or name, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the construction DSL builtins into a zygomys
// environment. The builtins populate the provided board during evaluation.
//
// Source code must be preprocessed with preprocessSource() first so that
// :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *board.Board) {

	// -----------------------------------------------------------------------
	// (bounding-box xmin ymax xmax ymin)
	// -----------------------------------------------------------------------
	env.AddFunction("bounding_box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("bounding-box requires 4 numbers, got %d args", len(args))
		}
		var bbox [4]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("bounding-box: arg %d: %w", i+1, err)
			}
			bbox[i] = f
		}
		if err := b.SetBoundingBox(bbox); err != nil {
			return zygo.SexpNull, err
		}
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (point "A" 1 2)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("point requires a name and two coordinates")
		}
		id, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: name: %w", err)
		}
		x, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point %q: x: %w", id, err)
		}
		y, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point %q: y: %w", id, err)
		}
		if _, err := b.AddPoint(id, x, y); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpElemRef{id: id}, nil
	})

	// lineFromArgs implements both `line` and `segment`.
	lineFromArgs := func(form string, straight bool, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("%s requires a name and two parent points", form)
		}
		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: name: %w", form, err)
		}
		p1, err := toElemID(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: first parent: %w", form, id, err)
		}
		p2, err := toElemID(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s %q: second parent: %w", form, id, err)
		}

		ln, err := b.AddLine(id, p1, p2)
		if err != nil {
			return zygo.SexpNull, err
		}
		first, last := straight, straight
		if v, ok := pa.kw["straight-first"]; ok {
			if first, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: straight-first: %w", form, id, err)
			}
		}
		if v, ok := pa.kw["straight-last"]; ok {
			if last, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: straight-last: %w", form, id, err)
			}
		}
		ln.SetStraight(first, last)
		if v, ok := pa.kw["ticks"]; ok {
			delta, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s %q: ticks: %w", form, id, err)
			}
			if err := ln.EnableTicks(delta); err != nil {
				return zygo.SexpNull, err
			}
		}
		return &sexpElemRef{id: id}, nil
	}

	// -----------------------------------------------------------------------
	// (line "AB" "A" "B" :straight-first true :straight-last true :ticks 1.0)
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return lineFromArgs("line", true, args)
	})

	// -----------------------------------------------------------------------
	// (segment "s" "A" "B"), a line bounded at both endpoints
	// -----------------------------------------------------------------------
	env.AddFunction("segment", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return lineFromArgs("segment", false, args)
	})

	// -----------------------------------------------------------------------
	// (translate "A" 1 -2)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("translate requires a point and two offsets")
		}
		id, err := toElemID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		dx, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate %q: dx: %w", id, err)
		}
		dy, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate %q: dy: %w", id, err)
		}
		if err := b.TranslatePoint(id, dx, dy); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpElemRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (straight "AB" true false)
	// -----------------------------------------------------------------------
	env.AddFunction("straight", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("straight requires a line and two flags")
		}
		ln, err := lookupLine(b, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: %w", err)
		}
		first, err := toBool(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: first: %w", err)
		}
		last, err := toBool(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: last: %w", err)
		}
		ln.SetStraight(first, last)
		return &sexpElemRef{id: ln.ID()}, nil
	})

	// -----------------------------------------------------------------------
	// (ticks "AB" 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("ticks", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("ticks requires a line and a spacing")
		}
		ln, err := lookupLine(b, args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ticks: %w", err)
		}
		delta, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ticks: spacing: %w", err)
		}
		if err := ln.EnableTicks(delta); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpElemRef{id: ln.ID()}, nil
	})

	// -----------------------------------------------------------------------
	// (style "AB" :stroke-color "#e67e22" :stroke-width 3 :dash 1)
	// -----------------------------------------------------------------------
	env.AddFunction("style", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("style requires an element")
		}
		id, err := toElemID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("style: %w", err)
		}
		el := b.Get(id)
		if el == nil {
			return zygo.SexpNull, fmt.Errorf("style: no element named %q", id)
		}
		styled, ok := el.(interface {
			Style() element.Style
			SetStyle(element.Style)
		})
		if !ok {
			return zygo.SexpNull, fmt.Errorf("style: element %q is not stylable", id)
		}
		st := styled.Style()
		if v, ok := pa.kw["stroke-color"]; ok {
			if st.StrokeColor, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("style %q: stroke-color: %w", id, err)
			}
		}
		if v, ok := pa.kw["stroke-width"]; ok {
			w, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("style %q: stroke-width: %w", id, err)
			}
			st.StrokeWidth = w
		}
		if v, ok := pa.kw["dash"]; ok {
			d, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("style %q: dash: %w", id, err)
			}
			st.Dash = int(d)
		}
		styled.SetStyle(st)
		el.MarkDirty()
		return &sexpElemRef{id: id}, nil
	})
}

// lookupLine resolves an argument to a line element.
func lookupLine(b *board.Board, s zygo.Sexp) (*element.Line, error) {
	id, err := toElemID(s)
	if err != nil {
		return nil, err
	}
	el := b.Get(id)
	if el == nil {
		return nil, fmt.Errorf("no element named %q", id)
	}
	ln, ok := el.(*element.Line)
	if !ok {
		return nil, fmt.Errorf("element %q is not a line", id)
	}
	return ln, nil
}
