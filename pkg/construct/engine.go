// Package construct provides the Lisp construction engine for geoboard.
// It wraps zygomys in a sandboxed environment and produces a populated
// Board from user source code.
package construct

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/geoboard/pkg/board"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for construction scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and a fresh board for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	opts    board.Options
	factory board.RendererFactory
}

// NewEngine creates an Engine. Every evaluation builds its board with the
// given options and renderer factory.
func NewEngine(opts board.Options, factory board.RendererFactory) *Engine {
	return &Engine{opts: opts, factory: factory}
}

// Evaluate takes Lisp source code and produces a freshly constructed board.
//
// Return semantics:
//   - On success: board + nil errors + nil error
//   - On parse/eval failure: nil board + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*board.Board, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		b, evalErrs, err := e.evaluate(source)
		ch <- evalResult{board: b, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*board.Board, []EvalError, error) {
	b := board.New(e.opts, e.factory)

	// Empty source is a valid program that produces an empty board.
	if strings.TrimSpace(source) == "" {
		return b, nil, nil
	}

	// Sandbox mode prevents user code from reaching the filesystem or
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, b)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygoError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygoError(err), nil
	}

	// One host-driven cycle so the evaluated board carries fully derived
	// state (standard forms, ticks, renderer output).
	if err := b.Update(); err != nil {
		return nil, nil, err
	}
	board.Logger().Debug("construction evaluated", "elements", b.ElementCount())
	return b, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygoError converts a zygomys error into one or more EvalError values,
// extracting line numbers from the message where possible.
func parseZygoError(err error) []EvalError {
	msg := err.Error()

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
