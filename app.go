package main

import (
	"context"

	"github.com/chazu/geoboard/pkg/board"
	"github.com/chazu/geoboard/pkg/construct"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render/record"
)

// canvasWidth and canvasHeight match the drawing surface in the frontend.
const (
	canvasWidth  = 800
	canvasHeight = 600
)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	engine *construct.Engine

	// Last successful evaluation, kept for pointer interaction.
	board *board.Board
	rec   *record.Recorder
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result returned to the frontend.
type EvalResult struct {
	Scene  record.Scene    `json:"scene"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates a new App with a construction engine recording into scenes.
func NewApp() *App {
	a := &App{}
	a.engine = construct.NewEngine(board.Options{
		BoundingBox: [4]float64{-10, 7.5, 10, -7.5},
		Width:       canvasWidth,
		Height:      canvasHeight,
	}, func(c element.Canvas) element.Renderer {
		return record.New(c)
	})
	return a
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes construction source and returns the drawn scene + errors.
// This is the primary binding called by the frontend editor.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{Errors: []EvalErrorData{}}

	b, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded).
		board.Logger().Warn("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	// Swap board and recorder together, and only on success, so pointer
	// interaction always exports the scene of the board it hit-tests.
	a.board = b
	a.rec = b.Renderer().(*record.Recorder)
	result.Scene = a.rec.Scene()
	return result
}

// PointerDown hit-tests the last evaluated board at a screen position and
// returns the ids of all elements under the pointer.
func (a *App) PointerDown(x, y float64) []string {
	if a.board == nil {
		return []string{}
	}
	hits := a.board.HitTest(x, y)
	if hits == nil {
		hits = []string{}
	}
	return hits
}

// DragPoint translates a point by a user-space offset, reruns the update
// cycle and returns the refreshed scene.
func (a *App) DragPoint(id string, dx, dy float64) EvalResult {
	result := EvalResult{Errors: []EvalErrorData{}}
	if a.board == nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: "no board evaluated yet"})
		return result
	}
	if err := a.board.TranslatePoint(id, dx, dy); err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if err := a.board.Update(); err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	result.Scene = a.rec.Scene()
	return result
}
