// Package render provides the renderer backends for the board. The element
// package defines the Renderer capability; implementations here translate
// element state into an output medium (recorded scene data, terminal cells).
// The straight-line viewport clipping shared by all backends lives in this
// package root.
package render
