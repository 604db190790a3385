package main

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/chazu/geoboard/pkg/board"
	"github.com/chazu/geoboard/pkg/construct"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render/term"
)

var viewPoint string

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Render a construction script interactively in the terminal",
	Long: `view evaluates the script and renders the board into the terminal,
one board pixel per cell. The arrow keys drag the selected point; q or
Escape quits.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewPoint, "point", "A", "point dragged by the arrow keys")
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	w, h := screen.Size()
	var rend *term.Renderer
	eng := construct.NewEngine(board.Options{
		Width:  float64(w),
		Height: float64(h),
	}, func(c element.Canvas) element.Renderer {
		rend = term.New(screen, c)
		return rend
	})

	b, evalErrs, err := eng.Evaluate(string(source))
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		return fmt.Errorf("%d evaluation error(s)", len(evalErrs))
	}
	rend.Flush()

	repaint := func() error {
		rend.Clear()
		if err := b.Repaint(); err != nil {
			return err
		}
		rend.Flush()
		return nil
	}

	// One drag step is a tenth of a user unit per key press.
	const step = 0.1
	move := func(dx, dy float64) error {
		if err := b.TranslatePoint(viewPoint, dx, dy); err != nil {
			// The --point flag may name a missing point; ignore the key.
			return nil
		}
		return repaint()
	}

	for {
		var err error
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
			err = repaint()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyUp:
				err = move(0, step)
			case ev.Key() == tcell.KeyDown:
				err = move(0, -step)
			case ev.Key() == tcell.KeyLeft:
				err = move(-step, 0)
			case ev.Key() == tcell.KeyRight:
				err = move(step, 0)
			}
		}
		if err != nil {
			return err
		}
	}
}
