package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/geoboard/pkg/board"
	"github.com/chazu/geoboard/pkg/construct"
	"github.com/chazu/geoboard/pkg/element"
	"github.com/chazu/geoboard/pkg/render/record"
)

var (
	evalWidth  float64
	evalHeight float64
)

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate a construction script and print the scene as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

func init() {
	evalCmd.Flags().Float64Var(&evalWidth, "width", 800, "canvas width in pixels")
	evalCmd.Flags().Float64Var(&evalHeight, "height", 600, "canvas height in pixels")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var rec *record.Recorder
	eng := construct.NewEngine(board.Options{
		Width:  evalWidth,
		Height: evalHeight,
	}, func(c element.Canvas) element.Renderer {
		rec = record.New(c)
		return rec
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

	for _, v := range b.Validate() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", v.Error())
	}

	out, err := json.MarshalIndent(rec.Scene(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
