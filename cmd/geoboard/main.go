package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "geoboard",
	Short: "A CLI for evaluating and viewing geometric construction scripts",
	Long: `geoboard evaluates Lisp construction scripts into interactive geometry
boards. Scripts place points, draw lines and segments through them, and
configure ticks and straightness; the result can be exported as scene JSON
or viewed directly in the terminal.`,
	Version: "0.1.0",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
