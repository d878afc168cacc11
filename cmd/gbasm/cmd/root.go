// Package cmd wires gbasm's cobra command tree: a root command that
// assembles its single argument directly (mirroring the teacher's
// bare-flag-driven main.go entry point), an explicit "assemble" alias
// for scripts that prefer a named subcommand, and a "symbols" dump
// subcommand. Grounded on Manu343726-cucaracha's cmd/root.go tree shape.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cfgPath string

var RootCmd = &cobra.Command{
	Use:   "gbasm <source-file>",
	Short: "Assemble LR35902 source into a Game Boy ROM image",
	Long: `gbasm turns LR35902 assembly source into a raw Game Boy ROM image.

It understands SECTION/DB/DW/DS/EQU/DEF/INCLUDE directives, two-pass
forward-reference resolution, and the LR35902's full instruction set
including its Z80-incompatible load forms (LD (HL+),A and friends).`,
	Args: cobra.ExactArgs(1),
	RunE: runAssemble,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to gbasm config.toml (default: platform config dir)")
	RootCmd.AddCommand(assembleCmd)
	RootCmd.AddCommand(symbolsCmd)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString(format, args...))
	os.Exit(1)
}
