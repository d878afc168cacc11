// Package cmd is gbinspect's cobra entry point: it assembles the given
// source file the same way gbasm does, then hands the resulting
// assembler.Program to a read-only tview browser instead of writing a
// ROM image.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/asmconfig"
	"github.com/nullterm/gbz80asm/cmd/gbinspect/tui"
	"github.com/nullterm/gbz80asm/section"
)

var RootCmd = &cobra.Command{
	Use:   "gbinspect <source-file>",
	Short: "Browse an assembled program's sections and symbols in a TUI",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInspect(_ *cobra.Command, args []string) error {
	cfg, err := asmconfig.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	source := args[0]
	root := filepath.Dir(source)

	var reports []string
	asm := assembler.New(assembler.Driver{
		Load: func(path string) ([]assembler.SourceLine, error) {
			full := path
			if !filepath.IsAbs(full) {
				full = filepath.Join(root, path)
			}
			data, err := os.ReadFile(full) // #nosec G304 -- path comes from the assembled program's own INCLUDE directives
			if err != nil {
				return nil, err
			}
			var lines []assembler.SourceLine
			for i, text := range tui.SplitLines(string(data)) {
				lines = append(lines, assembler.SourceLine{Number: i + 1, Text: text})
			}
			return lines, nil
		},
		WriteSection: func(name string, region section.Region, bank int, base uint32, bytes []byte) {},
		Report: func(sev assembler.Severity, file string, line int, message string) {
			reports = append(reports, fmt.Sprintf("%s:%d: %s", file, line, message))
		},
	})
	asm.BankLimit = cfg.Assembly.BankCount

	prog, err := asm.AssembleFile(filepath.Base(source))
	if err != nil {
		return err
	}

	return tui.Run(prog, reports)
}
