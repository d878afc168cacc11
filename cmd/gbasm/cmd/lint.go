package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/lint"
	"github.com/nullterm/gbz80asm/xref"
)

var lintCmd = &cobra.Command{
	Use:   "lint <source-file>",
	Short: "Assemble a source file and report unused labels and similar findings",
	Args:  cobra.ExactArgs(1),
	RunE:  runLint,
}

var xrefCmd = &cobra.Command{
	Use:   "xref <source-file>",
	Short: "Assemble a source file and print a symbol cross-reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runXref,
}

func init() {
	RootCmd.AddCommand(lintCmd)
	RootCmd.AddCommand(xrefCmd)
}

func assembleForTooling(source string) (*assembler.Program, error) {
	cfg := loadConfig()
	root := filepath.Dir(source)
	driver := newFileDriver(root, cfg)
	asm := assembler.New(driver.driver())
	asm.BankLimit = cfg.Assembly.BankCount
	return asm.AssembleFile(filepath.Base(source))
}

func runLint(_ *cobra.Command, args []string) error {
	prog, err := assembleForTooling(args[0])
	if err != nil {
		return err
	}
	issues := lint.Lint(prog, nil)
	for _, issue := range issues {
		fmt.Println(issue.String())
	}
	if len(issues) > 0 {
		return fmt.Errorf("%d lint issue(s) found", len(issues))
	}
	return nil
}

func runXref(_ *cobra.Command, args []string) error {
	prog, err := assembleForTooling(args[0])
	if err != nil {
		return err
	}
	for _, e := range xref.Build(prog) {
		fmt.Printf("%-28s %-14s $%04X  %d reference(s)\n", e.Name, e.Kind, e.Value, len(e.References))
	}
	return nil
}
