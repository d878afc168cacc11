package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nullterm/gbz80asm/assembler"
)

var symbolsFormat string

var symbolsCmd = &cobra.Command{
	Use:   "symbols <source-file>",
	Short: "Assemble a source file and print its symbol table",
	Args:  cobra.ExactArgs(1),
	RunE:  runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVar(&symbolsFormat, "format", "text", "output format: text, yaml")
}

func runSymbols(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	source := args[0]
	root := filepath.Dir(source)

	driver := newFileDriver(root, cfg)
	asm := assembler.New(driver.driver())
	asm.BankLimit = cfg.Assembly.BankCount

	prog, err := asm.AssembleFile(filepath.Base(source))
	if err != nil {
		return err
	}

	rows := prog.DumpSymbols()
	switch symbolsFormat {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(rows)
	default:
		for _, r := range rows {
			fmt.Printf("%-30s %-14s $%04X\n", r.Name, r.Kind, r.Value)
		}
		return nil
	}
}
