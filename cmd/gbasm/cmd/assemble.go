package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nullterm/gbz80asm/assembler"
)

var outputPath string

var assembleCmd = &cobra.Command{
	Use:   "assemble <source-file>",
	Short: "Assemble a source file into a ROM image (same as the bare root command)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssemble,
}

func init() {
	assembleCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output ROM path (default: source file with a .gb extension)")
	RootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output ROM path (default: source file with a .gb extension)")
}

func runAssemble(_ *cobra.Command, args []string) error {
	cfg := loadConfig()
	source := args[0]
	root := filepath.Dir(source)

	driver := newFileDriver(root, cfg)
	asm := assembler.New(driver.driver())
	asm.BankLimit = cfg.Assembly.BankCount

	_, err := asm.AssembleFile(filepath.Base(source))
	if err != nil {
		if el, ok := err.(assembler.ErrorList); ok {
			for _, e := range el {
				color.New(color.FgRed, color.Bold).Fprintln(os.Stderr, e.Error())
			}
			return fmt.Errorf("assembly failed with %d error(s)", len(el))
		}
		return err
	}

	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(source, filepath.Ext(source)) + ".gb"
	}
	if err := os.WriteFile(out, driver.rom.bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Println(out)
	return nil
}
