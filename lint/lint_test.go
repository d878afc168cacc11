package lint_test

import (
	"strings"
	"testing"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/lint"
	"github.com/nullterm/gbz80asm/section"
)

func assemble(t *testing.T, src string) *assembler.Program {
	t.Helper()
	asm := assembler.New(assembler.Driver{
		Load: func(path string) ([]assembler.SourceLine, error) {
			var out []assembler.SourceLine
			for i, l := range strings.Split(src, "\n") {
				out = append(out, assembler.SourceLine{Number: i + 1, Text: l})
			}
			return out, nil
		},
		WriteSection: func(string, section.Region, int, uint32, []byte) {},
		Report:       func(assembler.Severity, string, int, string) {},
	})
	prog, err := asm.AssembleFile("main.asm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return prog
}

func TestLintFlagsUnusedLabel(t *testing.T) {
	prog := assemble(t, "SECTION \"Main\", ROM0\nDead:\n  NOP\n")
	issues := lint.Lint(prog, nil)
	if len(issues) != 1 || issues[0].Code != "UNUSED_LABEL" {
		t.Fatalf("expected one UNUSED_LABEL issue, got %+v", issues)
	}
}

func TestLintIgnoresUsedLabel(t *testing.T) {
	prog := assemble(t, "SECTION \"Main\", ROM0\nLoop:\n  JR Loop\n")
	issues := lint.Lint(prog, nil)
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestLintDisabledCheckProducesNoIssues(t *testing.T) {
	prog := assemble(t, "SECTION \"Main\", ROM0\nDead:\n  NOP\n")
	issues := lint.Lint(prog, &lint.Options{CheckUnusedLabels: false})
	if len(issues) != 0 {
		t.Fatalf("expected no issues with checks disabled, got %+v", issues)
	}
}
