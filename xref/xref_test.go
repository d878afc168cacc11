package xref_test

import (
	"strings"
	"testing"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/section"
	"github.com/nullterm/gbz80asm/xref"
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

func TestBuildRecordsDefinitionAndReferences(t *testing.T) {
	src := "SECTION \"Main\", ROM0\n" +
		"Start:\n" +
		"  JR Start\n"
	prog := assemble(t, src)

	entries := xref.Build(prog)
	var start *xref.Entry
	for i := range entries {
		if entries[i].Name == "Start" {
			start = &entries[i]
		}
	}
	if start == nil {
		t.Fatal("expected Start in the cross-reference")
	}
	if len(start.References) != 1 {
		t.Fatalf("expected 1 reference to Start, got %d", len(start.References))
	}
}

func TestUnreferencedFindsDeadLabel(t *testing.T) {
	src := "SECTION \"Main\", ROM0\n" +
		"Used:\n" +
		"  JR Used\n" +
		"Dead:\n" +
		"  NOP\n"
	prog := assemble(t, src)

	entries := xref.Build(prog)
	dead := xref.Unreferenced(entries)
	if len(dead) != 1 || dead[0].Name != "Dead" {
		t.Fatalf("expected only Dead to be unreferenced, got %+v", dead)
	}
}

func TestUnreferencedExemptsExportedLabel(t *testing.T) {
	src := "SECTION \"Main\", ROM0\n" +
		"Entry::\n" +
		"  NOP\n"
	prog := assemble(t, src)

	entries := xref.Build(prog)
	dead := xref.Unreferenced(entries)
	if len(dead) != 0 {
		t.Fatalf("expected exported label to be exempt, got %+v", dead)
	}
}
