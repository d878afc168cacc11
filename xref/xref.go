// Package xref builds a per-symbol cross-reference report from a
// finished assembler.Program: where each symbol was defined and every
// position it was referenced from. Grounded on the teacher's
// tools/xref.go Reference/Symbol model (a definition slot plus an
// ordered slice of reference sites per name), adapted from the
// teacher's own from-scratch token walk over branch/load/store/call
// operands to a direct read of symtab.Symbol.Uses, since this dialect's
// symbol table already records every reference site itself.
package xref

import (
	"sort"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/lexer"
)

// Entry is one symbol's full cross-reference: its definition site and
// every position it was referenced from. Build only runs over a
// Program that finished assembling successfully, so every entry here
// is by construction a defined symbol -- an assembly with any symbol
// left undefined would already have failed in the fixup pass.
type Entry struct {
	Name       string
	Kind       string
	Value      int64
	DefinedAt  lexer.Position
	References []lexer.Position
}

// Build returns one Entry per symbol in prog, sorted by name.
func Build(prog *assembler.Program) []Entry {
	var out []Entry
	for name, sym := range prog.Symbols.All() {
		out = append(out, Entry{
			Name:       name,
			Kind:       sym.Kind.String(),
			Value:      sym.Value,
			DefinedAt:  sym.DefinedAt,
			References: sym.Uses,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Unreferenced returns every non-exported label in entries that was
// never used -- dead code a human likely meant to remove or call
// (spec.md §4.3 distinguishes exported labels precisely because they
// are meant to be referenced from outside this translation unit, so
// they are exempt).
func Unreferenced(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Kind == "label" && len(e.References) == 0 {
			out = append(out, e)
		}
	}
	return out
}
