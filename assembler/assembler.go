package assembler

import (
	"strings"

	"github.com/nullterm/gbz80asm/expr"
	"github.com/nullterm/gbz80asm/fixup"
	"github.com/nullterm/gbz80asm/lexer"
	"github.com/nullterm/gbz80asm/opcodes"
	"github.com/nullterm/gbz80asm/section"
	"github.com/nullterm/gbz80asm/symtab"
)

// conditionalMnemonics accept a leading condition code as their first
// operand (spec.md §4.6: "Condition codes are positional").
var conditionalMnemonics = map[string]bool{"JP": true, "JR": true, "CALL": true, "RET": true}

// Program is the result of one successful assembly run: every populated
// section plus the final symbol table, for the driver's write_section
// loop and for tooling that wants a cross-reference listing.
type Program struct {
	Sections *section.Registry
	Symbols  *symtab.Table
}

// SymbolRow is one line of a symbol cross-reference dump (SPEC_FULL.md's
// supplemented symbol-listing feature).
type SymbolRow struct {
	Name  string
	Kind  string
	Value int64
}

// DumpSymbols returns every defined symbol, sorted by name, for
// cmd/gbasm's `symbols` subcommand and cmd/gbinspect's browser.
func (p *Program) DumpSymbols() []SymbolRow {
	var rows []SymbolRow
	for key, sym := range p.Symbols.All() {
		if sym == nil {
			continue
		}
		rows = append(rows, SymbolRow{Name: key, Kind: sym.Kind.String(), Value: sym.Value})
	}
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j].Name < rows[j-1].Name; j-- {
			rows[j], rows[j-1] = rows[j-1], rows[j]
		}
	}
	return rows
}

// Assembler runs the two-pass pipeline of spec.md §4.5-§4.8 over a
// driver-supplied source tree.
type Assembler struct {
	driver       Driver
	symbols      *symtab.Table
	sections     *section.Registry
	includeStack []string

	// BankLimit bounds the bank number a SECTION ..., ROMX, BANK[n]
	// directive may declare: n must satisfy 0 <= n < BankLimit. Zero
	// (the zero value) means no limit is enforced; callers that want one
	// set it from asmconfig.Config.Assembly.BankCount after New.
	BankLimit int
}

// New creates an Assembler bound to the given driver, with no bank limit.
func New(driver Driver) *Assembler {
	return &Assembler{
		driver:   driver,
		symbols:  symtab.New(),
		sections: section.New(),
	}
}

// AssembleFile runs the whole pipeline over path: loads it (and every
// file it transitively INCLUDEs) through the driver, processes every
// line, then resolves fixups. On success it invokes WriteSection once
// per section that emitted bytes (sections that only reserved space are
// not written), and returns the finished Program.
func (a *Assembler) AssembleFile(path string) (*Program, error) {
	if err := a.processFile(path); err != nil {
		return nil, err
	}
	if err := fixup.Resolve(a.sections); err != nil {
		if el, ok := err.(fixup.ErrorList); ok {
			var out ErrorList
			for _, fe := range el {
				out = append(out, newError(lexer.Position{File: fe.Pos.File, Line: fe.Pos.Line, Col: fe.Pos.Col}, Semantic, "%s", fe.Message))
			}
			return nil, out
		}
		return nil, newError(lexer.Position{}, Semantic, "%s", err.Error())
	}

	for _, sec := range a.sections.All() {
		if len(sec.Bytes) == 0 {
			continue
		}
		a.driver.WriteSection(sec.Name, sec.Region, sec.Bank, sec.Base, sec.Bytes)
	}

	return &Program{Sections: a.sections, Symbols: a.symbols}, nil
}

func (a *Assembler) processFile(path string) error {
	for _, included := range a.includeStack {
		if included == path {
			return newError(lexer.Position{File: path}, Semantic, "recursive include of %q", path)
		}
	}
	lines, err := a.driver.Load(path)
	if err != nil {
		return newError(lexer.Position{File: path}, DriverFailure, "%s", err.Error())
	}

	a.includeStack = append(a.includeStack, path)
	defer func() { a.includeStack = a.includeStack[:len(a.includeStack)-1] }()

	for _, line := range lines {
		if err := a.processLine(path, line); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) processLine(file string, line SourceLine) error {
	toks := lexer.New(line.Text, file).TokenizeAll()
	// Re-stamp line numbers: the lexer only knows about the single line
	// of text it was given, so its own line counter is always 1.
	for i := range toks {
		toks[i].Pos.Line = line.Number
	}

	var filtered []lexer.Token
	for _, t := range toks {
		if t.Kind == lexer.Newline || t.Kind == lexer.EOF || t.Kind == lexer.Comment {
			continue
		}
		filtered = append(filtered, t)
	}
	if len(filtered) == 0 {
		return nil
	}

	pos := filtered[0].Pos

	// Label definition: IDENT (":" | "::") prefix.
	if filtered[0].Kind == lexer.Ident && len(filtered) > 1 &&
		(filtered[1].Kind == lexer.Colon || filtered[1].Kind == lexer.DoubleColon) {
		name := filtered[0].Text
		exported := filtered[1].Kind == lexer.DoubleColon
		if err := a.defineLabel(name, exported, pos); err != nil {
			return err
		}
		filtered = filtered[2:]
		if len(filtered) == 0 {
			return nil
		}
		pos = filtered[0].Pos
	}

	// "name EQU expr" -- a constant definition with no label colon.
	if filtered[0].Kind == lexer.Ident && len(filtered) > 1 &&
		filtered[1].Kind == lexer.Directive && strings.ToUpper(filtered[1].Text) == "EQU" {
		return a.defineConstant(filtered[0].Text, filtered[2:], pos)
	}
	// "DEF name EQU expr" -- the same thing, spelled as its own directive.
	if filtered[0].Kind == lexer.Directive && strings.ToUpper(filtered[0].Text) == "DEF" {
		if len(filtered) < 3 || filtered[1].Kind != lexer.Ident ||
			filtered[2].Kind != lexer.Directive || strings.ToUpper(filtered[2].Text) != "EQU" {
			return newError(pos, Syntactic, "expected DEF name EQU expr")
		}
		return a.defineConstant(filtered[1].Text, filtered[3:], pos)
	}

	switch filtered[0].Kind {
	case lexer.Directive:
		return a.processDirective(file, strings.ToUpper(filtered[0].Text), filtered[1:], pos)
	case lexer.Ident:
		mnemonic := strings.ToUpper(filtered[0].Text)
		if opcodes.KnownMnemonic(mnemonic) {
			return a.processInstruction(mnemonic, filtered[1:], pos)
		}
		return newError(pos, Syntactic, "expected a directive or instruction, found %q", filtered[0].Text)
	default:
		return newError(pos, Syntactic, "unexpected token %s", filtered[0].Kind)
	}
}

func (a *Assembler) defineLabel(name string, exported bool, pos lexer.Position) error {
	if !symtab.ValidName(strings.TrimPrefix(name, ".")) {
		return newError(pos, Semantic, "invalid symbol name %q", name)
	}
	sec := a.sections.Current()
	if sec == nil {
		return newError(pos, Semantic, "label %q defined before any SECTION directive", name)
	}
	kind := symtab.Label
	if err := a.symbols.Define(name, kind, int64(sec.IP()), pos); err != nil {
		return newError(pos, Semantic, "%s", err.Error())
	}
	if exported {
		_ = a.symbols.MarkExported(name)
	}
	return nil
}

// lookupFor builds an expr.Lookup bound to pos, so every symbol
// reference inside one expression is recorded against the same source
// location and any qualification error surfaces through errOut.
func (a *Assembler) lookupFor(pos lexer.Position, errOut **Error) expr.Lookup {
	return func(name string) (int64, bool) {
		v, ok, err := a.symbols.Reference(name, pos)
		if err != nil && *errOut == nil {
			*errOut = newError(pos, Semantic, "%s", err.Error())
		}
		return v, ok
	}
}
