package assembler

import (
	"strings"

	"github.com/nullterm/gbz80asm/lexer"
	"github.com/nullterm/gbz80asm/section"
	"github.com/nullterm/gbz80asm/symtab"
)

// processDirective dispatches one of the five directives of spec.md §4.5
// that aren't the EQU/DEF constant form (handled in the caller, since
// it can also appear without a leading directive token).
func (a *Assembler) processDirective(file, name string, args []lexer.Token, pos lexer.Position) error {
	switch name {
	case "SECTION":
		return a.doSection(args, pos)
	case "DB":
		return a.doData(args, pos, 1)
	case "DW":
		return a.doData(args, pos, 2)
	case "DS":
		return a.doReserve(args, pos)
	case "INCLUDE":
		return a.doInclude(file, args, pos)
	default:
		return newError(pos, Syntactic, "unexpected directive %q here", name)
	}
}

func (a *Assembler) defineConstant(name string, exprToks []lexer.Token, pos lexer.Position) error {
	if len(exprToks) == 0 {
		return newError(pos, Syntactic, "EQU requires a value")
	}
	var lookupErr *Error
	value, resolved, symbol, err := evalExpr(exprToks, pos, a.lookupFor(pos, &lookupErr))
	if err != nil {
		return err
	}
	if lookupErr != nil {
		return lookupErr
	}
	if !resolved {
		return newError(pos, Semantic, "forward reference to %q is not allowed in EQU", symbol)
	}
	if err := a.symbols.Define(name, symtab.Constant, value, pos); err != nil {
		return newError(pos, Semantic, "%s", err.Error())
	}
	return nil
}

func (a *Assembler) doSection(args []lexer.Token, pos lexer.Position) error {
	if len(args) < 3 || args[0].Kind != lexer.String || args[1].Kind != lexer.Comma || args[2].Kind != lexer.Ident {
		return newError(pos, Syntactic, "expected SECTION \"name\", REGION[, BANK[n]]")
	}
	name := args[0].Text
	region, ok := section.ParseRegion(strings.ToUpper(args[2].Text))
	if !ok {
		return newError(pos, Semantic, "unknown section region %q", args[2].Text)
	}
	bank := 0
	rest := args[3:]
	if len(rest) > 0 {
		if rest[0].Kind != lexer.Comma {
			return newError(pos, Syntactic, "expected ',' before BANK[n]")
		}
		rest = rest[1:]
		if len(rest) < 4 || rest[0].Kind != lexer.Ident || strings.ToUpper(rest[0].Text) != "BANK" ||
			rest[1].Kind != lexer.LBracket || rest[2].Kind != lexer.Number || rest[3].Kind != lexer.RBracket {
			return newError(pos, Syntactic, "expected BANK[n]")
		}
		bank = int(rest[2].Value)
	}
	if region == section.ROMX && a.BankLimit > 0 && (bank < 0 || bank >= a.BankLimit) {
		return newError(pos, Semantic, "bank %d is out of range: this project allows banks 0-%d", bank, a.BankLimit-1)
	}
	_, err := a.sections.Open(name, region, bank)
	if err != nil {
		return newError(pos, Semantic, "%s", err.Error())
	}
	return nil
}

func (a *Assembler) doData(args []lexer.Token, pos lexer.Position, width int) error {
	groups := splitOperands(args)
	if len(groups) == 0 {
		return newError(pos, Syntactic, "%s requires at least one operand", directiveNameForWidth(width))
	}
	for _, g := range groups {
		if len(g) == 1 && g[0].Kind == lexer.String {
			if width != 1 {
				return newError(pos, Semantic, "string operands are only valid in DB")
			}
			if err := a.sections.Emit([]byte(g[0].Text)); err != nil {
				return newError(pos, Semantic, "%s", err.Error())
			}
			continue
		}
		if len(g) == 0 {
			return newError(pos, Syntactic, "empty operand in data directive")
		}
		var lookupErr *Error
		value, resolved, symbol, err := evalExpr(g, g[0].Pos, a.lookupFor(g[0].Pos, &lookupErr))
		if err != nil {
			return err
		}
		if lookupErr != nil {
			return lookupErr
		}
		if !resolved {
			expr := g
			kind := section.Absolute
			pending := func() (int64, bool, string) {
				v, ok, _, e := evalExpr(expr, expr[0].Pos, func(n string) (int64, bool) {
					sym, ok := a.symbols.Lookup(n)
					if !ok {
						return 0, false
					}
					return sym.Value, true
				})
				if e != nil {
					return 0, false, symbol
				}
				return v, ok, symbol
			}
			if err := a.sections.QueueFixup(width, kind, pending, toSectionPos(g[0].Pos)); err != nil {
				return newError(g[0].Pos, Semantic, "%s", err.Error())
			}
			continue
		}
		if err := a.emitSized(value, width, g[0].Pos); err != nil {
			return err
		}
	}
	return nil
}

func (a *Assembler) emitSized(value int64, width int, pos lexer.Position) error {
	switch width {
	case 1:
		if value < -128 || value > 0xFF {
			return newError(pos, Semantic, "value %d does not fit in 8 bits", value)
		}
		if err := a.sections.Emit([]byte{byte(value)}); err != nil {
			return newError(pos, Semantic, "%s", err.Error())
		}
	case 2:
		if value < 0 || value > 0xFFFF {
			return newError(pos, Semantic, "value %d does not fit in 16 bits", value)
		}
		if err := a.sections.Emit([]byte{byte(value & 0xFF), byte((value >> 8) & 0xFF)}); err != nil {
			return newError(pos, Semantic, "%s", err.Error())
		}
	}
	return nil
}

func (a *Assembler) doReserve(args []lexer.Token, pos lexer.Position) error {
	groups := splitOperands(args)
	if len(groups) == 0 || len(groups) > 2 {
		return newError(pos, Syntactic, "expected DS count[, fill]")
	}
	var lookupErr *Error
	count, resolved, _, err := evalExpr(groups[0], pos, a.lookupFor(pos, &lookupErr))
	if err != nil {
		return err
	}
	if lookupErr != nil {
		return lookupErr
	}
	if !resolved {
		return newError(pos, Semantic, "DS count must not contain a forward reference")
	}
	fill := int64(0)
	if len(groups) == 2 {
		fill, resolved, _, err = evalExpr(groups[1], pos, a.lookupFor(pos, &lookupErr))
		if err != nil {
			return err
		}
		if lookupErr != nil {
			return lookupErr
		}
		if !resolved {
			return newError(pos, Semantic, "DS fill value must not contain a forward reference")
		}
	}

	sec := a.sections.Current()
	if sec == nil {
		return newError(pos, Semantic, "DS used before any SECTION directive")
	}
	if sec.Region.String() == "ROM0" || sec.Region.String() == "ROMX" {
		buf := make([]byte, count)
		for i := range buf {
			buf[i] = byte(fill)
		}
		if err := a.sections.Emit(buf); err != nil {
			return newError(pos, Semantic, "%s", err.Error())
		}
		return nil
	}
	if err := a.sections.Reserve(uint32(count)); err != nil {
		return newError(pos, Semantic, "%s", err.Error())
	}
	return nil
}

func (a *Assembler) doInclude(file string, args []lexer.Token, pos lexer.Position) error {
	if len(args) != 1 || args[0].Kind != lexer.String {
		return newError(pos, Syntactic, "expected INCLUDE \"path\"")
	}
	if err := a.processFile(args[0].Text); err != nil {
		return err
	}
	return nil
}

func toSectionPos(p lexer.Position) section.Position {
	return section.Position{File: p.File, Line: p.Line, Col: p.Col}
}

func directiveNameForWidth(width int) string {
	if width == 2 {
		return "DW"
	}
	return "DB"
}
