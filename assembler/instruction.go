package assembler

import (
	"github.com/nullterm/gbz80asm/encoder"
	"github.com/nullterm/gbz80asm/lexer"
	"github.com/nullterm/gbz80asm/opcodes"
)

// mnemonicsUsingZeroPage route a parenthesized operand to the $FF00+n
// zero-page shape instead of a full 16-bit address (spec.md §4.6: LDH's
// operand form is distinct from LD's).
var mnemonicsUsingZeroPage = map[string]bool{"LDH": true}

func (a *Assembler) processInstruction(mnemonic string, operandToks []lexer.Token, pos lexer.Position) error {
	groups := splitOperands(operandToks)

	var operands []opcodes.Operand
	var pendingExpr []lexer.Token
	var pendingExprPos lexer.Position
	var pendingSlot int = -1

	hints := operandHints{zeroPageInd: mnemonicsUsingZeroPage[mnemonic]}
	for i, g := range groups {
		hints.allowCond = conditionalMnemonics[mnemonic] && i == 0
		c, cerr := classifyOperand(g, hints)
		if cerr != nil {
			return cerr
		}
		if c.IsExpr {
			if pendingSlot != -1 {
				return newError(pos, Syntactic, "%s takes at most one immediate/value operand", mnemonic)
			}
			pendingSlot = i
			pendingExpr = c.ExprTokens
			pendingExprPos = c.ExprPos
		}
		operands = append(operands, c.Operand)
	}

	if pendingSlot == -1 {
		return a.emitEncoded(mnemonic, operands, encoder.Immediate{}, pos)
	}

	return a.processWithImmediate(mnemonic, operands, pendingSlot, pendingExpr, pendingExprPos, pos)
}

// bitSlotMnemonics are the mnemonics whose first operand is a literal bit
// index baked directly into the opcode byte rather than appended as a
// trailing immediate.
var bitSlotMnemonics = map[string]bool{"BIT": true, "RES": true, "SET": true}

func (a *Assembler) processWithImmediate(mnemonic string, operands []opcodes.Operand, slot int, exprToks []lexer.Token, exprPos lexer.Position, pos lexer.Position) error {
	var lookupErr *Error
	value, resolved, symbol, err := evalExpr(exprToks, exprPos, a.lookupFor(exprPos, &lookupErr))
	if err != nil {
		return err
	}
	if lookupErr != nil {
		return lookupErr
	}

	if mnemonic == "RST" {
		if !resolved {
			return newError(exprPos, Semantic, "RST target must be an immediately resolvable value")
		}
		if !isLegalRSTTarget(value) {
			return newError(exprPos, Semantic, "%d is not a legal RST target", value)
		}
		operands[slot] = opcodes.Operand{Shape: opcodes.RSTTarget, Value: value}
		return a.emitEncoded(mnemonic, operands, encoder.Immediate{}, pos)
	}
	if bitSlotMnemonics[mnemonic] {
		if !resolved {
			return newError(exprPos, Semantic, "%s requires an immediately resolvable bit index", mnemonic)
		}
		if value < 0 || value > 7 {
			return newError(exprPos, Semantic, "bit index %d out of range 0..7", value)
		}
		operands[slot] = opcodes.Operand{Shape: opcodes.Bit, Value: value}
		return a.emitEncoded(mnemonic, operands, encoder.Immediate{}, pos)
	}

	if !resolved {
		reeval := func() (int64, bool, string) {
			v, ok, _, e := evalExpr(exprToks, exprPos, func(n string) (int64, bool) {
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
		return a.emitEncoded(mnemonic, operands, encoder.Immediate{Resolved: false, Symbol: symbol, Reeval: reeval}, pos)
	}

	if mnemonic == "JR" {
		sec := a.sections.Current()
		if sec == nil {
			return newError(pos, Semantic, "JR used before any SECTION directive")
		}
		disp := value - (int64(sec.IP()) + 2)
		return a.emitEncoded(mnemonic, operands, encoder.Immediate{Resolved: true, Value: disp}, pos)
	}

	return a.emitEncoded(mnemonic, operands, encoder.Immediate{Resolved: true, Value: value}, pos)
}

func (a *Assembler) emitEncoded(mnemonic string, operands []opcodes.Operand, imm encoder.Immediate, pos lexer.Position) error {
	res, err := encoder.Encode(encoder.Instruction{Mnemonic: mnemonic, Operands: bestShapes(mnemonic, operands), Imm: imm, Pos: pos})
	if err != nil {
		return newError(pos, Semantic, "%s", err.Error())
	}
	if err := a.sections.Emit(res.Bytes); err != nil {
		return newError(pos, Semantic, "%s", err.Error())
	}
	if res.NeedsFixup {
		if err := a.sections.QueueFixup(res.FixupWidth, res.FixupKind, res.FixupExpr, toSectionPos(pos)); err != nil {
			return newError(pos, Semantic, "%s", err.Error())
		}
	}
	return nil
}

// bestShapes tries Imm8 then Imm16 for any operand still carrying the
// generic opcodes.None placeholder shape, since the true shape a bare
// numeric operand needs is determined by which combination the opcode
// table actually accepts for this mnemonic and its other, already-fixed
// operands (spec.md §4.6: fall back to the declared width in the
// mnemonic form). Encode reports the final failure if neither fits.
func bestShapes(mnemonic string, operands []opcodes.Operand) []opcodes.Operand {
	none := -1
	for i, op := range operands {
		if op.Shape == opcodes.None {
			none = i
			break
		}
	}
	if none == -1 {
		return operands
	}
	try8 := append([]opcodes.Operand{}, operands...)
	try8[none] = opcodes.Operand{Shape: opcodes.Imm8}
	if _, ok := opcodes.Lookup(mnemonic, try8); ok {
		return try8
	}
	try16 := append([]opcodes.Operand{}, operands...)
	try16[none] = opcodes.Operand{Shape: opcodes.Imm16}
	return try16
}

func isLegalRSTTarget(value int64) bool {
	for _, t := range opcodes.RSTTargets {
		if t == value {
			return true
		}
	}
	return false
}
