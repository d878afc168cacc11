// Package encoder turns one classified instruction (a mnemonic plus its
// already-shaped operands) into concrete bytes, consulting the static
// table in package opcodes. It is grounded on the dispatch shape of the
// teacher's original EncodeInstruction in encoder/encoder.go -- a single
// entry point that normalizes operands and then hands off to the table
// -- generalized from ARM's per-category encode functions (one encoder
// function per instruction family, each building a 32-bit word bit by
// bit) to a single table lookup, since the LR35902's instruction formats
// are not built from reusable bitfields the way ARM's are: each row is
// already a complete, fixed byte sequence once immediates are appended.
package encoder

import (
	"fmt"

	"github.com/nullterm/gbz80asm/lexer"
	"github.com/nullterm/gbz80asm/opcodes"
	"github.com/nullterm/gbz80asm/section"
)

// Immediate describes the trailing immediate value an instruction needs,
// when opcodes.Entry.ImmBytes > 0. If the value could not be resolved at
// encode time (it names a symbol not yet defined), Resolved is false and
// Reeval must be called again during the fixup pass.
type Immediate struct {
	Resolved bool
	Value    int64
	Symbol   string
	Reeval   section.FixupExpr
}

// Instruction is one fully classified instruction ready for encoding.
type Instruction struct {
	Mnemonic string
	Operands []opcodes.Operand
	Imm      Immediate
	Pos      lexer.Position
}

// Result is the outcome of encoding one instruction. When the immediate
// was resolved, Bytes holds the opcode bytes with the immediate folded
// in; when it was not, Bytes holds only the opcode bytes and the
// immediate is left to the queued fixup described by the Fixup fields.
type Result struct {
	Bytes      []byte
	NeedsFixup bool
	FixupWidth int
	FixupKind  section.FixupKind
	FixupExpr  section.FixupExpr
}

// Encode resolves inst against the opcode table and produces its final
// byte sequence, or a fixup request when its immediate operand could not
// be resolved yet. Per spec.md §4.6: an unknown mnemonic is fatal; a
// mnemonic that exists but doesn't match any accepted operand shape is
// fatal and names the shapes that would have matched; a resolved
// immediate outside the operand's legal range is fatal at encode time;
// an operand referencing an undefined symbol falls back to a queued
// fixup instead of failing immediately.
func Encode(inst Instruction) (Result, error) {
	if !opcodes.KnownMnemonic(inst.Mnemonic) {
		return Result{}, &EncodingError{Pos: inst.Pos, Mnemonic: inst.Mnemonic, Message: "unknown mnemonic"}
	}

	entry, ok := opcodes.Lookup(inst.Mnemonic, inst.Operands)
	if !ok {
		return Result{}, &EncodingError{
			Pos:      inst.Pos,
			Mnemonic: inst.Mnemonic,
			Message:  fmt.Sprintf("no match for this operand combination; accepted shapes: %s", describeShapes(opcodes.AcceptedShapes(inst.Mnemonic))),
		}
	}

	bytes := append([]byte{}, entry.Bytes...)

	if entry.ImmBytes == 0 {
		return Result{Bytes: bytes}, nil
	}

	isRelative := inst.Mnemonic == "JR"

	if !inst.Imm.Resolved {
		kind := section.Absolute
		if isRelative {
			kind = section.Relative8
		}
		return Result{
			Bytes:      bytes,
			NeedsFixup: true,
			FixupWidth: entry.ImmBytes,
			FixupKind:  kind,
			FixupExpr:  inst.Imm.Reeval,
		}, nil
	}

	imm, err := encodeImmediate(inst, entry.ImmBytes, isRelative)
	if err != nil {
		return Result{}, err
	}
	return Result{Bytes: append(bytes, imm...)}, nil
}

func encodeImmediate(inst Instruction, width int, relative bool) ([]byte, error) {
	value := inst.Imm.Value
	if relative {
		// The caller resolves JR's displacement against the section's own
		// IP before calling Encode with Resolved == true; Value already
		// holds the signed displacement here, not the absolute target.
		if value < -128 || value > 127 {
			return nil, &EncodingError{Pos: inst.Pos, Mnemonic: inst.Mnemonic,
				Message: fmt.Sprintf("relative jump out of range: displacement %d not in [-128,127]", value)}
		}
		return []byte{byte(int8(value))}, nil
	}

	switch width {
	case 1:
		if value < -128 || value > 0xFF {
			return nil, &EncodingError{Pos: inst.Pos, Mnemonic: inst.Mnemonic,
				Message: fmt.Sprintf("value %d does not fit in 8 bits", value)}
		}
		return []byte{byte(value)}, nil
	case 2:
		if value < 0 || value > 0xFFFF {
			return nil, &EncodingError{Pos: inst.Pos, Mnemonic: inst.Mnemonic,
				Message: fmt.Sprintf("value %d does not fit in 16 bits", value)}
		}
		return []byte{byte(value & 0xFF), byte((value >> 8) & 0xFF)}, nil
	default:
		return nil, &EncodingError{Pos: inst.Pos, Mnemonic: inst.Mnemonic, Message: "unsupported immediate width"}
	}
}

func describeShapes(shapes [][]opcodes.Operand) string {
	if len(shapes) == 0 {
		return "(none)"
	}
	s := ""
	for i, combo := range shapes {
		if i > 0 {
			s += "; "
		}
		if len(combo) == 0 {
			s += "(no operands)"
			continue
		}
		for j, op := range combo {
			if j > 0 {
				s += ","
			}
			s += op.Shape.String()
		}
	}
	return s
}
