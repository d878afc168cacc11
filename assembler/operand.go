package assembler

import (
	"strings"

	"github.com/nullterm/gbz80asm/expr"
	"github.com/nullterm/gbz80asm/lexer"
	"github.com/nullterm/gbz80asm/opcodes"
)

var reg8Set = map[string]bool{"A": true, "B": true, "C": true, "D": true, "E": true, "H": true, "L": true}
var reg16Set = map[string]bool{"BC": true, "DE": true, "HL": true, "SP": true, "AF": true}
var condOnly = map[string]bool{"NZ": true, "NC": true, "Z": true} // "C" is the only name shared with a register

// splitOperands breaks a flat operand token stream (everything after the
// mnemonic, with Newline/EOF already trimmed) into top-level
// comma-separated groups, treating parens and brackets as nesting so a
// comma inside an indirect operand never splits it.
func splitOperands(toks []lexer.Token) [][]lexer.Token {
	if len(toks) == 0 {
		return nil
	}
	var groups [][]lexer.Token
	var cur []lexer.Token
	depth := 0
	for _, t := range toks {
		switch t.Kind {
		case lexer.LParen, lexer.LBracket:
			depth++
		case lexer.RParen, lexer.RBracket:
			depth--
		}
		if t.Kind == lexer.Comma && depth == 0 {
			groups = append(groups, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	groups = append(groups, cur)
	return groups
}

// operandHints tells classifyOperand how to disambiguate the small set
// of tokens that mean different things in different positions: "C" as
// register vs. condition, and a parenthesized expression as a 16-bit
// address vs. an LDH-style zero-page offset.
type operandHints struct {
	allowCond   bool // this mnemonic/position accepts a condition code
	zeroPageInd bool // a bracketed expression here means (0xFF00+n), not (nn)
}

// classified is the result of classifying one operand token group. For
// shapes whose value is carried in the opcode byte itself (Bit,
// RSTTarget) or appended as a trailing immediate (Imm8/Imm16/IndImm16/
// IndImm8High/SPPlusImm8), ExprTokens holds the sub-expression to
// evaluate. The indirect and SP+ forms already carry their shape; a bare
// expression's Operand.Shape is left as opcodes.None until the caller
// fills in the shape it actually needs.
type classified struct {
	Operand     opcodes.Operand
	IsExpr      bool
	ExprTokens  []lexer.Token
	ExprPos     lexer.Position
}

func classifyOperand(group []lexer.Token, hints operandHints) (classified, *Error) {
	if len(group) == 0 {
		return classified{}, newError(lexer.Position{}, Syntactic, "missing operand")
	}

	if len(group) == 1 && group[0].Kind == lexer.Ident {
		name := strings.ToUpper(group[0].Text)
		switch {
		case hints.allowCond && (name == "C" || condOnly[name]):
			return classified{Operand: opcodes.Operand{Shape: opcodes.Cond, Reg: name}}, nil
		case reg8Set[name]:
			return classified{Operand: opcodes.Operand{Shape: opcodes.Reg8, Reg: name}}, nil
		case reg16Set[name]:
			return classified{Operand: opcodes.Operand{Shape: opcodes.Reg16, Reg: name}}, nil
		}
	}

	// SP+imm8: "SP" "+" <expr>
	if len(group) >= 3 && group[0].Kind == lexer.Ident && strings.ToUpper(group[0].Text) == "SP" && group[1].Kind == lexer.Plus {
		return classified{
			Operand:    opcodes.Operand{Shape: opcodes.SPPlusImm8},
			IsExpr:     true,
			ExprTokens: group[2:],
			ExprPos:    group[0].Pos,
		}, nil
	}

	open := group[0].Kind
	closeKind := group[len(group)-1].Kind
	if (open == lexer.LParen && closeKind == lexer.RParen) || (open == lexer.LBracket && closeKind == lexer.RBracket) {
		inner := group[1 : len(group)-1]
		if len(inner) == 1 && inner[0].Kind == lexer.Ident {
			name := strings.ToUpper(inner[0].Text)
			if reg16Set[name] && (name == "BC" || name == "DE" || name == "HL") {
				return classified{Operand: opcodes.Operand{Shape: opcodes.IndReg16, Reg: name}}, nil
			}
			if name == "C" {
				return classified{Operand: opcodes.Operand{Shape: opcodes.IndCHigh}}, nil
			}
		}
		if len(inner) == 3 && inner[0].Kind == lexer.Ident && strings.ToUpper(inner[0].Text) == "HL" {
			switch inner[1].Kind {
			case lexer.Plus:
				return classified{Operand: opcodes.Operand{Shape: opcodes.IndHLInc}}, nil
			case lexer.Minus:
				return classified{Operand: opcodes.Operand{Shape: opcodes.IndHLDec}}, nil
			}
		}
		shape := opcodes.IndImm16
		if hints.zeroPageInd {
			shape = opcodes.IndImm8High
		}
		return classified{
			Operand:    opcodes.Operand{Shape: shape},
			IsExpr:     true,
			ExprTokens: inner,
			ExprPos:    group[0].Pos,
		}, nil
	}

	// Otherwise, a bare expression: its final shape (Imm8 vs Imm16, or the
	// numeric value of a Bit/RSTTarget slot) is resolved by the caller,
	// which knows the mnemonic's declared operand widths.
	return classified{IsExpr: true, ExprTokens: group, ExprPos: group[0].Pos}, nil
}

// evalExpr runs the expression evaluator over toks, reporting symbol
// references against table through lookup, and translates its error
// and unresolved-symbol outcomes into this package's Error type.
func evalExpr(toks []lexer.Token, pos lexer.Position, lookup expr.Lookup) (value int64, resolved bool, symbol string, err *Error) {
	res, e := expr.Eval(toks, 0, lookup)
	if e != nil {
		if ee, ok := e.(*expr.Error); ok {
			return 0, false, "", newError(ee.Pos, Semantic, "%s", ee.Message)
		}
		return 0, false, "", newError(pos, Semantic, "%s", e.Error())
	}
	if res.Unresolved {
		return 0, false, res.Symbol, nil
	}
	return res.Value, true, "", nil
}
