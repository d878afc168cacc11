package assembler

import (
	"fmt"
	"strings"

	"github.com/nullterm/gbz80asm/lexer"
)

// Kind categorizes a diagnostic per spec.md §7's error taxonomy.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	DriverFailure
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical"
	case Syntactic:
		return "syntax"
	case Semantic:
		return "semantic"
	case DriverFailure:
		return "driver"
	default:
		return "error"
	}
}

// Error is one fatal diagnostic, always carrying a source location.
// Grounded on the teacher's parser.Error (parser/errors.go): same
// Pos/Kind/Message shape, trimmed of the Context/Warning split since
// this dialect has no non-fatal warnings (spec.md §7: "every error is
// fatal to the current run").
type Error struct {
	Pos     lexer.Position
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Message)
}

func newError(pos lexer.Position, kind Kind, format string, args ...interface{}) *Error {
	return &Error{Pos: pos, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrorList collects every diagnostic from one assembly run. Only the
// fixup pass (package fixup) ever produces more than one entry within a
// single run -- every other stage aborts at its first error -- but the
// driver-facing report sink wants a single uniform type regardless.
type ErrorList []*Error

func (el ErrorList) Error() string {
	if len(el) == 1 {
		return el[0].Error()
	}
	lines := make([]string, len(el))
	for i, e := range el {
		lines[i] = e.Error()
	}
	return fmt.Sprintf("%d errors:\n  %s", len(el), strings.Join(lines, "\n  "))
}
