package encoder

import (
	"fmt"

	"github.com/nullterm/gbz80asm/lexer"
)

// EncodingError provides detailed context for encoding failures: the
// source location, the mnemonic that failed, and an underlying error
// when there is one. Grounded on the teacher's EncodingError in the
// original encoder/errors.go, trimmed of the ARM-specific RawLine/
// Instruction fields since operand encoding here works from a mnemonic
// string and an Operand slice rather than a parsed Instruction struct.
type EncodingError struct {
	Pos      lexer.Position
	Mnemonic string
	Message  string
	Wrapped  error
}

func (e *EncodingError) Error() string {
	location := ""
	if e.Pos.File != "" {
		location = fmt.Sprintf("%s:%d:%d: ", e.Pos.File, e.Pos.Line, e.Pos.Col)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s%s: %s: %v", location, e.Mnemonic, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s%s: %s", location, e.Mnemonic, e.Message)
}

func (e *EncodingError) Unwrap() error { return e.Wrapped }

func newEncodingError(pos lexer.Position, mnemonic, message string) *EncodingError {
	return &EncodingError{Pos: pos, Mnemonic: mnemonic, Message: message}
}
