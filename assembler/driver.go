// Package assembler drives the two-pass pipeline: the first pass
// tokenizes each source line, dispatches directives and instructions
// through package section/symtab/opcodes/encoder, and queues forward
// references; the second pass hands the populated section registry to
// package fixup. It is grounded on the teacher's loader.LoadProgramIntoVM
// (loader/loader.go) for the directive-dispatch/instruction-encode loop
// shape, and on parser.Preprocessor (parser/preprocessor.go) for
// INCLUDE's path-identity circular-include detection.
package assembler

import (
	"github.com/nullterm/gbz80asm/section"
)

// SourceLine is one line of input, numbered as the driver's loader
// counts it (1-based, matching most editors and compiler diagnostics).
type SourceLine struct {
	Number int
	Text   string
}

// Loader is the excluded CLI's file-reading callback (spec.md §6): given
// a path -- the top-level source file, or the operand of an INCLUDE
// directive -- it returns that file's lines.
type Loader func(path string) ([]SourceLine, error)

// Severity distinguishes a fatal report from an informational one. Per
// spec.md §7 every assembler-raised diagnostic is fatal; Severity exists
// so the driver contract has a place to plug in its own non-fatal
// notices (e.g. "wrote section X") without widening Error itself.
type Severity int

const (
	SeverityError Severity = iota
	SeverityInfo
)

// Reporter is the driver's diagnostic sink (spec.md §6's `report`).
type Reporter func(severity Severity, file string, line int, message string)

// SectionWriter is the driver's sink for a populated section (spec.md
// §6's `write_section`), invoked once per section that has emitted
// bytes, after the fixup pass completes. Sections that only reserved
// space are not passed to it.
type SectionWriter func(name string, region section.Region, bank int, base uint32, bytes []byte)

// Driver bundles the three external collaborators spec.md §6 assigns to
// the excluded CLI. An Assembler is inert without one.
type Driver struct {
	Load         Loader
	WriteSection SectionWriter
	Report       Reporter
}
