// Package fixup implements the second pass of the assembler: it walks
// every section's queued forward-reference placeholders, re-evaluates
// each one now that every symbol has (hopefully) been defined, and
// patches the resolved bytes in place. It is grounded on the two-pass
// shape of the teacher's parser.ResolveForwardReferences in
// parser/symbols.go, generalized from "patch a single relocation slot"
// to "patch absolute or PC-relative bytes of either width" per spec.md
// §4.8.
package fixup

import (
	"fmt"

	"github.com/nullterm/gbz80asm/section"
)

// Error describes one fixup that could not be resolved -- an
// undefined symbol or an out-of-range relative displacement.
type Error struct {
	Pos     section.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Pos.File, e.Pos.Line, e.Message)
}

// ErrorList collects every unresolved fixup found in one resolution
// pass -- per spec.md §4.8 all undefined-reference errors are collected
// before aborting, rather than failing on the first one.
type ErrorList []*Error

func (el ErrorList) Error() string {
	if len(el) == 1 {
		return el[0].Error()
	}
	s := fmt.Sprintf("%d unresolved fixups:\n", len(el))
	for _, e := range el {
		s += "  " + e.Error() + "\n"
	}
	return s
}

// Resolve patches every queued fixup across all sections in the
// registry. It returns a non-nil ErrorList (never a bare error) when
// one or more fixups could not be resolved, having still attempted
// every other fixup first.
func Resolve(reg *section.Registry) error {
	var errs ErrorList
	for _, sec := range reg.All() {
		if sec.Region != section.ROM0 && sec.Region != section.ROMX {
			continue
		}
		for _, fx := range sec.Fixups {
			if err := resolveOne(sec, fx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func resolveOne(sec *section.Section, fx section.Fixup) *Error {
	value, ok, undefined := fx.Expr()
	if !ok {
		return &Error{Pos: fx.Pos, Message: fmt.Sprintf("undefined symbol %q", undefined)}
	}

	switch fx.Kind {
	case section.Absolute:
		return patchAbsolute(sec, fx, value)
	case section.Relative8:
		return patchRelative8(sec, fx, value)
	default:
		return &Error{Pos: fx.Pos, Message: "unknown fixup kind"}
	}
}

func patchAbsolute(sec *section.Section, fx section.Fixup, value int64) *Error {
	switch fx.Width {
	case 2:
		if value < 0 || value > 0xFFFF {
			return &Error{Pos: fx.Pos, Message: fmt.Sprintf("value %d out of range for a 16-bit fixup", value)}
		}
		sec.Bytes[fx.Offset] = byte(value & 0xFF)
		sec.Bytes[fx.Offset+1] = byte((value >> 8) & 0xFF)
		return nil
	case 1:
		if value < -128 || value > 0xFF {
			return &Error{Pos: fx.Pos, Message: fmt.Sprintf("value %d out of range for an 8-bit fixup", value)}
		}
		sec.Bytes[fx.Offset] = byte(value)
		return nil
	default:
		return &Error{Pos: fx.Pos, Message: fmt.Sprintf("unsupported fixup width %d", fx.Width)}
	}
}

// patchRelative8 computes the signed displacement of a jr target from
// the byte immediately following the displacement byte itself, per
// spec.md's rule: displacement = target - (fixup-offset + 1). The
// resolved target is an absolute address (labels are defined at their
// section's IP, which starts at Base), so the fixup offset is turned
// into an absolute address by adding the section's Base.
func patchRelative8(sec *section.Section, fx section.Fixup, value int64) *Error {
	target := value
	origin := int64(sec.Base) + int64(fx.Offset) + 1
	disp := target - origin
	if disp < -128 || disp > 127 {
		return &Error{Pos: fx.Pos, Message: fmt.Sprintf("relative jump out of range: displacement %d not in [-128,127]", disp)}
	}
	sec.Bytes[fx.Offset] = byte(int8(disp))
	return nil
}
