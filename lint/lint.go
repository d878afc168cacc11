// Package lint reports style and dead-code findings over a finished
// assembler.Program that the assembler's own fatal-error pass doesn't
// cover (an undefined symbol is already fatal during assembly; an
// unused label merely wastes space). Grounded on the teacher's
// tools/lint.go LintLevel/LintIssue/Linter shape -- same severity enum,
// same issue struct with a line/column/message/code -- narrowed from
// the teacher's from-scratch branch/load/store source walk (which had
// to parse its own undefined/unreachable/register-usage checks because
// the ARM parser didn't track any of that) down to the checks this
// dialect's own symtab and section packages don't already perform for
// free during assembly.
package lint

import (
	"fmt"
	"sort"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/xref"
)

// Level is the severity of a lint finding.
type Level int

const (
	Warning Level = iota
	Info
)

func (l Level) String() string {
	if l == Warning {
		return "warning"
	}
	return "info"
}

// Issue is a single lint finding.
type Issue struct {
	Level   Level
	Line    int
	Column  int
	Message string
	Code    string
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d:%d: %s: %s [%s]", i.Line, i.Column, i.Level, i.Message, i.Code)
}

// Options controls which checks Lint runs.
type Options struct {
	CheckUnusedLabels bool
}

// DefaultOptions enables every check.
func DefaultOptions() *Options {
	return &Options{CheckUnusedLabels: true}
}

// Lint runs every enabled check over prog and returns its findings
// sorted by source position.
func Lint(prog *assembler.Program, opts *Options) []Issue {
	if opts == nil {
		opts = DefaultOptions()
	}

	var issues []Issue
	if opts.CheckUnusedLabels {
		entries := xref.Build(prog)
		for _, e := range xref.Unreferenced(entries) {
			issues = append(issues, Issue{
				Level:   Warning,
				Line:    e.DefinedAt.Line,
				Column:  e.DefinedAt.Col,
				Message: fmt.Sprintf("label %q is never referenced", e.Name),
				Code:    "UNUSED_LABEL",
			})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Line == issues[j].Line {
			return issues[i].Column < issues[j].Column
		}
		return issues[i].Line < issues[j].Line
	})
	return issues
}
