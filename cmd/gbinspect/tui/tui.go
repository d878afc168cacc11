// Package tui is gbinspect's read-only section/symbol browser, grounded
// on the teacher's debugger/tui.go layout: bordered tview panels wired
// together with Flex containers, a global SetInputCapture for the
// quit/navigation keys, and an output view for transient messages.
// Unlike the teacher's TUI, there is no running machine to single-step
// -- every panel is a static view over one already-finished assembly.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/section"
)

// SplitLines turns a loaded file's contents into one string per line,
// without the trailing newline; the caller numbers them into the
// driver contract's assembler.SourceLine values.
func SplitLines(content string) []string {
	return strings.Split(strings.TrimRight(content, "\n"), "\n")
}

type browser struct {
	prog    *assembler.Program
	reports []string

	app          *tview.Application
	pages        *tview.Pages
	sectionsList *tview.List
	symbolsList  *tview.List
	hexView      *tview.TextView
	outputView   *tview.TextView
}

// Run launches the TUI over an already-assembled program and blocks
// until the user quits.
func Run(prog *assembler.Program, reports []string) error {
	b := &browser{prog: prog, reports: reports, app: tview.NewApplication()}
	b.build()
	return b.app.SetRoot(b.pages, true).EnableMouse(true).Run()
}

func (b *browser) build() {
	b.sectionsList = tview.NewList().ShowSecondaryText(true)
	b.sectionsList.SetBorder(true).SetTitle(" Sections ")

	b.symbolsList = tview.NewList().ShowSecondaryText(false)
	b.symbolsList.SetBorder(true).SetTitle(" Symbols ")

	b.hexView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	b.hexView.SetBorder(true).SetTitle(" Bytes ")

	b.outputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.outputView.SetBorder(true).SetTitle(" Diagnostics ")
	if len(b.reports) == 0 {
		b.outputView.SetText("[green]no diagnostics[white]")
	} else {
		b.outputView.SetText(strings.Join(b.reports, "\n"))
	}

	for _, sec := range b.prog.Sections.All() {
		sec := sec
		label := fmt.Sprintf("%-16s %-6s bank %d", sec.Name, sec.Region, sec.Bank)
		secondary := fmt.Sprintf("base $%04X  %d bytes", sec.Base, len(sec.Bytes))
		b.sectionsList.AddItem(label, secondary, 0, func() { b.showHex(sec) })
	}

	for _, row := range b.prog.DumpSymbols() {
		row := row
		label := fmt.Sprintf("%-28s %-14s $%04X", row.Name, row.Kind, row.Value)
		b.symbolsList.AddItem(label, "", 0, nil)
	}

	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.sectionsList, 0, 1, true).
		AddItem(b.symbolsList, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.hexView, 0, 3, false).
		AddItem(b.outputView, 0, 1, false)

	main := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 0, 1, true).
		AddItem(right, 0, 2, false)

	b.pages = tview.NewPages().AddPage("main", main, true, true)

	b.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			b.app.Stop()
			return nil
		case tcell.KeyTab:
			if b.app.GetFocus() == b.sectionsList {
				b.app.SetFocus(b.symbolsList)
			} else {
				b.app.SetFocus(b.sectionsList)
			}
			return nil
		}
		return event
	})
}

func (b *browser) showHex(sec *section.Section) {
	var sb strings.Builder
	for i := 0; i < len(sec.Bytes); i += 16 {
		end := i + 16
		if end > len(sec.Bytes) {
			end = len(sec.Bytes)
		}
		fmt.Fprintf(&sb, "$%04X  ", int(sec.Base)+i)
		for _, by := range sec.Bytes[i:end] {
			fmt.Fprintf(&sb, "%02X ", by)
		}
		sb.WriteByte('\n')
	}
	if sb.Len() == 0 {
		sb.WriteString("[yellow]section reserves space but emits no bytes[white]")
	}
	b.hexView.SetText(sb.String())
}
