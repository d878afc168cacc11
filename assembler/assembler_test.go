package assembler_test

import (
	"strings"
	"testing"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/section"
)

type memDriver struct {
	files    map[string]string
	sections map[string][]byte
	reports  []string
}

func newMemDriver(files map[string]string) *memDriver {
	return &memDriver{files: files, sections: make(map[string][]byte)}
}

func (d *memDriver) driver() assembler.Driver {
	return assembler.Driver{
		Load: func(path string) ([]assembler.SourceLine, error) {
			content, ok := d.files[path]
			if !ok {
				return nil, &fileNotFoundError{path}
			}
			var out []assembler.SourceLine
			for i, l := range strings.Split(content, "\n") {
				out = append(out, assembler.SourceLine{Number: i + 1, Text: l})
			}
			return out, nil
		},
		WriteSection: func(name string, region section.Region, bank int, base uint32, bytes []byte) {
			d.sections[name] = append([]byte{}, bytes...)
		},
		Report: func(sev assembler.Severity, file string, line int, message string) {
			d.reports = append(d.reports, message)
		},
	}
}

type fileNotFoundError struct{ path string }

func (e *fileNotFoundError) Error() string { return "file not found: " + e.path }

func assemble(t *testing.T, src string) (*memDriver, *assembler.Program, error) {
	t.Helper()
	d := newMemDriver(map[string]string{"main.asm": src})
	asm := assembler.New(d.driver())
	prog, err := asm.AssembleFile("main.asm")
	return d, prog, err
}

func TestAssembleSimpleRomSection(t *testing.T) {
	d, _, err := assemble(t, "SECTION \"Main\", ROM0\n  LD A, 5\n  LD B, A\n  HALT\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["Main"]
	want := []byte{0x3E, 0x05, 0x47, 0x76}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleLabelAndForwardJump(t *testing.T) {
	src := "SECTION \"Main\", ROM0\n" +
		"Start:\n" +
		"  JR NZ, Done\n" +
		"  NOP\n" +
		"Done:\n" +
		"  RET\n"
	d, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["Main"]
	// JR NZ,Done at 0x0000-0x0001, Done at 0x0003: disp = 3 - (0+2) = 1
	want := []byte{0x20, 0x01, 0x00, 0xC9}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleUndefinedSymbolReportedAfterFixupPass(t *testing.T) {
	_, _, err := assemble(t, "SECTION \"Main\", ROM0\n  LD HL, Missing\n")
	if err == nil {
		t.Fatal("expected an undefined-symbol error")
	}
}

func TestAssembleEquConstant(t *testing.T) {
	src := "CONST EQU 42\nSECTION \"Main\", ROM0\n  LD A, CONST\n"
	d, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["Main"]
	want := []byte{0x3E, 42}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleLocalLabelScopedToGlobal(t *testing.T) {
	src := "SECTION \"Main\", ROM0\n" +
		"Loop:\n" +
		".body:\n" +
		"  JR .body\n"
	d, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["Main"]
	want := []byte{0x18, 0xFE} // JR .body: disp = 0 - (0+2) = -2
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleRejectsBankBeyondBankLimit(t *testing.T) {
	d := newMemDriver(map[string]string{"main.asm": "SECTION \"Data\", ROMX, BANK[5]\n  DB 1\n"})
	asm := assembler.New(d.driver())
	asm.BankLimit = 2
	_, err := asm.AssembleFile("main.asm")
	if err == nil {
		t.Fatal("expected an error for a bank beyond BankLimit")
	}
}

func TestAssembleAcceptsBankWithinBankLimit(t *testing.T) {
	d := newMemDriver(map[string]string{"main.asm": "SECTION \"Data\", ROMX, BANK[1]\n  DB 1\n"})
	asm := assembler.New(d.driver())
	asm.BankLimit = 2
	_, err := asm.AssembleFile("main.asm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAssembleLocalLabelWithNoPrecedingGlobal(t *testing.T) {
	src := "SECTION \"x\", ROM0\n" +
		".start:\n" +
		"  JR .start\n"
	d, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["x"]
	want := []byte{0x18, 0xFE} // JR .start: disp = 0 - (0+2) = -2
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleDBWithStringAndBytes(t *testing.T) {
	src := "SECTION \"Main\", ROM0\n  DB \"Hi\", 1, 2\n"
	d, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["Main"]
	want := []byte{'H', 'i', 1, 2}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleDSReservesInRAMWithoutBytes(t *testing.T) {
	src := "SECTION \"Vars\", WRAM0\nCounter:\n  DS 4\n"
	d, _, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := d.sections["Vars"]; ok {
		t.Fatal("WRAM0 sections should not be written as bytes")
	}
}

func TestAssembleIncludeSplicesLines(t *testing.T) {
	m := map[string]string{
		"main.asm": "SECTION \"Main\", ROM0\nINCLUDE \"part.asm\"\n  HALT\n",
		"part.asm": "  NOP\n",
	}
	d := newMemDriver(m)
	asm := assembler.New(d.driver())
	_, err := asm.AssembleFile("main.asm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := d.sections["Main"]
	want := []byte{0x00, 0x76}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestAssembleUnknownMnemonicIsFatal(t *testing.T) {
	_, _, err := assemble(t, "SECTION \"Main\", ROM0\n  FROB A, B\n")
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestDumpSymbolsListsDefinedLabels(t *testing.T) {
	src := "SECTION \"Main\", ROM0\nStart:\n  NOP\n"
	_, prog, err := assemble(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := prog.DumpSymbols()
	found := false
	for _, r := range rows {
		if r.Name == "Start" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected Start to appear in the symbol dump")
	}
}
