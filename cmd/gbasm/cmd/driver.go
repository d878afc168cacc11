package cmd

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/nullterm/gbz80asm/assembler"
	"github.com/nullterm/gbz80asm/asmconfig"
	"github.com/nullterm/gbz80asm/section"
)

// romBankSize is the fixed Game Boy cartridge bank size; every ROMX bank
// and ROM0's bank 0 occupy exactly this many bytes of the output file.
const romBankSize = 0x4000

// romImage accumulates WriteSection calls into a flat cartridge image
// laid out bank-by-bank, independent of the in-memory address-space Base
// the section package computes for encoding purposes.
type romImage struct {
	banks map[int][]byte
}

func newROMImage() *romImage {
	return &romImage{banks: make(map[int][]byte)}
}

// write places bytes at the file offset within bank that corresponds to
// base. ROM0 and every ROMX bank occupy the same 0x0000-0x3FFF /
// 0x4000-0x7FFF logical window regardless of which file bank they land
// in, so base%romBankSize is always the right in-bank offset.
func (r *romImage) write(region section.Region, bank int, base uint32, bytes []byte) {
	if region != section.ROM0 && region != section.ROMX {
		return
	}
	offset := int(base % romBankSize)
	needed := offset + len(bytes)
	buf := r.banks[bank]
	if len(buf) < needed {
		grown := make([]byte, needed)
		copy(grown, buf)
		buf = grown
	}
	copy(buf[offset:], bytes)
	r.banks[bank] = buf
}

func (r *romImage) bytes() []byte {
	maxBank := 0
	for b := range r.banks {
		if b > maxBank {
			maxBank = b
		}
	}
	out := make([]byte, (maxBank+1)*romBankSize)
	for b, buf := range r.banks {
		copy(out[b*romBankSize:], buf)
	}
	return out
}

// fileDriver wires assembler.Driver to disk: Load reads a source file's
// lines, WriteSection accumulates into a romImage, Report prints a
// color-coded diagnostic to stderr the way the teacher's main.go prints
// its own runtime errors.
type fileDriver struct {
	cfg  *asmconfig.Config
	root string
	rom  *romImage
}

func newFileDriver(root string, cfg *asmconfig.Config) *fileDriver {
	return &fileDriver{cfg: cfg, root: root, rom: newROMImage()}
}

func (d *fileDriver) driver() assembler.Driver {
	return assembler.Driver{
		Load:         d.load,
		WriteSection: d.writeSection,
		Report:       d.report,
	}
}

func (d *fileDriver) load(path string) ([]assembler.SourceLine, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(d.root, path)
	}
	f, err := os.Open(full) // #nosec G304 -- path comes from the assembled program's own INCLUDE directives
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	defer f.Close()

	var lines []assembler.SourceLine
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		lines = append(lines, assembler.SourceLine{Number: n, Text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return lines, nil
}

func (d *fileDriver) writeSection(name string, region section.Region, bank int, base uint32, bytes []byte) {
	d.rom.write(region, bank, base, bytes)
}

func (d *fileDriver) report(sev assembler.Severity, file string, line int, message string) {
	if sev == assembler.SeverityInfo {
		color.New(color.FgCyan).Fprintf(os.Stderr, "%s:%d: %s\n", file, line, message)
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "%s:%d: %s\n", file, line, message)
}

func loadConfig() *asmconfig.Config {
	if cfgPath != "" {
		cfg, err := asmconfig.LoadFrom(cfgPath)
		if err != nil {
			fatal("loading config %s: %v", cfgPath, err)
		}
		return cfg
	}
	cfg, err := asmconfig.Load()
	if err != nil {
		fatal("loading config: %v", err)
	}
	return cfg
}
