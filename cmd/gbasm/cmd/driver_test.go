package cmd

import (
	"testing"

	"github.com/nullterm/gbz80asm/section"
)

func TestROMImagePlacesBytesAtTheirOwnOffset(t *testing.T) {
	rom := newROMImage()
	rom.write(section.ROM0, 0, 0x0000, []byte{0xAA, 0xBB})
	rom.write(section.ROM0, 0, 0x0010, []byte{0xCC, 0xDD})

	out := rom.bytes()
	if out[0x0000] != 0xAA || out[0x0001] != 0xBB {
		t.Fatalf("first section clobbered: %v", out[:2])
	}
	if out[0x0010] != 0xCC || out[0x0011] != 0xDD {
		t.Fatalf("second section not placed at its own offset: %v", out[0x10:0x12])
	}
}

func TestROMImageROMXBankUsesFileOffsetNotLogicalAddress(t *testing.T) {
	rom := newROMImage()
	rom.write(section.ROMX, 2, 0x4000, []byte{0x11, 0x22})

	out := rom.bytes()
	if len(out) < 3*romBankSize {
		t.Fatalf("expected at least 3 banks, got %d bytes", len(out))
	}
	bank2 := out[2*romBankSize : 2*romBankSize+2]
	if bank2[0] != 0x11 || bank2[1] != 0x22 {
		t.Fatalf("bank 2 bytes not at the start of its own file bank: %v", bank2)
	}
}

func TestROMImageIgnoresNonROMRegions(t *testing.T) {
	rom := newROMImage()
	rom.write(section.WRAM0, 0, 0xC000, []byte{0xFF})
	if len(rom.banks) != 0 {
		t.Fatalf("expected WRAM0 writes to be ignored, got banks %v", rom.banks)
	}
}
