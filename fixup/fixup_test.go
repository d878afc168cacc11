package fixup_test

import (
	"testing"

	"github.com/nullterm/gbz80asm/fixup"
	"github.com/nullterm/gbz80asm/section"
	"github.com/stretchr/testify/assert"
)

func queueAbsolute16(t *testing.T, reg *section.Registry, value int64, ok bool) *section.Section {
	t.Helper()
	sec, _ := reg.Open("Code", section.ROM0, 0)
	err := reg.QueueFixup(2, section.Absolute, func() (int64, bool, string) {
		return value, ok, "Label"
	}, section.Position{File: "t.asm", Line: 1})
	assert.NoError(t, err)
	return sec
}

func TestResolveAbsolute16LittleEndian(t *testing.T) {
	reg := section.New()
	sec := queueAbsolute16(t, reg, 0x1234, true)
	err := fixup.Resolve(reg)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x34, 0x12}, sec.Bytes)
}

func TestResolveUndefinedSymbolIsReported(t *testing.T) {
	reg := section.New()
	queueAbsolute16(t, reg, 0, false)
	err := fixup.Resolve(reg)
	assert.Error(t, err)
	el, ok := err.(fixup.ErrorList)
	assert.True(t, ok)
	assert.Len(t, el, 1)
}

func TestResolveCollectsAllUndefinedBeforeAborting(t *testing.T) {
	reg := section.New()
	sec, _ := reg.Open("Code", section.ROM0, 0)
	for i := 0; i < 3; i++ {
		err := reg.QueueFixup(2, section.Absolute, func() (int64, bool, string) {
			return 0, false, "Missing"
		}, section.Position{File: "t.asm", Line: i + 1})
		assert.NoError(t, err)
	}
	_ = sec
	err := fixup.Resolve(reg)
	el, ok := err.(fixup.ErrorList)
	assert.True(t, ok)
	assert.Len(t, el, 3)
}

func TestResolveAbsolute16OutOfRange(t *testing.T) {
	reg := section.New()
	queueAbsolute16(t, reg, 0x10000, true)
	err := fixup.Resolve(reg)
	assert.Error(t, err)
}

func TestResolveRelative8InRange(t *testing.T) {
	reg := section.New()
	sec, _ := reg.Open("Code", section.ROM0, 0)
	assert.NoError(t, reg.Emit([]byte{0x18})) // JR opcode at 0x0000
	target := int64(sec.Base) + 10
	err := reg.QueueFixup(1, section.Relative8, func() (int64, bool, string) {
		return target, true, ""
	}, section.Position{File: "t.asm", Line: 1})
	assert.NoError(t, err)
	assert.NoError(t, fixup.Resolve(reg))
	// origin = base + offset(1) + 1 = 2; disp = 10 - 2 = 8
	assert.Equal(t, byte(8), sec.Bytes[1])
}

func TestResolveRelative8OutOfRange(t *testing.T) {
	reg := section.New()
	sec, _ := reg.Open("Code", section.ROM0, 0)
	assert.NoError(t, reg.Emit([]byte{0x18}))
	target := int64(sec.Base) + 200
	err := reg.QueueFixup(1, section.Relative8, func() (int64, bool, string) {
		return target, true, ""
	}, section.Position{File: "t.asm", Line: 1})
	assert.NoError(t, err)
	err = fixup.Resolve(reg)
	assert.Error(t, err)
}

func TestResolveSkipsNonEmittingRegions(t *testing.T) {
	reg := section.New()
	_, _ = reg.Open("Vars", section.WRAM0, 0)
	err := fixup.Resolve(reg)
	assert.NoError(t, err)
}
