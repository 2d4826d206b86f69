package c8vm_test

import (
	"errors"
	"testing"

	"github.com/guslan/c8vm"
	"github.com/retroenv/retrogolib/assert"
)

func TestNewMemoryHasFont(t *testing.T) {
	mem := c8vm.NewMemory()

	assert.Equal(t, []byte{0x20, 0x60, 0x20, 0x20, 0x70}, mem[5:10])
	assert.Equal(t, uint16(75), c8vm.GlyphAddress(0xF))
	assert.Equal(t, uint16(5), c8vm.GlyphAddress(0x21))
	for _, b := range mem[0x50:] {
		if b != 0 {
			t.Fatalf("memory past the font is not zeroed")
		}
	}
}

func TestLoadProgramTooLarge(t *testing.T) {
	mem := c8vm.NewMemory()

	err := mem.LoadProgram(make([]byte, c8vm.MemorySize-c8vm.StartOfProgram+1))
	assert.True(t, errors.Is(err, c8vm.ErrProgramDoesNotFitIntoMemory))

	assert.NoError(t, mem.LoadProgram(make([]byte, c8vm.MemorySize-c8vm.StartOfProgram)))
}

func TestLoadProgramClearsPreviousProgram(t *testing.T) {
	mem := c8vm.NewMemory()

	assert.NoError(t, mem.LoadProgram([]byte{1, 2, 3, 4}))
	assert.NoError(t, mem.LoadProgram([]byte{9}))
	assert.Equal(t, []byte{9, 0, 0, 0}, mem[0x200:0x204])
}

func TestFetch(t *testing.T) {
	mem := c8vm.NewMemory()
	mem[0xFFE] = 0xAB
	mem[0xFFF] = 0xCD

	opCode, err := mem.Fetch(0xFFE)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xABCD), opCode)

	_, err = mem.Fetch(0xFFF)
	assert.True(t, errors.Is(err, c8vm.ErrPcOutOfRange))
}

func TestCloneIsIndependent(t *testing.T) {
	mem := c8vm.NewMemory()
	clone := mem.Clone()
	assert.True(t, mem.IsEqual(*clone))

	clone[0x300] = 1
	assert.False(t, mem.IsEqual(*clone))
}
