package c8vm

import (
	"fmt"
	"strings"
)

const (
	StartOfProgram = 0x200
	MemorySize     = 4096

	// fontAddress is where the hexadecimal glyphs live, 5 bytes each.
	fontAddress   = 0x000
	fontGlyphSize = 5
)

// Memory is the 4KB address space of the machine.
type Memory [MemorySize]byte

var font = [16 * fontGlyphSize]byte{
	// 0
	0xF0, 0x90, 0x90, 0x90, 0xF0,
	// 1
	0x20, 0x60, 0x20, 0x20, 0x70,
	// 2
	0xF0, 0x10, 0xF0, 0x80, 0xF0,
	// 3
	0xF0, 0x10, 0xF0, 0x10, 0xF0,
	// 4
	0x90, 0x90, 0xF0, 0x10, 0x10,
	// 5
	0xF0, 0x80, 0xF0, 0x10, 0xF0,
	// 6
	0xF0, 0x80, 0xF0, 0x90, 0xF0,
	// 7
	0xF0, 0x10, 0x20, 0x40, 0x40,
	// 8
	0xF0, 0x90, 0xF0, 0x90, 0xF0,
	// 9
	0xF0, 0x90, 0xF0, 0x10, 0xF0,
	// A
	0xF0, 0x90, 0xF0, 0x90, 0x90,
	// B
	0xE0, 0x90, 0xE0, 0x90, 0xE0,
	// C
	0xF0, 0x80, 0x80, 0x80, 0xF0,
	// D
	0xE0, 0x90, 0x90, 0x90, 0xE0,
	// E
	0xF0, 0x80, 0xF0, 0x80, 0xF0,
	// F
	0xF0, 0x80, 0xF0, 0x80, 0x80,
}

// NewMemory creates a zeroed memory of 4096 bytes with the font installed
func NewMemory() *Memory {
	m := Memory{}
	m.loadFont()

	return &m
}

func (mem *Memory) loadFont() {
	copy(mem[fontAddress:], font[:])
}

// GlyphAddress returns the address of the font glyph for the low nibble of digit
func GlyphAddress(digit byte) uint16 {
	return fontAddress + uint16(digit&0x0F)*fontGlyphSize
}

func (mem Memory) Clone() *Memory {
	m := mem
	return &m
}

func (mem Memory) IsEqual(other Memory) bool {
	return mem == other
}

func (mem Memory) String() string {
	sb := strings.Builder{}

	sb.WriteString("[ ")
	for _, b := range mem[:StartOfProgram] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]\n")
	sb.WriteString("[ ")
	for _, b := range mem[StartOfProgram:] {
		sb.WriteString(fmt.Sprintf("%X ", b))
	}
	sb.WriteString("]")

	return sb.String()
}

// LoadProgram clears the program area and copies the program at the start-of-program address.
// The contents are not validated.
func (mem *Memory) LoadProgram(program []byte) error {
	if len(program) > MemorySize-StartOfProgram {
		return ErrProgramDoesNotFitIntoMemory
	}

	clear(mem[StartOfProgram:])
	mem.loadFont()
	copy(mem[StartOfProgram:], program)

	return nil
}

// Fetch reads the big-endian instruction word at addr.
func (mem *Memory) Fetch(addr uint16) (uint16, error) {
	if err := checkSpan(addr, 2); err != nil {
		return 0, ErrPcOutOfRange
	}

	return uint16(mem[addr])<<8 | uint16(mem[addr+1]), nil
}

// checkSpan verifies that n bytes starting at addr are all addressable.
func checkSpan(addr uint16, n int) error {
	if int(addr)+n > MemorySize {
		return ErrMemoryOutOfRange
	}

	return nil
}
