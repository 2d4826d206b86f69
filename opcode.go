package c8vm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded instruction word.
//
//	family: top nibble
//	x, y, z: second, third and fourth nibbles
//	k: low byte
//	n: low 12 bits
type Instruction struct {
	OpCode uint16
	Family byte
	X      byte
	Y      byte
	Z      byte
	K      byte
	N      uint16
}

// Decode splits an instruction word into its operand fields. Every word decodes.
func Decode(opCode uint16) Instruction {
	return Instruction{
		OpCode: opCode,
		Family: byte(opCode >> 12),
		X:      byte((opCode & 0x0F00) >> 8),
		Y:      byte((opCode & 0x00F0) >> 4),
		Z:      byte(opCode & 0x000F),
		K:      byte(opCode & 0x00FF),
		N:      opCode & 0x0FFF,
	}
}

// opcode finds the instruction word in the CHIP-8 opcode table
func (ins Instruction) opcode() (chip8.Opcode, bool) {
	for _, op := range chip8.Opcodes[ins.Family&0x0F] {
		if op.Info.Mask&ins.OpCode == op.Info.Value {
			return op, true
		}
	}

	return chip8.Opcode{}, false
}

// IsAssigned reports whether the word encodes one of the standard instructions.
// 0nnn machine routines are not.
func (ins Instruction) IsAssigned() bool {
	_, ok := ins.opcode()
	return ok
}

// String returns the mnemonic of the instruction.
// Unassigned encodings render as a raw data word.
func (ins Instruction) String() string {
	op, ok := ins.opcode()
	if !ok {
		if ins.Family == 0x0 {
			return fmt.Sprintf("SYS %03X", ins.N)
		}
		return fmt.Sprintf("DW %04X", ins.OpCode)
	}

	name := strings.ToUpper(op.Instruction.Name)
	if operands := ins.operands(op.Info); operands != "" {
		return name + " " + operands
	}

	return name
}

func (ins Instruction) operands(info chip8.OpcodeInfo) string {
	switch info {
	case chip8.Opcode1000, chip8.Opcode2000:
		return fmt.Sprintf("%03X", ins.N)
	case chip8.Opcode3000, chip8.Opcode4000, chip8.Opcode6000, chip8.Opcode7000, chip8.OpcodeC000:
		return fmt.Sprintf("V%X, %02X", ins.X, ins.K)
	case chip8.Opcode8006, chip8.Opcode800E, chip8.OpcodeE09E, chip8.OpcodeE0A1:
		return fmt.Sprintf("V%X", ins.X)
	case chip8.OpcodeA000:
		return fmt.Sprintf("I, %03X", ins.N)
	case chip8.OpcodeB000:
		return fmt.Sprintf("V0, %03X", ins.N)
	case chip8.OpcodeD000:
		return fmt.Sprintf("V%X, V%X, %X", ins.X, ins.Y, ins.Z)
	case chip8.OpcodeF007:
		return fmt.Sprintf("V%X, DT", ins.X)
	case chip8.OpcodeF00A:
		return fmt.Sprintf("V%X, K", ins.X)
	case chip8.OpcodeF015:
		return fmt.Sprintf("DT, V%X", ins.X)
	case chip8.OpcodeF018:
		return fmt.Sprintf("ST, V%X", ins.X)
	case chip8.OpcodeF01E:
		return fmt.Sprintf("I, V%X", ins.X)
	case chip8.OpcodeF029:
		return fmt.Sprintf("F, V%X", ins.X)
	case chip8.OpcodeF033:
		return fmt.Sprintf("B, V%X", ins.X)
	case chip8.OpcodeF055:
		return fmt.Sprintf("[I], V%X", ins.X)
	case chip8.OpcodeF065:
		return fmt.Sprintf("V%X, [I]", ins.X)
	case chip8.Opcode00E0, chip8.Opcode00EE:
		return ""
	}

	// 5xy0, 8xy0-8xy7 and 9xy0 take two registers
	return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)
}
