package c8vm_test

import (
	"fmt"
	"testing"

	"github.com/guslan/c8vm"
	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	ins := c8vm.Decode(0xD12F)

	assert.Equal(t, uint16(0xD12F), ins.OpCode)
	assert.Equal(t, byte(0xD), ins.Family)
	assert.Equal(t, byte(0x1), ins.X)
	assert.Equal(t, byte(0x2), ins.Y)
	assert.Equal(t, byte(0xF), ins.Z)
	assert.Equal(t, byte(0x2F), ins.K)
	assert.Equal(t, uint16(0x12F), ins.N)
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		opCode   uint16
		expected string
	}{
		{0x00E0, "CLS"},
		{0x00EE, "RET"},
		{0x0123, "SYS 123"},
		{0x1ABC, "JP ABC"},
		{0x2ABC, "CALL ABC"},
		{0x3A12, "SE VA, 12"},
		{0x5AB0, "SE VA, VB"},
		{0x5AB1, "DW 5AB1"},
		{0x8AB4, "ADD VA, VB"},
		{0x8AB6, "SHR VA"},
		{0x8AB8, "DW 8AB8"},
		{0xBFFF, "JP V0, FFF"},
		{0xD125, "DRW V1, V2, 5"},
		{0xE19E, "SKP V1"},
		{0xE1A1, "SKNP V1"},
		{0xE1A2, "DW E1A2"},
		{0xF30A, "LD V3, K"},
		{0xF333, "LD B, V3"},
		{0xF355, "LD [I], V3"},
		{0xF365, "LD V3, [I]"},
		{0xF3FF, "DW F3FF"},
		{0x6A05, "LD VA, 05"},
		{0x7A05, "ADD VA, 05"},
		{0x8AB0, "LD VA, VB"},
		{0x8AB5, "SUB VA, VB"},
		{0x8AB7, "SUBN VA, VB"},
		{0x8ABE, "SHL VA"},
		{0x9AB0, "SNE VA, VB"},
		{0xA234, "LD I, 234"},
		{0xC1FF, "RND V1, FF"},
		{0xF107, "LD V1, DT"},
		{0xF115, "LD DT, V1"},
		{0xF118, "LD ST, V1"},
		{0xF11E, "ADD I, V1"},
		{0xF129, "LD F, V1"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, c8vm.Decode(tt.opCode).String())
	}
}

func TestInstructionIsAssigned(t *testing.T) {
	assigned := []uint16{0x00E0, 0x00EE, 0x1200, 0x5120, 0x8126, 0x812E, 0xE19E, 0xF165}
	for _, opCode := range assigned {
		assert.True(t, c8vm.Decode(opCode).IsAssigned(), fmt.Sprintf("%04X", opCode))
	}

	unassigned := []uint16{0x0000, 0x0123, 0x5121, 0x8128, 0x812F, 0x9121, 0xE100, 0xF1FF}
	for _, opCode := range unassigned {
		assert.False(t, c8vm.Decode(opCode).IsAssigned(), fmt.Sprintf("%04X", opCode))
	}
}
