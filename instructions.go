package c8vm

import (
	"fmt"
	"io"
)

// executeInstruction runs a decoded instruction. The PC already points to the next instruction.
// An instruction either completes or fails before modifying anything.
// Unassigned encodings do nothing.
func (cpu *Cpu) executeInstruction(ins Instruction) error {
	x, y, n, kk, nnn := ins.X, ins.Y, ins.Z, ins.K, ins.N

	switch ins.Family {
	case 0x0:
		switch ins.OpCode {
		case 0x00E0:
			// CLS :: Clear the display.
			cpu.Screen.Clear()
			cpu.isScreenDirty = true

		case 0x00EE:
			// RET :: Return from a subroutine.
			// Sp is exported, anything past the stack has no return address either.
			if cpu.Sp == 0 || int(cpu.Sp) > len(cpu.Stack) {
				return ErrStackUnderflow
			}
			cpu.Sp--
			cpu.Pc = cpu.Stack[cpu.Sp]

		default:
			// SYS :: Jump to a machine code routine at nnn.
			// This instruction is only used on the old computers on which Chip-8 was originally implemented. It is ignored by modern interpreters.
			if cpu.MachineRoutineInterpreter != nil {
				return cpu.MachineRoutineInterpreter(ins.OpCode, cpu)
			}
		}

	case 0x1:
		// JP addr :: Jump to location nnn.
		cpu.Pc = nnn

	case 0x2:
		// CALL addr :: Call subroutine at nnn.
		if int(cpu.Sp) >= len(cpu.Stack) {
			return ErrStackOverflow
		}
		cpu.Stack[cpu.Sp] = cpu.Pc
		cpu.Sp++

		cpu.Pc = nnn

	case 0x3:
		// SE Vx, byte :: Skip next instruction if Vx = kk.
		if cpu.V[x] == kk {
			cpu.Pc += 2
		}

	case 0x4:
		// SNE Vx, byte :: Skip next instruction if Vx != kk.
		if cpu.V[x] != kk {
			cpu.Pc += 2
		}

	case 0x5:
		// SE Vx, Vy :: Skip next instruction if Vx = Vy.
		if n == 0 && cpu.V[x] == cpu.V[y] {
			cpu.Pc += 2
		}

	case 0x6:
		// LD Vx, byte :: Set Vx = kk.
		cpu.V[x] = kk

	case 0x7:
		// ADD Vx, byte :: Set Vx = Vx + kk. VF is untouched.
		cpu.V[x] += kk

	case 0x8:
		cpu.executeAlu(x, y, n)

	case 0x9:
		// SNE Vx, Vy :: Skip next instruction if Vx != Vy.
		if n == 0 && cpu.V[x] != cpu.V[y] {
			cpu.Pc += 2
		}

	case 0xA:
		// LD I, addr :: Set I = nnn.
		cpu.I = nnn

	case 0xB:
		// JP V0, addr :: Jump to location nnn + V0.
		cpu.Pc = uint16(cpu.V[0]) + nnn

	case 0xC:
		// RND Vx, byte :: Set Vx = random byte AND kk.
		buff := [1]byte{}
		if _, err := io.ReadFull(cpu.rand, buff[:]); err != nil {
			return fmt.Errorf("%w: %w", ErrRandomUnavailable, err)
		}

		cpu.V[x] = buff[0] & kk

	case 0xD:
		// DRW Vx, Vy, nibble :: Display n-byte sprite starting at memory location I at (Vx, Vy), set VF = collision.
		// Sprites are XORed onto the existing screen. If this causes any pixels to be erased, VF is set to 1,
		// otherwise it is set to 0. Pixels falling outside the screen wrap around to the opposite side.
		if err := checkSpan(cpu.I, int(n)); err != nil {
			return err
		}
		collision, visible := cpu.Screen.Draw(cpu.V[x], cpu.V[y], cpu.Memory[cpu.I:cpu.I+uint16(n)])
		cpu.V[0xF] = bool2byte(collision)
		if visible {
			cpu.isScreenDirty = true
		}

	case 0xE:
		switch kk {
		case 0x9E:
			// SKP Vx :: Skip next instruction if key with the value of Vx is pressed.
			if cpu.Keys.IsPressed(cpu.V[x]) {
				cpu.Pc += 2
			}
		case 0xA1:
			// SKNP Vx :: Skip next instruction if key with the value of Vx is not pressed.
			if !cpu.Keys.IsPressed(cpu.V[x]) {
				cpu.Pc += 2
			}
		}

	case 0xF:
		return cpu.executeMisc(x, kk)
	}

	return nil
}

// executeAlu runs the 8xyn inter-register operations.
// Both operands are read before anything is written and the flag is written
// before the result, so when x is F the result wins.
func (cpu *Cpu) executeAlu(x, y, n byte) {
	vx, vy := cpu.V[x], cpu.V[y]

	switch n {
	case 0x0:
		// LD Vx, Vy :: Set Vx = Vy.
		cpu.V[x] = vy

	case 0x1:
		// OR Vx, Vy :: Set Vx = Vx OR Vy.
		cpu.V[x] = vx | vy

	case 0x2:
		// AND Vx, Vy :: Set Vx = Vx AND Vy.
		cpu.V[x] = vx & vy

	case 0x3:
		// XOR Vx, Vy :: Set Vx = Vx XOR Vy.
		cpu.V[x] = vx ^ vy

	case 0x4:
		// ADD Vx, Vy :: Set Vx = Vx + Vy, set VF = carry.
		r := uint16(vx) + uint16(vy)
		cpu.V[0xF] = byte(r >> 8)
		cpu.V[x] = byte(r)

	case 0x5:
		// SUB Vx, Vy :: Set Vx = Vx - Vy, set VF = NOT borrow.
		cpu.V[0xF] = bool2byte(vx >= vy)
		cpu.V[x] = vx - vy

	case 0x6:
		// SHR Vx {, Vy} :: Set Vx = Vx SHR 1.
		cpu.V[0xF] = vx & 0b00000001
		cpu.V[x] = vx >> 1

	case 0x7:
		// SUBN Vx, Vy :: Set Vx = Vy - Vx, set VF = NOT borrow.
		cpu.V[0xF] = bool2byte(vy >= vx)
		cpu.V[x] = vy - vx

	case 0xE:
		// SHL Vx {, Vy} :: Set Vx = Vx SHL 1.
		cpu.V[0xF] = (vx & 0b10000000) >> 7
		cpu.V[x] = vx << 1
	}
}

func (cpu *Cpu) executeMisc(x, kk byte) error {
	switch kk {
	case 0x07:
		// LD Vx, DT :: Set Vx = delay timer value.
		cpu.V[x] = cpu.Dt

	case 0x0A:
		// LD Vx, K :: Wait for a key press, store the value of the key in Vx.
		// Nothing blocks: while no key is down the PC is rewound so this
		// instruction runs again on the next step.
		if k, pressed := cpu.Keys.FirstPressed(); pressed {
			cpu.V[x] = k
			cpu.waitingForKey = false
		} else {
			cpu.Pc -= 2
			cpu.waitingForKey = true
		}

	case 0x15:
		// LD DT, Vx :: Set delay timer = Vx.
		cpu.Dt = cpu.V[x]

	case 0x18:
		// LD ST, Vx :: Set sound timer = Vx.
		cpu.St = cpu.V[x]

	case 0x1E:
		// ADD I, Vx :: Set I = I + Vx. VF is untouched, I wraps at 12 bits.
		cpu.I = (cpu.I + uint16(cpu.V[x])) & 0x0FFF

	case 0x29:
		// LD F, Vx :: Set I = location of sprite for digit Vx.
		cpu.I = GlyphAddress(cpu.V[x])

	case 0x33:
		// LD B, Vx :: Store BCD representation of Vx in memory locations I, I+1, and I+2.
		if err := checkSpan(cpu.I, 3); err != nil {
			return err
		}
		v := cpu.V[x]
		cpu.Memory[cpu.I+0] = v / 100
		cpu.Memory[cpu.I+1] = (v / 10) % 10
		cpu.Memory[cpu.I+2] = v % 10

	case 0x55:
		// LD [I], Vx :: Store registers V0 through Vx in memory starting at location I.
		if err := checkSpan(cpu.I, int(x)+1); err != nil {
			return err
		}
		copy(cpu.Memory[cpu.I:], cpu.V[:x+1])

	case 0x65:
		// LD Vx, [I] :: Read registers V0 through Vx from memory starting at location I.
		if err := checkSpan(cpu.I, int(x)+1); err != nil {
			return err
		}
		copy(cpu.V[:x+1], cpu.Memory[cpu.I:])
	}

	return nil
}
