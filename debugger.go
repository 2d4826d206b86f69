package c8vm

import (
	"fmt"
	"log/slog"
)

// Snapshot is a copy of the CPU registers taken between two steps
type Snapshot struct {
	OpCode      uint16
	Instruction string

	Pc    uint16
	V     [16]byte
	I     uint16
	Sp    byte
	Stack [16]uint16
	Dt    byte
	St    byte

	WaitingForKey bool
	Screen        ScreenSettings
}

// Snapshot copies the CPU state.
func (cpu *Cpu) Snapshot() Snapshot {
	s := Snapshot{
		Pc:    cpu.Pc,
		V:     cpu.V,
		I:     cpu.I,
		Sp:    cpu.Sp,
		Stack: cpu.Stack,
		Dt:    cpu.Dt,
		St:    cpu.St,

		WaitingForKey: cpu.waitingForKey,
		Screen:        cpu.Screen.ScreenSettings,
	}

	if ins, ok := cpu.CurrentInstruction(); ok {
		s.OpCode = ins.OpCode
		s.Instruction = ins.String()
	}

	return s
}

// Snapshot copies the state of the CPU
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cpu.Snapshot()
}

// Bytes encodes the snapshot for the debugger wire format:
// opcode, pc, V0-VF, I, sp, stack, dt, st, width, height. Words are big-endian.
func (s Snapshot) Bytes() []byte {
	buf := make([]byte, 0, 64)

	buf = append(buf, byte(s.OpCode>>8), byte(s.OpCode))
	buf = append(buf, byte(s.Pc>>8), byte(s.Pc))
	buf = append(buf, s.V[:]...)
	buf = append(buf, byte(s.I>>8), byte(s.I))
	buf = append(buf, s.Sp)
	for _, b := range s.Stack {
		buf = append(buf, byte(b>>8), byte(b))
	}
	buf = append(buf, s.Dt)
	buf = append(buf, s.St)
	buf = append(buf, byte(s.Screen.Width))
	buf = append(buf, byte(s.Screen.Height))

	return buf
}

// TraceHook logs the instruction about to run at debug level
func TraceHook(logger *slog.Logger) Hook {
	return func(cpu *Cpu) {
		ins, ok := cpu.CurrentInstruction()
		if !ok {
			return
		}

		logger.Debug("step",
			slog.String("pc", hex16(cpu.Pc)),
			slog.String("opcode", hex16(ins.OpCode)),
			slog.String("ins", ins.String()),
			slog.String("i", hex16(cpu.I)),
		)
	}
}

func hex16(v uint16) string {
	return fmt.Sprintf("%04X", v)
}
