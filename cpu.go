package c8vm

import (
	"crypto/rand"
	"io"
)

// MachineRoutineInterpreter interpretes 0nnn instructions.
// When none is installed they are ignored, like modern interpreters do.
type MachineRoutineInterpreter func(opCode uint16, cpu *Cpu) error

// CpuConfig holds the pluggable parts of a Cpu
type CpuConfig struct {
	ScreenSettings ScreenSettings
	// Rand is read one byte at a time by RND
	Rand io.Reader
	// Clock paces the delay and sound timers
	Clock                     Clock
	MachineRoutineInterpreter MachineRoutineInterpreter
}

type CpuConfigCb func(config *CpuConfig)

// Chip-8 CPU
//
// The Cpu is not safe for concurrent use. The host owns it and alternates
// between writing Keys, calling Step and reading Screen.
type Cpu struct {
	Memory *Memory
	// V 8-bit registers
	V [16]byte
	// I 16-bit register (12-bit usable)
	I uint16
	// Delay timer register
	Dt byte
	// Sound timer register
	St byte
	// Program counter
	Pc uint16
	// Stack pointer, number of entries in use
	Sp byte
	// Stack
	Stack [16]uint16

	// Keys is written by the host between steps
	Keys   KeyboardState
	Screen *Screen

	MachineRoutineInterpreter MachineRoutineInterpreter

	rand          io.Reader
	timers        *TimerPacer
	isScreenDirty bool
	waitingForKey bool
}

func NewCpu(configs ...CpuConfigCb) *Cpu {
	config := &CpuConfig{
		ScreenSettings: SmallScreen,
		Rand:           rand.Reader,
		Clock:          SystemClock,
	}
	for _, cb := range configs {
		cb(config)
	}

	cpu := &Cpu{
		Memory: NewMemory(),
		Screen: NewScreen(config.ScreenSettings),

		MachineRoutineInterpreter: config.MachineRoutineInterpreter,

		rand:   config.Rand,
		timers: NewTimerPacer(config.Clock),
	}
	cpu.Reset()

	return cpu
}

// Reset puts the CPU back at the start-of-program address keeping the memory
func (cpu *Cpu) Reset() {
	cpu.V = [16]byte{}
	cpu.I = 0
	cpu.Dt = 0
	cpu.St = 0
	cpu.Pc = StartOfProgram
	cpu.Sp = 0
	cpu.Stack = [16]uint16{}

	cpu.Screen.Clear()
	cpu.isScreenDirty = true
	cpu.waitingForKey = false
	cpu.timers.Reset()
}

// LoadProgram loads the program into memory and resets the CPU
func (cpu *Cpu) LoadProgram(program []byte) error {
	if err := cpu.Memory.LoadProgram(program); err != nil {
		return err
	}
	cpu.Reset()

	return nil
}

func (cpu *Cpu) IsSoundTimerActive() bool {
	return cpu.St > 0
}

func (cpu *Cpu) IsDelayTimerActive() bool {
	return cpu.Dt > 0
}

// IsScreenDirty reports whether the screen changed since the last ClearScreenDirty
func (cpu *Cpu) IsScreenDirty() bool {
	return cpu.isScreenDirty
}

// ClearScreenDirty is called by whoever consumed the screen
func (cpu *Cpu) ClearScreenDirty() {
	cpu.isScreenDirty = false
}

// IsWaitingForKey reports whether the last step parked on LD Vx, K
func (cpu *Cpu) IsWaitingForKey() bool {
	return cpu.waitingForKey
}

// CurrentInstruction decodes the instruction that the next step will execute
func (cpu *Cpu) CurrentInstruction() (Instruction, bool) {
	opCode, err := cpu.Memory.Fetch(cpu.Pc)
	if err != nil {
		return Instruction{}, false
	}

	return Decode(opCode), true
}

// Step paces the timers, then fetches, decodes and executes one instruction.
// Faults are returned as *InstructionError with the PC left on the faulting
// instruction.
func (cpu *Cpu) Step() error {
	cpu.timers.Tick(&cpu.Dt, &cpu.St)

	pc := cpu.Pc
	opCode, err := cpu.Memory.Fetch(pc)
	if err != nil {
		return &InstructionError{Pc: pc, Err: err}
	}
	cpu.Pc += 2

	if err := cpu.executeInstruction(Decode(opCode)); err != nil {
		cpu.Pc = pc
		return &InstructionError{OpCode: opCode, Pc: pc, Err: err}
	}

	return nil
}

func bool2byte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
