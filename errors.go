package c8vm

import (
	"errors"
	"fmt"
)

var ErrProgramDoesNotFitIntoMemory = errors.New("the program does not fit into memory")

var ErrStackUnderflow = errors.New("stack underflow: try to pop an empty stack")
var ErrStackOverflow = errors.New("stack overflow: try to push to a full stack")

var ErrMemoryOutOfRange = errors.New("memory access past the end of the address space")
var ErrPcOutOfRange = errors.New("program counter past the end of the address space")

var ErrRandomUnavailable = errors.New("random source could not provide a byte")

var ErrRunnerIsNotBooted = errors.New("the runner has not been booted properly")

// InstructionError is returned by Step when an instruction faults.
// The PC has already been rewound to the faulting instruction.
type InstructionError struct {
	OpCode uint16
	Pc     uint16
	Err    error
}

func (err *InstructionError) Error() string {
	return fmt.Sprintf("opcode=%04X at PC=%03X: %v", err.OpCode, err.Pc, err.Err)
}

func (err *InstructionError) Unwrap() error {
	return err.Err
}
