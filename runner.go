package c8vm

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultSpeed          uint = 500
	MaxSpeed              uint = 700
	MinSpeed              uint = 5
	DefaultCyclesPerFrame uint = 8
)

// Runner is the host loop around a Cpu. It feeds the keyboard, steps the CPU
// at the configured speed, renders the screen when it changes and drives the
// buzzer from the sound timer.
//
// All methods are safe to call from other goroutines while Loop runs.
type Runner struct {
	mu sync.Mutex

	cpu      *Cpu
	display  Display
	keyboard Keyboard
	buzzer   Buzzer

	cycles uint
	frames uint

	speedInHz      uint
	cyclesPerFrame uint

	// ExitOnFault makes Loop return the fault instead of pausing
	ExitOnFault bool

	isBooted  bool
	isPaused  bool
	isBuzzing bool
	lastError error

	// Hooks that run before every frame
	beforeFrameHooks []Hook
	// Hooks that run before every cycle
	beforeCycleHooks []Hook
	// Hooks that run after every cycle
	afterCycleHooks []Hook
	// Hooks that run after every frame
	afterFrameHooks []Hook
	// Hooks that run after an error
	errorHooks []Hook
}

func NewRunner(cpu *Cpu, display Display, keyboard Keyboard, buzzer Buzzer) *Runner {
	return &Runner{
		cpu:      cpu,
		display:  display,
		keyboard: keyboard,
		buzzer:   buzzer,

		speedInHz:      DefaultSpeed,
		cyclesPerFrame: DefaultCyclesPerFrame,

		beforeFrameHooks: make([]Hook, 0),
		beforeCycleHooks: make([]Hook, 0),
		afterCycleHooks:  make([]Hook, 0),
		afterFrameHooks:  make([]Hook, 0),
		errorHooks:       make([]Hook, 0),
	}
}

// Boot initializes all the components
// If the runner was already booted, this method is a noop
func (r *Runner) Boot() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isBooted {
		return nil
	}

	if err := r.display.Boot(); err != nil {
		return err
	}

	if err := r.keyboard.Boot(); err != nil {
		return err
	}

	if err := r.buzzer.Boot(); err != nil {
		return err
	}

	r.isBooted = true

	return nil
}

// LoadProgram loads the program into memory and resets the CPU
func (r *Runner) LoadProgram(program []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cpu.LoadProgram(program); err != nil {
		return err
	}

	return r.reset()
}

// Reset rewinds the program to its start and clears a previous fault.
// A display that fails to render the cleared screen pauses the runner with
// that error.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cpu.Reset()
	r.reset()
}

func (r *Runner) reset() error {
	r.frames = 0
	r.cycles = 0
	r.lastError = nil
	r.updateBuzzer()

	if err := r.render(); err != nil {
		r.lastError = err
		r.isPaused = true
		return err
	}

	return nil
}

func (r *Runner) Start() {
	r.mu.Lock()
	r.isPaused = false
	r.mu.Unlock()
}

func (r *Runner) Stop() {
	r.mu.Lock()
	r.isPaused = true
	r.mu.Unlock()
}

func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return !r.isPaused && r.lastError == nil
}

func (r *Runner) SpeedInHz() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.speedInHz
}

// SetSpeedInHz sets the number of instructions per second, clamped to [MinSpeed, MaxSpeed]
func (r *Runner) SetSpeedInHz(inHz uint) {
	r.mu.Lock()
	r.speedInHz = min(max(inHz, MinSpeed), MaxSpeed)
	r.mu.Unlock()
}

func (r *Runner) SetCyclesPerFrame(n uint) {
	r.mu.Lock()
	r.cyclesPerFrame = max(n, 1)
	r.mu.Unlock()
}

func (r *Runner) Cycles() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.cycles
}

func (r *Runner) Frames() uint {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.frames
}

// LastError returns the fault that paused the runner, if any
func (r *Runner) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.lastError
}

// WithCpu runs f with exclusive access to the CPU
func (r *Runner) WithCpu(f func(cpu *Cpu)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f(r.cpu)
}

// Loop runs frames at the current speed until ctx is done.
// A fault pauses the runner, or ends the loop when ExitOnFault is set.
func (r *Runner) Loop(ctx context.Context) error {
	if !r.booted() {
		return ErrRunnerIsNotBooted
	}

	var last time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		r.mu.Lock()
		err := r.runNextFrame()
		wait := r.frameDuration()
		r.mu.Unlock()

		if err != nil && r.ExitOnFault {
			return err
		}

		// Prevent the CPU from running faster than expected
		time.Sleep(max(wait-time.Since(last), 0))
		last = time.Now()
	}
}

// LoopOnce runs a single frame bypassing the pause state
func (r *Runner) LoopOnce() error {
	if !r.booted() {
		return ErrRunnerIsNotBooted
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastError != nil {
		return r.lastError
	}

	prev := r.isPaused
	r.isPaused = false
	defer func(r *Runner, prev bool) {
		r.isPaused = prev
	}(r, prev)

	return r.runNextFrame()
}

func (r *Runner) booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.isBooted
}

func (r *Runner) frameDuration() time.Duration {
	return time.Duration(r.cyclesPerFrame) * time.Second / time.Duration(r.speedInHz)
}

func (r *Runner) runNextFrame() error {
	r.runHooks(r.beforeFrameHooks)

	if r.isPaused || r.lastError != nil {
		return nil
	}

	r.cpu.Keys = r.keyboard.State()

	for i := uint(0); i < r.cyclesPerFrame; i++ {
		r.runHooks(r.beforeCycleHooks)
		if err := r.cpu.Step(); err != nil {
			r.lastError = err
			r.isPaused = true
			r.runHooks(r.errorHooks)
			return err
		}
		r.cycles++
		r.runHooks(r.afterCycleHooks)

		// the keyboard will not change until the next frame
		if r.cpu.IsWaitingForKey() {
			break
		}
	}

	r.updateBuzzer()

	if err := r.render(); err != nil {
		r.lastError = err
		r.isPaused = true
		r.runHooks(r.errorHooks)
		return err
	}

	r.frames++

	r.runHooks(r.afterFrameHooks)

	return nil
}

func (r *Runner) render() error {
	if !r.cpu.IsScreenDirty() {
		return nil
	}

	r.cpu.ClearScreenDirty()

	return r.display.Render(r.cpu.Screen)
}

func (r *Runner) updateBuzzer() {
	active := r.cpu.IsSoundTimerActive()
	if active == r.isBuzzing {
		return
	}

	r.isBuzzing = active
	if active {
		r.buzzer.Play()
	} else {
		r.buzzer.Stop()
	}
}
