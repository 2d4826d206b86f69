package c8vm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/guslan/c8vm"
	"github.com/retroenv/retrogolib/assert"
)

type recordingDisplay struct {
	renders int
	lit     int
}

func (d *recordingDisplay) Boot() error {
	return nil
}

func (d *recordingDisplay) Render(screen *c8vm.Screen) error {
	d.renders++
	d.lit = len(litPixels(screen))
	return nil
}

type recordingBuzzer struct {
	plays, stops int
}

func (b *recordingBuzzer) Boot() error {
	return nil
}

func (b *recordingBuzzer) Play() {
	b.plays++
}

func (b *recordingBuzzer) Stop() {
	b.stops++
}

func newTestRunner(t *testing.T, program []byte) (*c8vm.Runner, *c8vm.InMemoryKeyboard, *recordingDisplay, *recordingBuzzer, *fakeClock) {
	t.Helper()

	cpu, clock := newTestCpu()
	kb := c8vm.NewInMemoryKeyboard()
	display := &recordingDisplay{}
	buzzer := &recordingBuzzer{}

	runner := c8vm.NewRunner(cpu, display, kb, buzzer)
	assert.NoError(t, runner.Boot())
	assert.NoError(t, runner.LoadProgram(program))

	return runner, kb, display, buzzer, clock
}

func TestRunnerNotBooted(t *testing.T) {
	cpu, _ := newTestCpu()
	runner := c8vm.NewRunner(cpu, c8vm.NewDummyDisplay(), c8vm.NewInMemoryKeyboard(), c8vm.NewDummyBuzzer())

	assert.True(t, errors.Is(runner.LoopOnce(), c8vm.ErrRunnerIsNotBooted))
	assert.True(t, errors.Is(runner.Loop(context.Background()), c8vm.ErrRunnerIsNotBooted))
}

func TestRunnerRunsCyclesPerFrame(t *testing.T) {
	program := []byte{
		0x70, 1,
		0x12, 0x00,
	}
	runner, _, display, _, _ := newTestRunner(t, program)
	runner.SetCyclesPerFrame(4)

	// loading renders the blank screen
	assert.Equal(t, 1, display.renders)

	assert.NoError(t, runner.LoopOnce())
	assert.NoError(t, runner.LoopOnce())

	assert.Equal(t, uint(8), runner.Cycles())
	assert.Equal(t, uint(2), runner.Frames())
	runner.WithCpu(func(cpu *c8vm.Cpu) {
		assertVxEq(t, "incremented", cpu, 0x0, 4)
	})
	assert.Equal(t, 1, display.renders)
}

func TestRunnerRendersOnlyWhenDirty(t *testing.T) {
	program := []byte{
		0xA0, 0x00,
		0xD0, 0x05,
		0x12, 0x04,
	}
	runner, _, display, _, _ := newTestRunner(t, program)
	runner.SetCyclesPerFrame(2)

	assert.NoError(t, runner.LoopOnce())
	assert.Equal(t, 2, display.renders)
	assert.Equal(t, 14, display.lit)

	assert.NoError(t, runner.LoopOnce())
	assert.Equal(t, 2, display.renders)
}

func TestRunnerFeedsKeyboard(t *testing.T) {
	program := []byte{
		0xF4, 0x0A,
		0x12, 0x02,
	}
	runner, kb, _, _, _ := newTestRunner(t, program)

	assert.NoError(t, runner.LoopOnce())
	// waiting for a key ends the frame early
	assert.Equal(t, uint(1), runner.Cycles())
	assert.True(t, runner.Snapshot().WaitingForKey)

	kb.Press(0xB)
	assert.NoError(t, runner.LoopOnce())

	snapshot := runner.Snapshot()
	assert.False(t, snapshot.WaitingForKey)
	assert.Equal(t, byte(0xB), snapshot.V[4])
	assert.Equal(t, uint16(0x202), snapshot.Pc)
}

func TestRunnerDrivesBuzzer(t *testing.T) {
	program := []byte{
		0x60, 2,
		0xF0, 0x18,
		0x12, 0x04,
	}
	runner, _, _, buzzer, clock := newTestRunner(t, program)
	runner.SetCyclesPerFrame(2)

	assert.NoError(t, runner.LoopOnce())
	assert.Equal(t, 1, buzzer.plays)

	assert.NoError(t, runner.LoopOnce())
	assert.Equal(t, 1, buzzer.plays)
	assert.Equal(t, 0, buzzer.stops)

	clock.Advance(3 * c8vm.TimerPeriod)
	assert.NoError(t, runner.LoopOnce())
	assert.Equal(t, 1, buzzer.stops)
}

func TestRunnerPausesOnFault(t *testing.T) {
	runner, _, _, _, _ := newTestRunner(t, []byte{0x00, 0xEE})

	faults := 0
	runner.AddErrorHook(func(cpu *c8vm.Cpu) {
		faults++
	})

	err := runner.LoopOnce()
	assert.True(t, errors.Is(err, c8vm.ErrStackUnderflow))
	assert.True(t, errors.Is(runner.LastError(), c8vm.ErrStackUnderflow))
	assert.False(t, runner.IsRunning())
	assert.Equal(t, 1, faults)

	// faulted runners do not step until reset
	assert.True(t, errors.Is(runner.LoopOnce(), c8vm.ErrStackUnderflow))
	assert.Equal(t, uint(0), runner.Cycles())

	runner.Reset()
	runner.Start()
	assert.NoError(t, runner.LastError())
	assert.True(t, runner.IsRunning())
}

func TestRunnerHooks(t *testing.T) {
	runner, _, _, _, _ := newTestRunner(t, []byte{0x12, 0x00})
	runner.SetCyclesPerFrame(3)

	var beforeFrame, beforeCycle, afterCycle, afterFrame int
	runner.AddBeforeFrameHook(func(cpu *c8vm.Cpu) { beforeFrame++ })
	runner.AddBeforeCycleHook(func(cpu *c8vm.Cpu) { beforeCycle++ })
	runner.AddAfterCycleHook(func(cpu *c8vm.Cpu) { afterCycle++ })
	runner.AddAfterFrameHook(func(cpu *c8vm.Cpu) { afterFrame++ })

	assert.NoError(t, runner.LoopOnce())

	assert.Equal(t, 1, beforeFrame)
	assert.Equal(t, 3, beforeCycle)
	assert.Equal(t, 3, afterCycle)
	assert.Equal(t, 1, afterFrame)
}

func TestRunnerStoppedDoesNotStep(t *testing.T) {
	runner, _, _, _, _ := newTestRunner(t, []byte{0x12, 0x00})
	runner.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	runner.AddBeforeFrameHook(func(cpu *c8vm.Cpu) {
		cancel()
	})

	assert.NoError(t, runner.Loop(ctx))
	assert.Equal(t, uint(0), runner.Cycles())
}

func TestRunnerLoopExitsOnFault(t *testing.T) {
	runner, _, _, _, _ := newTestRunner(t, []byte{0x60, 1, 0x00, 0xEE})
	runner.ExitOnFault = true
	runner.SetSpeedInHz(c8vm.MaxSpeed)

	done := make(chan error, 1)
	go func() {
		done <- runner.Loop(context.Background())
	}()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, c8vm.ErrStackUnderflow))
	case <-time.After(5 * time.Second):
		t.Fatal("Loop() did not return after the fault")
	}
}

func TestRunnerSpeedIsClamped(t *testing.T) {
	runner, _, _, _, _ := newTestRunner(t, []byte{0x12, 0x00})

	runner.SetSpeedInHz(1)
	assert.Equal(t, c8vm.MinSpeed, runner.SpeedInHz())

	runner.SetSpeedInHz(100000)
	assert.Equal(t, c8vm.MaxSpeed, runner.SpeedInHz())
}

func TestRunnerAddsHooksWhileLooping(t *testing.T) {
	runner, _, _, _, _ := newTestRunner(t, []byte{0x12, 0x00})
	runner.SetSpeedInHz(c8vm.MaxSpeed)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Loop(ctx)
	}()

	frames := make(chan struct{}, 1)
	runner.AddAfterFrameHook(func(cpu *c8vm.Cpu) {
		select {
		case frames <- struct{}{}:
		default:
		}
	})

	select {
	case <-frames:
	case <-time.After(5 * time.Second):
		t.Fatal("hook added while looping never ran")
	}

	cancel()
	assert.NoError(t, <-done)
}

var errDisplayGone = errors.New("display gone")

type failingDisplay struct {
	fail bool
}

func (d *failingDisplay) Boot() error {
	return nil
}

func (d *failingDisplay) Render(screen *c8vm.Screen) error {
	if d.fail {
		return errDisplayGone
	}
	return nil
}

func TestRunnerReportsRenderErrorsOnLoadAndReset(t *testing.T) {
	cpu, _ := newTestCpu()
	display := &failingDisplay{fail: true}
	runner := c8vm.NewRunner(cpu, display, c8vm.NewInMemoryKeyboard(), c8vm.NewDummyBuzzer())
	assert.NoError(t, runner.Boot())

	err := runner.LoadProgram([]byte{0x12, 0x00})
	assert.True(t, errors.Is(err, errDisplayGone))
	assert.True(t, errors.Is(runner.LastError(), errDisplayGone))
	assert.False(t, runner.IsRunning())

	display.fail = false
	runner.Reset()
	assert.NoError(t, runner.LastError())

	display.fail = true
	runner.Reset()
	assert.True(t, errors.Is(runner.LastError(), errDisplayGone))
}
