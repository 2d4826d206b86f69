/*
 *   Copyright (c) 2024 Gustavo Lopez <git.gustavolopez.xyz@gmail.com>
 *   All rights reserved.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bradleyjkemp/memviz"
	"github.com/guslan/c8vm"
	"github.com/guslan/c8vm/terminal"
	"github.com/guslan/c8vm/wav"
)

func main() {
	speed := flag.Uint("speed", c8vm.DefaultSpeed, fmt.Sprintf("The speed of the CPU in Hz, in the range [%d, %d].", c8vm.MinSpeed, c8vm.MaxSpeed))
	cyclesPerFrame := flag.Uint("xframes", c8vm.DefaultCyclesPerFrame, "The number of cycles that run between each frame.")
	layoutName := flag.String("layout", "default", "The keyboard layout, default or neo.")
	wavPath := flag.String("wav", "", "Record the buzzer to this WAV file.")
	dumpPath := flag.String("dump", "", "Write a graphviz dump of the CPU state to this file on exit.")
	logPath := flag.String("log", "", "Write logs to this file instead of discarding them.")
	trace := flag.Bool("trace", false, "Log every instruction, needs -log.")
	exitOnFault := flag.Bool("exitonfault", true, "Exit when the program faults instead of pausing.")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "must provide the path to a rom as an argument")
		os.Exit(2)
	}

	if err := setupLogger(*logPath, *trace); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	layout := c8vm.DefaultKeyboardLayout
	if *layoutName == "neo" {
		layout = c8vm.NeoKeyboardLayout
	}

	program, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(program, layout, options{
		speed:          *speed,
		cyclesPerFrame: *cyclesPerFrame,
		wavPath:        *wavPath,
		dumpPath:       *dumpPath,
		trace:          *trace,
		exitOnFault:    *exitOnFault,
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	speed          uint
	cyclesPerFrame uint
	wavPath        string
	dumpPath       string
	trace          bool
	exitOnFault    bool
}

func setupLogger(path string, trace bool) error {
	var out io.Writer = io.Discard
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		out = f
	}

	level := slog.LevelInfo
	if trace {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))

	return nil
}

func run(program []byte, layout c8vm.KeyboardLayout, opts options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	kb := terminal.NewKeyboard(layout)
	kb.OnInterrupt = cancel
	defer kb.Close()

	var buzzer c8vm.Buzzer = c8vm.NewDummyBuzzer()
	if opts.wavPath != "" {
		f, err := os.Create(opts.wavPath)
		if err != nil {
			return err
		}
		defer f.Close()

		wb := wav.NewBuzzer(f)
		defer func() {
			if err := wb.Close(); err != nil {
				slog.Error("Error writing the recording", slog.Any("error", err))
			}
		}()
		buzzer = wb
	}

	cpu := c8vm.NewCpu()
	runner := c8vm.NewRunner(cpu, terminal.NewDisplay(), kb, buzzer)
	runner.ExitOnFault = opts.exitOnFault
	runner.SetSpeedInHz(opts.speed)
	runner.SetCyclesPerFrame(opts.cyclesPerFrame)
	if opts.trace {
		runner.AddBeforeCycleHook(c8vm.TraceHook(slog.Default()))
	}
	runner.AddErrorHook(func(cpu *c8vm.Cpu) {
		slog.Error("Program faulted", slog.Any("snapshot", cpu.Snapshot()))
	})

	if opts.dumpPath != "" {
		defer dump(opts.dumpPath, runner)
	}

	if err := runner.Boot(); err != nil {
		return err
	}
	if err := runner.LoadProgram(program); err != nil {
		return err
	}

	slog.Info("Running program", slog.Int("size", len(program)), slog.Uint64("speed", uint64(runner.SpeedInHz())))

	return runner.Loop(ctx)
}

func dump(path string, runner *c8vm.Runner) {
	f, err := os.Create(path)
	if err != nil {
		slog.Error("Error creating the dump", slog.Any("error", err))
		return
	}
	defer f.Close()

	snapshot := runner.Snapshot()
	memviz.Map(f, &snapshot)
}
