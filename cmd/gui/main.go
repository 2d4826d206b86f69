package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/guslan/c8vm"
	"github.com/guslan/c8vm/gui"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{})))
}

func main() {
	autostart := flag.Bool("start", false, "Starts the console automatically if there is a program loaded (defaults = false).")
	debug := flag.Bool("debug", false, "Show debug information for the console (defaults = false).")
	initialSpeed := flag.Uint("speed", c8vm.DefaultSpeed, fmt.Sprintf("The starting speed of the CPU in Hz. It has to be in the range [%d, %d] (defaults = %d).", c8vm.MinSpeed, c8vm.MaxSpeed, c8vm.DefaultSpeed))
	cyclesPerFrame := flag.Uint("xframes", c8vm.DefaultCyclesPerFrame, fmt.Sprintf("The number of cycles that run between each frame (defaults = %d).", c8vm.DefaultCyclesPerFrame))
	neo := flag.Bool("neo", false, "Use the Neo keyboard layout (defaults = false).")

	flag.Parse()

	if *debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	app := gui.NewApp(func(config *gui.AppConfig) {
		config.Speed = max(*initialSpeed, c8vm.MinSpeed)
		config.UseDebugger = *debug
		config.CyclesPerFrame = *cyclesPerFrame
		if *neo {
			config.Layout = c8vm.NeoKeyboardLayout
		}
	})

	if flag.NArg() > 0 {
		app.Load(flag.Arg(0))
	}

	app.Run(*autostart)
}
