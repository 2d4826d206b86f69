package gui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/c8vm"
)

const (
	ToolbarGap       = 5
	ToolbarBtnWidth  = 80
	ToolbarBtnHeight = 40
	ToolbarHeight    = 50
	ToolbarBtnOffset = ToolbarBtnWidth + ToolbarGap

	DefaultPixelSize = 15
	ScreenPositionX  = 0
	ScreenPositionY  = ToolbarHeight + 1

	MessageBarGap   = 5
	MessageBarHeigh = 30
)

var MessageBarBgColor = rl.DarkGray
var MessageBarInfoColor = rl.SkyBlue
var MessageBarSuccessColor = rl.Lime
var MessageBarWarningColor = rl.Gold
var MessageBarErrorColor = rl.Red

type MessageType byte

const (
	MessageInfo MessageType = iota
	MessageSuccess
	MessageWarning
	MessageError
)

type AppConfig struct {
	Speed          uint
	CyclesPerFrame uint
	UseDebugger    bool
	Layout         c8vm.KeyboardLayout
	ScreenSettings c8vm.ScreenSettings
}
type AppConfigCb func(config *AppConfig)

type ConsoleApp struct {
	*c8vm.InMemoryKeyboard

	runner *c8vm.Runner

	// guards the fields shared with the console goroutine
	mu       sync.Mutex
	screen   []bool
	buzzing  bool
	snapshot c8vm.Snapshot

	settings    c8vm.ScreenSettings
	pixelSize   int
	speedFactor float32
	useDebugger bool

	keyboardLookupMap map[int32]byte

	// Window width and height
	winW, winH int

	// Toolbar
	startBtn, stopBtn, stepBtn, restBtn bool

	loadedProgramPath string

	lastMessage      string
	lastMessageColor rl.Color
}

// Speed in Hz is (speedFactor+1) * 5
func speedFactorToHz(s float32) uint {
	return uint((s + 1) * 5)
}

func hzToSpeedFactor(hz uint) float32 {
	return float32(hz)/5 - 1
}

func NewApp(configs ...AppConfigCb) *ConsoleApp {
	config := &AppConfig{
		Speed:          c8vm.DefaultSpeed,
		CyclesPerFrame: c8vm.DefaultCyclesPerFrame,
		Layout:         c8vm.DefaultKeyboardLayout,
		ScreenSettings: c8vm.SmallScreen,
	}
	for _, cb := range configs {
		cb(config)
	}

	app := &ConsoleApp{
		InMemoryKeyboard:  c8vm.NewInMemoryKeyboard(),
		settings:          config.ScreenSettings,
		screen:            make([]bool, config.ScreenSettings.Width*config.ScreenSettings.Height),
		pixelSize:         max(DefaultPixelSize*c8vm.SmallScreen.Width/config.ScreenSettings.Width, 1),
		speedFactor:       hzToSpeedFactor(config.Speed),
		useDebugger:       config.UseDebugger,
		keyboardLookupMap: keyLookupMap(config.Layout),
	}

	cpu := c8vm.NewCpu(func(c *c8vm.CpuConfig) {
		c.ScreenSettings = config.ScreenSettings
	})
	app.runner = c8vm.NewRunner(cpu, app, app, app)
	app.runner.SetSpeedInHz(config.Speed)
	app.runner.SetCyclesPerFrame(config.CyclesPerFrame)
	app.runner.AddErrorHook(func(cpu *c8vm.Cpu) {
		app.showMessage(fmt.Sprintf("Console stopped at %03X", cpu.Pc), MessageError)
	})
	if config.UseDebugger {
		app.runner.AddBeforeCycleHook(c8vm.TraceHook(slog.Default()))
		app.runner.AddAfterFrameHook(func(cpu *c8vm.Cpu) {
			snapshot := cpu.Snapshot()
			app.mu.Lock()
			app.snapshot = snapshot
			app.mu.Unlock()
		})
	}

	app.updateWindowSize()

	return app
}

// Run initializes the console and the UI loop
func (app *ConsoleApp) Run(autostart bool) {
	if err := app.runner.Boot(); err != nil {
		slog.Error("Error booting the console", slog.Any("error", err))
		return
	}
	if !autostart || !app.hasProgramLoaded() {
		app.runner.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func(runner *c8vm.Runner) {
		slog.Info("starting CPU loop")
		if err := runner.Loop(ctx); err != nil {
			app.showMessage(err.Error(), MessageError)
			slog.Error("Error running the console", slog.Any("error", err))
		}
	}(app.runner)

	rl.InitWindow(int32(app.winW), int32(app.winH), "c8vm")
	defer rl.CloseWindow()

	rl.SetTargetFPS(60)
	for !rl.WindowShouldClose() {
		rl.BeginDrawing()

		rl.ClearBackground(rl.Black)

		app.handleFileLoad()
		app.handleActions()
		app.handleKeyPress()
		app.updateCpuSpeed()

		// Sections get rendered from the bottom up so the toolbar stays on top
		app.drawMessageBar()
		app.drawScreen()
		app.drawToolbar()

		rl.EndDrawing()
	}
}

func (app *ConsoleApp) Load(path string) {
	program, err := os.ReadFile(path)
	if err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	if err = app.runner.LoadProgram(program); err != nil {
		slog.Error("Error loading program", slog.String("path", path), slog.Any("error", err))
		app.showMessage(err.Error(), MessageError)
		return
	}

	app.loadedProgramPath = path
	slog.Info("Program loaded", slog.String("path", path), slog.Int("size", len(program)))
	app.showMessage(fmt.Sprintf("Program '%s' loaded", app.loadedProgramPath), MessageInfo)

	app.runner.Start()
}

func (app *ConsoleApp) updateWindowSize() {
	app.winW = app.settings.Width * app.pixelSize
	app.winH = app.settings.Height*app.pixelSize + ToolbarHeight + MessageBarHeigh
	slog.Info("Updating window size", slog.Int("width", app.winW), slog.Int("height", app.winH))
}

func (app *ConsoleApp) handleFileLoad() {
	if rl.IsFileDropped() {
		files := rl.LoadDroppedFiles()
		defer rl.UnloadDroppedFiles()

		slog.Info("Files were dropped", "files", strings.Join(files, ","))

		if len(files) > 0 {
			app.Load(files[0])
		}
	}
}

func (app *ConsoleApp) hasProgramLoaded() bool {
	return len(app.loadedProgramPath) > 0
}

func (app *ConsoleApp) handleActions() {
	if app.startBtn {
		if app.hasProgramLoaded() {
			app.runner.Start()
			slog.Info("Starting the console")
		} else {
			app.showMessage("There is no program loaded", MessageError)
		}
	}
	if app.stopBtn {
		app.runner.Stop()
		slog.Info("Stopping the console")
	}
	if app.restBtn {
		app.runner.Reset()
		app.showMessage("Program reset", MessageInfo)
		slog.Info("Resetting the program to the beginning")
	}
	if app.stepBtn {
		if err := app.runner.LoopOnce(); err != nil {
			app.showMessage(err.Error(), MessageError)
		}
		slog.Info("Running a single frame")
	}
}

func (app *ConsoleApp) handleKeyPress() {
	state := c8vm.KeyboardState{}
	for code, key := range app.keyboardLookupMap {
		state[key] = rl.IsKeyDown(code)
	}

	app.Set(state)
}

func (app *ConsoleApp) updateCpuSpeed() {
	app.runner.SetSpeedInHz(speedFactorToHz(app.speedFactor))
}

const (
	MinSpeed = float32(c8vm.MinSpeed/5) - 1
	MaxSpeed = float32(c8vm.MaxSpeed/5) - 1
)

func (app *ConsoleApp) drawToolbar() {
	rl.DrawRectangle(0, 0, int32(rl.GetScreenWidth()), ToolbarHeight, rl.Gray)

	app.startBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*0, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_PLAY, "Start"),
	)
	app.stopBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*1, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_STOP, "Stop"),
	)
	app.stepBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*2, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_PLAYER_NEXT, "Step"),
	)
	app.restBtn = gui.Button(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*3, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		gui.IconText(gui.ICON_ROTATE, "Reset"),
	)

	status := "Stopped"
	if app.runner.IsRunning() {
		status = "Running"
	}
	app.mu.Lock()
	if app.buzzing {
		status += " ~"
	}
	app.mu.Unlock()
	gui.Label(
		rl.NewRectangle(ToolbarGap+ToolbarBtnOffset*4, ToolbarGap, ToolbarBtnWidth, ToolbarBtnHeight),
		status,
	)

	gui.Label(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, 26, 50, 20),
		fmt.Sprintf("%d Hz", speedFactorToHz(app.speedFactor)),
	)

	if gui.Button(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150+50, 26, 50, 20),
		gui.IconText(gui.ICON_ROTATE, ""),
	) {
		app.speedFactor = hzToSpeedFactor(c8vm.DefaultSpeed)
	}

	app.speedFactor = gui.Slider(
		rl.NewRectangle(float32(app.winW)-ToolbarGap-150, ToolbarGap, 100, 20),
		fmt.Sprintf("%d Hz", c8vm.MinSpeed), fmt.Sprintf("%d Hz", c8vm.MaxSpeed),
		app.speedFactor,
		MinSpeed,
		MaxSpeed,
	)
}

func (app *ConsoleApp) showMessage(msg string, mType MessageType) {
	app.mu.Lock()
	defer app.mu.Unlock()

	app.lastMessage = msg
	switch mType {
	case MessageInfo:
		app.lastMessageColor = MessageBarInfoColor

	case MessageSuccess:
		app.lastMessageColor = MessageBarSuccessColor

	case MessageWarning:
		app.lastMessageColor = MessageBarWarningColor

	case MessageError:
		app.lastMessageColor = MessageBarErrorColor
	}
}

func (app *ConsoleApp) drawMessageBar() {
	rl.DrawRectangle(
		0,
		int32(app.winH)-MessageBarHeigh,
		int32(app.winW),
		MessageBarHeigh,
		MessageBarBgColor,
	)

	app.mu.Lock()
	msg, color := app.lastMessage, app.lastMessageColor
	if app.useDebugger && app.snapshot.Instruction != "" {
		msg = fmt.Sprintf("%03X %-16s I=%03X DT=%02X ST=%02X", app.snapshot.Pc, app.snapshot.Instruction, app.snapshot.I, app.snapshot.Dt, app.snapshot.St)
		color = MessageBarSuccessColor
	}
	app.mu.Unlock()

	rl.DrawText(
		msg,
		MessageBarGap,
		int32(app.winH)-MessageBarHeigh+MessageBarGap,
		16,
		color,
	)
}
