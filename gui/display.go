package gui

import (
	"github.com/guslan/c8vm"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var ScreenBgColor = rl.Gold
var ScreenPixelColor = rl.Yellow

// Boot implements c8vm.Display and c8vm.Buzzer.
func (app *ConsoleApp) Boot() error {
	return nil
}

// Render implements c8vm.Display.
// It runs on the console goroutine, the UI loop reads the copy.
func (app *ConsoleApp) Render(screen *c8vm.Screen) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	copy(app.screen, screen.Pixels())

	return nil
}

// Play implements c8vm.Buzzer.
func (app *ConsoleApp) Play() {
	app.mu.Lock()
	app.buzzing = true
	app.mu.Unlock()
}

// Stop implements c8vm.Buzzer.
func (app *ConsoleApp) Stop() {
	app.mu.Lock()
	app.buzzing = false
	app.mu.Unlock()
}

func (app *ConsoleApp) drawScreen() {
	app.mu.Lock()
	defer app.mu.Unlock()

	w := app.settings.Width
	for y := 0; y < app.settings.Height; y++ {
		for x := 0; x < w; x++ {
			color := ScreenBgColor
			if app.screen[y*w+x] {
				color = ScreenPixelColor
			}

			rl.DrawRectangle(
				ScreenPositionX+int32(app.pixelSize*x),
				ScreenPositionY+int32(app.pixelSize*y),
				int32(app.pixelSize),
				int32(app.pixelSize),
				color)
		}
	}
}
