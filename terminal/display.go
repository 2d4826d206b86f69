package terminal

import (
	"io"
	"os"

	"github.com/guslan/c8vm"
)

const ESC = 0x1B

// Display draws the screen on an ANSI terminal, two characters per pixel
type Display struct {
	terminal        io.Writer
	OnChar, OffChar string
}

func NewDisplay() *Display {
	return NewDisplayWithOutput(os.Stdout)
}

func NewDisplayWithOutput(out io.Writer) *Display {
	return &Display{
		terminal: out,
		OnChar:   "##",
		OffChar:  "  ",
	}
}

// Boot implements c8vm.Display.
func (disp *Display) Boot() error {
	_, err := disp.terminal.Write([]byte{
		// Move cursor do start
		ESC, '[', '1', 'H',
		// clear the terminal
		ESC, '[', '0', 'J',
	})

	return err
}

// Render implements c8vm.Display.
func (disp *Display) Render(screen *c8vm.Screen) error {
	buff := make([]byte, 0, screen.Width*screen.Height*len(disp.OnChar)+screen.Height*3+8)
	buff = append(buff, ESC, '[', '1', 'H')
	for y := 0; y < screen.Height; y++ {
		for x := 0; x < screen.Width; x++ {
			if screen.At(x, y) {
				buff = append(buff, disp.OnChar...)
			} else {
				buff = append(buff, disp.OffChar...)
			}
		}

		// raw mode terminals do not return the carriage on their own
		buff = append(buff, '|', '\r', '\n')
	}

	_, err := disp.terminal.Write(buff)
	return err
}
