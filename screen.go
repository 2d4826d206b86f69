package c8vm

// ScreenSettings for the console
// Common display sizes are 64x32 and 128x64.
// Other uncommon sizes are 64x48 and 64x64.
type ScreenSettings struct {
	Width, Height int
}

var SmallScreen = ScreenSettings{
	Width:  64,
	Height: 32,
}

// Screen is a monochrome framebuffer, one bool per pixel in row-major order.
type Screen struct {
	ScreenSettings
	pixels []bool
}

func NewScreen(settings ScreenSettings) *Screen {
	return &Screen{
		ScreenSettings: settings,
		pixels:         make([]bool, settings.Width*settings.Height),
	}
}

func (s *Screen) Clear() {
	clear(s.pixels)
}

// At reports whether the pixel at x, y is lit. Coordinates wrap.
func (s *Screen) At(x, y int) bool {
	return s.pixels[s.index(x, y)]
}

// Pixels returns the framebuffer. The slice is owned by the screen.
func (s *Screen) Pixels() []bool {
	return s.pixels
}

func (s *Screen) index(x, y int) int {
	x %= s.Width
	if x < 0 {
		x += s.Width
	}
	y %= s.Height
	if y < 0 {
		y += s.Height
	}

	return y*s.Width + x
}

// Draw XORs the sprite onto the screen with its top-left corner at x, y.
// Every pixel wraps around the edges on its own, nothing is clipped.
// collision reports whether a lit pixel was turned off, visible whether
// the sprite had any bit set.
func (s *Screen) Draw(x, y byte, sprite []byte) (collision bool, visible bool) {
	x0 := int(x) % s.Width
	y0 := int(y) % s.Height

	for row, b := range sprite {
		if b == 0 {
			continue
		}
		visible = true

		for col := 0; col < 8; col++ {
			if b&(0x80>>col) == 0 {
				continue
			}

			t := s.index(x0+col, y0+row)
			if s.pixels[t] {
				collision = true
			}
			s.pixels[t] = !s.pixels[t]
		}
	}

	return collision, visible
}

// Packed returns the screen as MSB-first bits, 8 pixels per byte.
func (s *Screen) Packed() []byte {
	buf := make([]byte, (len(s.pixels)+7)/8)
	for t, lit := range s.pixels {
		if lit {
			buf[t/8] |= 0x80 >> (t % 8)
		}
	}

	return buf
}
