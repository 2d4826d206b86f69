package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/guslan/c8vm"
	"github.com/retroenv/retrogolib/assert"
)

func TestDisplayRender(t *testing.T) {
	out := &bytes.Buffer{}
	disp := NewDisplayWithOutput(out)
	disp.OnChar, disp.OffChar = "#", "."

	screen := c8vm.NewScreen(c8vm.ScreenSettings{Width: 8, Height: 2})
	screen.Draw(0, 1, []byte{0b10000001})

	assert.NoError(t, disp.Render(screen))

	expected := "\x1b[1H........|\r\n#......#|\r\n"
	assert.Equal(t, expected, out.String())
}

func TestDisplayBootClears(t *testing.T) {
	out := &bytes.Buffer{}
	assert.NoError(t, NewDisplayWithOutput(out).Boot())
	assert.True(t, strings.HasSuffix(out.String(), "\x1b[0J"))
}

func TestKeyboardHoldsKeys(t *testing.T) {
	now := time.Unix(0, 0)
	kb := NewKeyboard(c8vm.DefaultKeyboardLayout)
	kb.now = func() time.Time { return now }

	kb.handleRune('w')
	kb.handleRune('?')
	state := kb.State()
	assert.True(t, state[0x5])

	now = now.Add(DefaultHoldDuration)
	assert.Equal(t, c8vm.KeyboardState{}, kb.State())
}

func TestKeyboardListen(t *testing.T) {
	interrupted := false
	kb := NewKeyboard(c8vm.NeoKeyboardLayout)
	kb.OnInterrupt = func() { interrupted = true }

	kb.listen(strings.NewReader("ä\x03"))

	assert.True(t, kb.State()[0xE])
	assert.True(t, interrupted)
}
