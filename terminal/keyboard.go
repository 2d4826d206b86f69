package terminal

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/guslan/c8vm"
	"github.com/pkg/term"
)

// DefaultHoldDuration is how long a key stays down after the terminal reported it.
// Terminals only report presses, so releases are synthesized.
const DefaultHoldDuration = 150 * time.Millisecond

const ctrlC = 0x03

// Keyboard reads keys from a terminal in raw mode
type Keyboard struct {
	mu sync.Mutex

	device       string
	tty          *term.Term
	layout       c8vm.KeyboardLayout
	HoldDuration time.Duration

	pressedAt [16]time.Time
	now       func() time.Time

	// OnInterrupt is called when Ctrl-C is read, raw mode swallows the signal
	OnInterrupt func()
}

func NewKeyboard(layout c8vm.KeyboardLayout) *Keyboard {
	return &Keyboard{
		device:       "/dev/tty",
		layout:       layout,
		HoldDuration: DefaultHoldDuration,
		now:          time.Now,
	}
}

// Boot implements c8vm.Keyboard. It switches the terminal to raw mode and
// starts reading keys in the background.
func (kb *Keyboard) Boot() error {
	tty, err := term.Open(kb.device, term.RawMode)
	if err != nil {
		return err
	}
	kb.tty = tty

	go kb.listen(tty)

	return nil
}

// Close restores the terminal
func (kb *Keyboard) Close() error {
	if kb.tty == nil {
		return nil
	}

	if err := kb.tty.Restore(); err != nil {
		return err
	}

	return kb.tty.Close()
}

func (kb *Keyboard) listen(r io.Reader) {
	in := bufio.NewReader(r)
	for {
		ch, _, err := in.ReadRune()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Error("Error reading the terminal", slog.Any("error", err))
			}
			return
		}

		kb.handleRune(ch)
	}
}

func (kb *Keyboard) handleRune(ch rune) {
	if ch == ctrlC {
		if kb.OnInterrupt != nil {
			kb.OnInterrupt()
		}
		return
	}

	k, ok := kb.layout.KeyFor(ch)
	if !ok {
		return
	}

	kb.mu.Lock()
	kb.pressedAt[k] = kb.now()
	kb.mu.Unlock()
}

// State implements c8vm.Keyboard.
func (kb *Keyboard) State() c8vm.KeyboardState {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	state := c8vm.KeyboardState{}
	now := kb.now()
	for k, at := range kb.pressedAt {
		state[k] = !at.IsZero() && now.Sub(at) < kb.HoldDuration
	}

	return state
}
