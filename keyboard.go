package c8vm

import (
	"sync"

	"golang.org/x/exp/slices"
)

// KeyboardState holds the current press state of keys 0x0-0xF
type KeyboardState [16]bool

// IsPressed reports the state of key k. Only the low nibble is used.
func (ks KeyboardState) IsPressed(k byte) bool {
	return ks[k&0x0F]
}

// FirstPressed returns the lowest-indexed key that is down
func (ks KeyboardState) FirstPressed() (byte, bool) {
	k := slices.Index(ks[:], true)
	if k < 0 {
		return 0, false
	}

	return byte(k), true
}

// Keyboard is a source of key presses polled by the Runner before every frame
type Keyboard interface {
	// Boot initializes the component
	Boot() error
	State() KeyboardState
}

// InMemoryKeyboard is a keyboard fed by the host. Safe for concurrent use.
type InMemoryKeyboard struct {
	mu    sync.Mutex
	state KeyboardState
}

func NewInMemoryKeyboard() *InMemoryKeyboard {
	return &InMemoryKeyboard{}
}

// Boot implements Keyboard.
func (kb *InMemoryKeyboard) Boot() error {
	return nil
}

// State implements Keyboard.
func (kb *InMemoryKeyboard) State() KeyboardState {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	return kb.state
}

func (kb *InMemoryKeyboard) Set(state KeyboardState) {
	kb.mu.Lock()
	kb.state = state
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Press(k byte) {
	if k > 15 {
		return
	}

	kb.mu.Lock()
	kb.state[k] = true
	kb.mu.Unlock()
}

func (kb *InMemoryKeyboard) Release(k byte) {
	if k > 15 {
		return
	}

	kb.mu.Lock()
	kb.state[k] = false
	kb.mu.Unlock()
}

// KeyboardLayout lists the host rune bound to each key, indexed by key
type KeyboardLayout [16]rune

// DefaultKeyboardLayout maps the left side of a QWERTY keyboard to the hex pad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var DefaultKeyboardLayout = KeyboardLayout{
	'x', '1', '2', '3',
	'q', 'w', 'e', 'a',
	's', 'd', 'z', 'c',
	'4', 'r', 'f', 'v',
}

// NeoKeyboardLayout binds keys in index order to the Neo layout home rows
var NeoKeyboardLayout = KeyboardLayout{
	'1', '2', '3', '4',
	'x', 'v', 'l', 'c',
	'u', 'i', 'a', 'e',
	'ü', 'ö', 'ä', 'p',
}

// LookupMap inverts the layout into rune -> key
func LookupMap(layout KeyboardLayout) map[rune]byte {
	m := make(map[rune]byte, len(layout))
	for k, r := range layout {
		m[r] = byte(k)
	}

	return m
}

// KeyFor returns the key bound to r in layout
func (layout KeyboardLayout) KeyFor(r rune) (byte, bool) {
	k := slices.Index(layout[:], r)
	if k < 0 {
		return 0, false
	}

	return byte(k), true
}
