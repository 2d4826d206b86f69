package gui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/guslan/c8vm"
)

// runeToKey maps the characters of a layout to raylib key codes.
// Raylib reports keys by their US QWERTY position.
var runeToKey = map[rune]int32{
	'0': rl.KeyZero, '1': rl.KeyOne, '2': rl.KeyTwo, '3': rl.KeyThree, '4': rl.KeyFour,
	'5': rl.KeyFive, '6': rl.KeySix, '7': rl.KeySeven, '8': rl.KeyEight, '9': rl.KeyNine,
	'a': rl.KeyA, 'b': rl.KeyB, 'c': rl.KeyC, 'd': rl.KeyD, 'e': rl.KeyE, 'f': rl.KeyF,
	'g': rl.KeyG, 'h': rl.KeyH, 'i': rl.KeyI, 'j': rl.KeyJ, 'k': rl.KeyK, 'l': rl.KeyL,
	'm': rl.KeyM, 'n': rl.KeyN, 'o': rl.KeyO, 'p': rl.KeyP, 'q': rl.KeyQ, 'r': rl.KeyR,
	's': rl.KeyS, 't': rl.KeyT, 'u': rl.KeyU, 'v': rl.KeyV, 'w': rl.KeyW, 'x': rl.KeyX,
	'y': rl.KeyY, 'z': rl.KeyZ,
	'ü': rl.KeyLeftBracket, 'ö': rl.KeySemicolon, 'ä': rl.KeyApostrophe,
}

func keyLookupMap(layout c8vm.KeyboardLayout) map[int32]byte {
	lookup := map[int32]byte{}
	for r, k := range c8vm.LookupMap(layout) {
		if code, ok := runeToKey[r]; ok {
			lookup[code] = k
		}
	}

	return lookup
}
