package c8vm

import "sync"

// Display shows the screen. The Runner renders only after the screen changed.
type Display interface {
	// Boot initializes the component
	Boot() error
	Render(*Screen) error
}

// Buzzer sounds while the sound timer is non-zero. The Runner calls Play and
// Stop on transitions only.
type Buzzer interface {
	// Boot initializes the component
	Boot() error
	Play()
	Stop()
}

// DummyDisplay discards every frame
type DummyDisplay struct{}

func NewDummyDisplay() *DummyDisplay {
	return &DummyDisplay{}
}

func (DummyDisplay) Boot() error { return nil }
func (DummyDisplay) Render(screen *Screen) error { return nil }

// DummyBuzzer makes no sound, it only tracks whether it should.
// Hosts may poll IsPlaying from other goroutines.
type DummyBuzzer struct {
	mu      sync.Mutex
	playing bool
}

func NewDummyBuzzer() *DummyBuzzer {
	return &DummyBuzzer{}
}

func (b *DummyBuzzer) Boot() error { return nil }

func (b *DummyBuzzer) Play() {
	b.mu.Lock()
	b.playing = true
	b.mu.Unlock()
}

func (b *DummyBuzzer) Stop() {
	b.mu.Lock()
	b.playing = false
	b.mu.Unlock()
}

func (b *DummyBuzzer) IsPlaying() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.playing
}
