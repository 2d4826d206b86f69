package c8vm

import "time"

// TimerPeriod is the interval between two decrements of the delay and sound timers.
const TimerPeriod = time.Second / 60

// Clock is the source of wall-clock time for the timer pacer
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// SystemClock reads time.Now
var SystemClock Clock = systemClock{}

// TimerPacer decrements the timers at 60Hz regardless of how often it is ticked.
// The part of the elapsed time that does not make a whole period is carried
// over to the next tick.
type TimerPacer struct {
	clock       Clock
	last        time.Time
	timingError time.Duration
}

func NewTimerPacer(clock Clock) *TimerPacer {
	p := &TimerPacer{clock: clock}
	p.Reset()

	return p
}

// Reset restarts the pacer from the current time and drops the remainder
func (p *TimerPacer) Reset() {
	p.last = p.clock.Now()
	p.timingError = 0
}

// Tick applies every whole period elapsed since the previous tick to dt and st.
// It returns the number of periods applied.
func (p *TimerPacer) Tick(dt, st *byte) int {
	now := p.clock.Now()
	elapsed := now.Sub(p.last) + p.timingError
	p.last = now

	if elapsed < 0 {
		// the clock went backwards
		p.timingError = 0
		return 0
	}

	ticks := elapsed / TimerPeriod
	p.timingError = elapsed % TimerPeriod
	if ticks == 0 {
		return 0
	}

	*dt = decay(*dt, ticks)
	*st = decay(*st, ticks)

	return int(ticks)
}

func decay(t byte, ticks time.Duration) byte {
	if time.Duration(t) <= ticks {
		return 0
	}

	return t - byte(ticks)
}
