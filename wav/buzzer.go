// Package wav records the buzzer to a WAV file.
//
// The buzzer keeps the moments the sound timer started and stopped and
// renders a square wave for each of them when it is closed.
package wav

import (
	"io"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	DefaultSampleRate = 22050
	DefaultFrequency  = 440

	bitDepth  = 16
	amplitude = 0x3FFF
	pcmFormat = 1
)

type span struct {
	from, to time.Duration
}

// Buzzer implements c8vm.Buzzer
type Buzzer struct {
	mu sync.Mutex

	out        io.WriteSeeker
	SampleRate int
	Frequency  int

	now          func() time.Time
	start        time.Time
	playing      bool
	playingSince time.Time
	spans        []span
}

func NewBuzzer(out io.WriteSeeker) *Buzzer {
	return &Buzzer{
		out:        out,
		SampleRate: DefaultSampleRate,
		Frequency:  DefaultFrequency,
		now:        time.Now,
		spans:      make([]span, 0),
	}
}

// Boot implements c8vm.Buzzer. The recording starts here.
func (b *Buzzer) Boot() error {
	b.mu.Lock()
	b.start = b.now()
	b.mu.Unlock()

	return nil
}

// Play implements c8vm.Buzzer.
func (b *Buzzer) Play() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.playing {
		return
	}
	b.playing = true
	b.playingSince = b.now()
}

// Stop implements c8vm.Buzzer.
func (b *Buzzer) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stop()
}

func (b *Buzzer) stop() {
	if !b.playing {
		return
	}
	b.playing = false
	b.spans = append(b.spans, span{
		from: b.playingSince.Sub(b.start),
		to:   b.now().Sub(b.start),
	})
}

// Close renders the recording and writes the WAV file
func (b *Buzzer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stop()

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  b.SampleRate,
		},
		Data:           b.render(b.now().Sub(b.start)),
		SourceBitDepth: bitDepth,
	}

	enc := wav.NewEncoder(b.out, b.SampleRate, bitDepth, 1, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return err
	}

	return enc.Close()
}

func (b *Buzzer) samples(d time.Duration) int {
	return int(d * time.Duration(b.SampleRate) / time.Second)
}

func (b *Buzzer) render(length time.Duration) []int {
	data := make([]int, b.samples(length))
	halfPeriod := max(b.SampleRate/(2*b.Frequency), 1)

	for _, s := range b.spans {
		from, to := b.samples(s.from), min(b.samples(s.to), len(data))
		for i := from; i < to; i++ {
			if (i/halfPeriod)%2 == 0 {
				data[i] = amplitude
			} else {
				data[i] = -amplitude
			}
		}
	}

	return data
}
