package wav

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/retroenv/retrogolib/assert"
)

func TestBuzzerRecordsTone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buzzer.wav")
	f, err := os.Create(path)
	assert.NoError(t, err)

	now := time.Unix(0, 0)
	b := NewBuzzer(f)
	b.SampleRate = 1000
	b.Frequency = 100
	b.now = func() time.Time { return now }

	assert.NoError(t, b.Boot())
	now = now.Add(100 * time.Millisecond)
	b.Play()
	b.Play()
	now = now.Add(100 * time.Millisecond)
	b.Stop()
	now = now.Add(100 * time.Millisecond)
	assert.NoError(t, b.Close())
	assert.NoError(t, f.Close())

	r, err := os.Open(path)
	assert.NoError(t, err)
	defer r.Close()

	dec := wav.NewDecoder(r)
	assert.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	assert.NoError(t, err)

	assert.Equal(t, 300, len(buf.Data))
	assert.Equal(t, 0, buf.Data[99])
	assert.Equal(t, amplitude, buf.Data[100])
	assert.Equal(t, -amplitude, buf.Data[105])
	assert.Equal(t, 0, buf.Data[200])
}

func TestRenderWithoutPlaying(t *testing.T) {
	b := NewBuzzer(nil)
	b.SampleRate = 100

	data := b.render(time.Second)
	assert.Equal(t, 100, len(data))
	for _, s := range data {
		assert.Equal(t, 0, s)
	}
}
