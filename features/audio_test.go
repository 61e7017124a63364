package features

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeToneWAV(t *testing.T, rate beep.SampleRate, seconds float64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	i := 0
	tone := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for j := range samples {
			v := 0.5 * math.Sin(2*math.Pi*440*float64(i)/float64(rate))
			samples[j] = [2]float64{v, v}
			i++
		}
		return len(samples), true
	})
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(rate.N(secondsDuration(seconds)), tone), format))
	return path
}

func TestLoadAudioResamplesToTargetRate(t *testing.T) {
	path := writeToneWAV(t, 8000, 1)

	audio, err := LoadAudio(path, 16000)
	require.NoError(t, err)
	assert.Equal(t, 16000, audio.SampleRate)
	assert.InDelta(t, 1.0, audio.Duration(), 0.01)

	peak := 0.0
	for _, s := range audio.Samples {
		peak = math.Max(peak, math.Abs(s))
	}
	assert.InDelta(t, 0.5, peak, 0.05)
}

func TestProbeDuration(t *testing.T) {
	d, err := ProbeDuration(writeToneWAV(t, 16000, 2.5))
	require.NoError(t, err)
	assert.InDelta(t, 2.5, d, 1e-3)
}

func TestLoadAudioRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0o644))

	_, err := LoadAudio(path, 16000)
	assert.ErrorContains(t, err, "unsupported audio format")
}

func TestLoadAudioMissingFile(t *testing.T) {
	_, err := LoadAudio(filepath.Join(t.TempDir(), "missing.wav"), 16000)
	assert.Error(t, err)
}

func secondsDuration(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
