package features

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"

	"github.com/maastricht-university/speakerai/meeting"
)

// DefaultSampleRate is the rate audio is resampled to before analysis.
const DefaultSampleRate = 16000

const resampleQuality = 4

// Audio is a mono PCM signal.
type Audio struct {
	Samples    []float64
	SampleRate int
}

// Duration in seconds.
func (a *Audio) Duration() float64 {
	if a == nil || a.SampleRate <= 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// Window returns the samples covered by span. An empty window falls back to
// the whole signal so aggregation never runs on nothing.
func (a *Audio) Window(span meeting.TimeSpan) []float64 {
	n := len(a.Samples)
	start := clampIndex(int(span.Start*float64(a.SampleRate)), n)
	end := clampIndex(int(span.End*float64(a.SampleRate)), n)
	if end <= start {
		return a.Samples
	}
	return a.Samples[start:end]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// LoadAudio decodes a WAV or MP3 file, mixes it down to mono and resamples it
// to sampleRate.
func LoadAudio(path string, sampleRate int) (*Audio, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	streamer, format, err := openStream(path)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	target := beep.SampleRate(sampleRate)
	if format.SampleRate != target {
		s = beep.Resample(resampleQuality, format.SampleRate, target, streamer)
	}

	samples := make([]float64, 0, streamer.Len())
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			samples = append(samples, (buf[i][0]+buf[i][1])/2)
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return &Audio{Samples: samples, SampleRate: sampleRate}, nil
}

// ProbeDuration reports the length of an audio file in seconds without
// decoding its samples.
func ProbeDuration(path string) (float64, error) {
	streamer, format, err := openStream(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	if format.SampleRate <= 0 {
		return 0, fmt.Errorf("decode %s: invalid sample rate", filepath.Base(path))
	}
	return format.SampleRate.D(streamer.Len()).Seconds(), nil
}

func openStream(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, beep.Format{}, err
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}
