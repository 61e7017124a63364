package features

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/speakerai/meeting"
)

type recordingAnalyzer struct {
	windows []int
	signals Signals
	err     error
}

func (r *recordingAnalyzer) Analyze(samples []float64, sampleRate int) (Signals, error) {
	r.windows = append(r.windows, len(samples))
	return r.signals, r.err
}

func testAudio(n, rate int) *Audio {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(i)
	}
	return &Audio{Samples: samples, SampleRate: rate}
}

func TestAudioWindow(t *testing.T) {
	audio := testAudio(100, 10)

	w := audio.Window(meeting.TimeSpan{Start: 2, End: 5})
	require.Len(t, w, 30)
	assert.Equal(t, 20.0, w[0])

	assert.Len(t, audio.Window(meeting.TimeSpan{Start: 20, End: 30}), 100, "window past the end falls back to the whole signal")
	assert.Len(t, audio.Window(meeting.TimeSpan{Start: 4, End: 4}), 100, "empty window falls back to the whole signal")
	assert.Len(t, audio.Window(meeting.TimeSpan{Start: 8, End: 50}), 20)
	assert.InDelta(t, 10.0, audio.Duration(), 1e-9)
}

func TestExtractReducesSignals(t *testing.T) {
	analyzer := &recordingAnalyzer{signals: Signals{
		Pitch:    []float64{100, 200, 300},
		Energy:   []float64{0.5, 0.5},
		Centroid: []float64{1000, 3000},
	}}
	agg := NewAggregator(testAudio(1000, 10), analyzer)

	fv, err := agg.Extract(context.Background(), meeting.TimeSpan{Start: 0, End: 30}, []string{"one two three", "four"})
	require.NoError(t, err)

	assert.Equal(t, []int{300}, analyzer.windows)
	assert.InDelta(t, 200, fv.MeanPitch, 1e-9)
	assert.InDelta(t, math.Sqrt(20000.0/3.0), fv.PitchStd, 1e-9)
	assert.InDelta(t, 0.5, fv.EnergyMean, 1e-9)
	assert.InDelta(t, 0, fv.EnergyStd, 1e-9)
	assert.InDelta(t, 2000, fv.SpectralCentroidMean, 1e-9)
	assert.InDelta(t, 1000, fv.SpectralCentroidStd, 1e-9)
	assert.InDelta(t, 4.0, fv.SpeakingRate, 1e-9)
}

func TestExtractPropagatesAnalyzerError(t *testing.T) {
	agg := NewAggregator(testAudio(10, 10), &recordingAnalyzer{err: errors.New("boom")})
	_, err := agg.Extract(context.Background(), meeting.TimeSpan{Start: 0, End: 1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestReduceEmptyPitchFallsBackToZero(t *testing.T) {
	fv := Reduce(Signals{}, 0)
	assert.Equal(t, meeting.FeatureVector{}, fv)
}

func TestReduceIsIdempotent(t *testing.T) {
	s := Signals{Pitch: []float64{120, 180, 240, 90}, Energy: []float64{0.1, 0.4}, Centroid: []float64{900, 1100, 1300}}
	assert.Equal(t, Reduce(s, 12), Reduce(s, 12))
}

func TestSpeakingRate(t *testing.T) {
	texts := []string{"a b c", "d e"}

	assert.Equal(t, 0.0, SpeakingRate(texts, meeting.TimeSpan{Start: 5, End: 5}))
	assert.Equal(t, 0.0, SpeakingRate(texts, meeting.TimeSpan{Start: 5, End: 1}))
	assert.InDelta(t, 5.0, SpeakingRate(texts, meeting.TimeSpan{Start: 0, End: 30}), 1e-9, "short spans count as one minute")
	assert.InDelta(t, 2.5, SpeakingRate(texts, meeting.TimeSpan{Start: 0, End: 120}), 1e-9)
}

func TestMeanStdPopulation(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5, mean, 1e-9)
	assert.InDelta(t, 2, std, 1e-9)

	mean, std = MeanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}
