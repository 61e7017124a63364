package features

import (
	"math"
	"math/cmplx"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return sorted[len(sorted)/2]
}

func TestEnergyFramesOfConstantSignal(t *testing.T) {
	samples := make([]float64, 16000)
	for i := range samples {
		samples[i] = 0.5
	}
	s, err := NewDSPAnalyzer().Analyze(samples, 16000)
	require.NoError(t, err)

	// 800 sample frames, 400 sample hop
	require.Len(t, s.Energy, 40)
	for _, e := range s.Energy {
		assert.InDelta(t, 0.5, e, 1e-9)
	}
}

func TestPitchAndCentroidOfSine(t *testing.T) {
	// 500Hz sits exactly on bin 64 of a 2048 point FFT at 16kHz.
	s, err := NewDSPAnalyzer().Analyze(sine(500, 16000, 16000), 16000)
	require.NoError(t, err)

	require.NotEmpty(t, s.Pitch)
	assert.InDelta(t, 500, median(s.Pitch), 5)
	require.Len(t, s.Centroid, 32)
	assert.InDelta(t, 500, median(s.Centroid), 25)
}

func TestSilenceYieldsZeroPitch(t *testing.T) {
	s, err := NewDSPAnalyzer().Analyze(make([]float64, 4096), 16000)
	require.NoError(t, err)

	assert.Equal(t, []float64{0}, s.Pitch)
	for _, c := range s.Centroid {
		assert.Zero(t, c)
	}
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	s, err := NewDSPAnalyzer().Analyze(nil, 16000)
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, s.Pitch)
	assert.Equal(t, []float64{0}, s.Energy)
	assert.Empty(t, s.Centroid)
}

func TestAnalyzeRejectsBadSampleRate(t *testing.T) {
	_, err := NewDSPAnalyzer().Analyze([]float64{1}, 0)
	assert.Error(t, err)
}

func TestMedianWithZeros(t *testing.T) {
	assert.Zero(t, medianWithZeros(nil, 0))
	assert.Zero(t, medianWithZeros([]float64{5, 6}, 3))
	assert.InDelta(t, 2.5, medianWithZeros([]float64{5, 3, 2}, 1), 1e-9)
	assert.InDelta(t, 3, medianWithZeros([]float64{5, 3, 2}, 0), 1e-9)
	assert.InDelta(t, 1, medianWithZeros([]float64{2}, 1), 1e-9)
}

func TestFFTMatchesNaiveDFT(t *testing.T) {
	input := []float64{1, 2, 0, -1, 3, 0.5, -2, 4}
	got := FFT(input)
	n := len(input)
	for k := 0; k < n; k++ {
		var want complex128
		for i, v := range input {
			want += complex(v, 0) * cmplx.Rect(1, -2*math.Pi*float64(k*i)/float64(n))
		}
		assert.InDelta(t, real(want), real(got[k]), 1e-9)
		assert.InDelta(t, imag(want), imag(got[k]), 1e-9)
	}
}

func TestSpectralCentroid(t *testing.T) {
	assert.InDelta(t, 150, spectralCentroid([]float64{0, 1, 1}, []float64{0, 100, 200}), 1e-9)
	assert.Zero(t, spectralCentroid([]float64{0, 0}, []float64{0, 100}))
}
