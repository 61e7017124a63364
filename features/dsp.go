package features

import (
	"errors"
	"math"
	"math/cmplx"
	"sort"
)

// Signals are the raw per-frame sequences a SignalAnalyzer produces for one
// window of audio.
type Signals struct {
	Pitch    []float64
	Energy   []float64
	Centroid []float64
}

// SignalAnalyzer turns PCM samples into raw pitch, energy and spectral
// centroid sequences.
type SignalAnalyzer interface {
	Analyze(samples []float64, sampleRate int) (Signals, error)
}

// DSPAnalyzer computes signals in-process.
//
// Energy is RMS over EnergyFrame-second frames with a half-frame hop.
// Pitch and centroid come from FFTSize-point Hann windowed frames: the
// centroid is the magnitude-weighted mean frequency of each frame, pitch
// candidates are spectral peaks between PitchMin and PitchMax, and only peaks
// louder than the median of the whole magnitude grid are kept.
type DSPAnalyzer struct {
	EnergyFrame   float64
	FFTSize       int
	Hop           int
	PitchMin      float64
	PitchMax      float64
	PeakThreshold float64
}

// NewDSPAnalyzer returns an analyzer with 50ms energy frames, 2048-point FFT
// frames with a 512 sample hop and a 150-4000Hz pitch range.
func NewDSPAnalyzer() *DSPAnalyzer {
	return &DSPAnalyzer{
		EnergyFrame:   0.05,
		FFTSize:       2048,
		Hop:           512,
		PitchMin:      150,
		PitchMax:      4000,
		PeakThreshold: 0.1,
	}
}

func (d *DSPAnalyzer) Analyze(samples []float64, sampleRate int) (Signals, error) {
	if sampleRate <= 0 {
		return Signals{}, errors.New("invalid sample rate")
	}
	pitch, centroid := d.spectralFrames(samples, sampleRate)
	return Signals{
		Pitch:    pitch,
		Energy:   d.energy(samples, sampleRate),
		Centroid: centroid,
	}, nil
}

func (d *DSPAnalyzer) energy(samples []float64, sampleRate int) []float64 {
	frameLength := int(d.EnergyFrame * float64(sampleRate))
	if frameLength < 1 {
		frameLength = 1
	}
	hop := frameLength / 2
	if hop < 1 {
		hop = 1
	}
	var out []float64
	for idx := 0; idx < len(samples); idx += hop {
		end := min(idx+frameLength, len(samples))
		out = append(out, rootMeanSquare(samples[idx:end]))
	}
	if len(out) == 0 {
		return []float64{0}
	}
	return out
}

type peak struct {
	freq, mag float64
}

func (d *DSPAnalyzer) spectralFrames(samples []float64, sampleRate int) (pitch, centroid []float64) {
	size := nextPowerOfTwo(d.FFTSize)
	hop := d.Hop
	if hop < 1 {
		hop = size / 4
	}
	binCount := size/2 + 1
	freqs := make([]float64, binCount)
	for i := range freqs {
		freqs[i] = float64(i) * float64(sampleRate) / float64(size)
	}
	lo, hi := binCount, 0
	for i, f := range freqs {
		if f >= d.PitchMin && f < d.PitchMax {
			lo = min(lo, i)
			hi = max(hi, i+1)
		}
	}

	var peaks []peak
	frames := 0
	buffer := make([]float64, size)
	magnitude := make([]float64, binCount)
	for start := 0; start < len(samples); start += hop {
		clear(buffer)
		copy(buffer, samples[start:min(start+size, len(samples))])
		applyHannWindow(buffer)
		spectrum := FFT(buffer)
		for i := 0; i < binCount; i++ {
			magnitude[i] = cmplx.Abs(spectrum[i])
		}
		centroid = append(centroid, spectralCentroid(magnitude, freqs))
		peaks = append(peaks, d.framePeaks(magnitude, freqs, lo, hi)...)
		frames++
	}

	grid := frames * max(hi-lo, 0)
	mags := make([]float64, len(peaks))
	for i, p := range peaks {
		mags[i] = p.mag
	}
	median := medianWithZeros(mags, grid-len(peaks))
	for _, p := range peaks {
		if p.mag > median {
			pitch = append(pitch, p.freq)
		}
	}
	if len(pitch) == 0 {
		pitch = []float64{0}
	}
	return pitch, centroid
}

// framePeaks returns local maxima in [lo, hi) louder than PeakThreshold times
// the loudest bin of that range, with parabolic frequency refinement.
func (d *DSPAnalyzer) framePeaks(magnitude, freqs []float64, lo, hi int) []peak {
	if hi-lo < 3 {
		return nil
	}
	ref := 0.0
	for i := lo; i < hi; i++ {
		ref = math.Max(ref, magnitude[i])
	}
	if ref == 0 {
		return nil
	}
	threshold := d.PeakThreshold * ref
	binWidth := freqs[1] - freqs[0]
	var out []peak
	for i := max(lo, 1); i < hi && i+1 < len(magnitude); i++ {
		m := magnitude[i]
		if m <= threshold || m <= magnitude[i-1] || m < magnitude[i+1] {
			continue
		}
		a, b := magnitude[i-1], magnitude[i+1]
		shift := 0.0
		if denom := a - 2*m + b; denom != 0 {
			shift = 0.5 * (a - b) / denom
		}
		out = append(out, peak{freq: freqs[i] + shift*binWidth, mag: m})
	}
	return out
}

// medianWithZeros is the median of values extended with zeros extra zero
// entries. values must be non-negative.
func medianWithZeros(values []float64, zeros int) float64 {
	zeros = max(zeros, 0)
	total := len(values) + zeros
	if total == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	at := func(k int) float64 {
		if k < zeros {
			return 0
		}
		return sorted[k-zeros]
	}
	if total%2 == 1 {
		return at(total / 2)
	}
	return (at(total/2-1) + at(total/2)) / 2
}

func rootMeanSquare(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func spectralCentroid(magnitude, freqs []float64) float64 {
	var weightedSum float64
	var total float64
	for i := range magnitude {
		weightedSum += magnitude[i] * freqs[i]
		total += magnitude[i]
	}
	if total == 0 {
		return 0
	}
	return weightedSum / total
}

func applyHannWindow(buffer []float64) {
	length := len(buffer)
	if length <= 1 {
		return
	}
	for i := range buffer {
		buffer[i] *= 0.5 * (1 - math.Cos((2*math.Pi*float64(i))/float64(length-1)))
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// FFT computes the discrete Fourier transform of a real signal whose length
// is a power of two (radix-2 Cooley-Tukey).
func FFT(input []float64) []complex128 {
	values := make([]complex128, len(input))
	for i, v := range input {
		values[i] = complex(v, 0)
	}
	return recursiveFFT(values)
}

func recursiveFFT(values []complex128) []complex128 {
	n := len(values)
	if n <= 1 {
		return values
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = values[2*i]
		odd[i] = values[2*i+1]
	}
	even = recursiveFFT(even)
	odd = recursiveFFT(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		t := cmplx.Rect(1, -2*math.Pi*float64(k)/float64(n)) * odd[k]
		out[k] = even[k] + t
		out[k+n/2] = even[k] - t
	}
	return out
}
