// Package features reduces a speaker's audio and transcript to the fixed
// seven value acoustic summary used for matching.
package features

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/maastricht-university/speakerai/meeting"
)

// Aggregator extracts feature vectors from one meeting's audio.
type Aggregator struct {
	audio    *Audio
	analyzer SignalAnalyzer
}

func NewAggregator(audio *Audio, analyzer SignalAnalyzer) *Aggregator {
	if analyzer == nil {
		analyzer = NewDSPAnalyzer()
	}
	return &Aggregator{audio: audio, analyzer: analyzer}
}

// Extract summarizes the audio inside span together with the words spoken in it.
func (a *Aggregator) Extract(ctx context.Context, span meeting.TimeSpan, texts []string) (meeting.FeatureVector, error) {
	if err := ctx.Err(); err != nil {
		return meeting.FeatureVector{}, err
	}
	window := a.audio.Window(span)
	signals, err := a.analyzer.Analyze(window, a.audio.SampleRate)
	if err != nil {
		return meeting.FeatureVector{}, fmt.Errorf("analyze %.2f-%.2f: %w", span.Start, span.End, err)
	}
	return Reduce(signals, SpeakingRate(texts, span)), nil
}

// Reduce collapses raw signal sequences into a feature vector.
func Reduce(s Signals, speakingRate float64) meeting.FeatureVector {
	pitch := s.Pitch
	if len(pitch) == 0 {
		pitch = []float64{0}
	}
	var fv meeting.FeatureVector
	fv.MeanPitch, fv.PitchStd = MeanStd(pitch)
	fv.EnergyMean, fv.EnergyStd = MeanStd(s.Energy)
	fv.SpectralCentroidMean, fv.SpectralCentroidStd = MeanStd(s.Centroid)
	fv.SpeakingRate = speakingRate
	return fv
}

// SpeakingRate is words per minute over span. Spans shorter than a minute
// count as one minute; empty spans yield 0.
func SpeakingRate(texts []string, span meeting.TimeSpan) float64 {
	if span.Duration() <= 0 {
		return 0
	}
	words := 0
	for _, t := range texts {
		words += len(strings.Fields(t))
	}
	minutes := math.Max(1.0, span.Duration()) / 60.0
	return float64(words) / math.Max(1.0, minutes)
}

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))
	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
