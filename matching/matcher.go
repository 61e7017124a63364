// Package matching associates a freshly built speaker profile with a
// previously stored speaker by cosine similarity of their feature vectors.
package matching

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speakerai/meeting"
)

// DefaultThreshold is the minimum similarity for a match.
const DefaultThreshold = 0.82

var log = logrus.WithField("component", "matching")

// RecordLister returns every stored speaker in ascending id order.
type RecordLister interface {
	ListAll(ctx context.Context) ([]meeting.SpeakerRecord, error)
}

type Matcher struct {
	store     RecordLister
	threshold float64
}

// NewMatcher uses DefaultThreshold when threshold is not positive.
func NewMatcher(store RecordLister, threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{store: store, threshold: threshold}
}

func (m *Matcher) Threshold() float64 { return m.threshold }

// Match returns the best stored speaker whose similarity reaches the
// threshold, or nil. A non-empty allow list restricts candidates by name.
// On equal scores the earlier record wins.
func (m *Matcher) Match(ctx context.Context, profile *meeting.SpeakerProfile, allow []string) (*meeting.Match, error) {
	records, err := m.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[name] = true
	}

	query := Vectorize(profile.Features.Map())
	var best *meeting.Match
	bestScore := 0.0
	for _, rec := range records {
		if len(allowed) > 0 && !allowed[rec.Name] {
			continue
		}
		score := CosineSimilarity(query, Vectorize(rec.FeatureVector))
		if score > bestScore && score >= m.threshold {
			bestScore = score
			best = &meeting.Match{SpeakerID: rec.ID, SpeakerName: rec.Name, Score: score}
		}
	}

	if best != nil {
		log.WithFields(logrus.Fields{
			"label": profile.SpeakerLabel,
			"name":  best.SpeakerName,
			"score": best.Score,
		}).Info("matched speaker")
	}
	return best, nil
}

// Vectorize lays features out in meeting.FeatureKeys order. Missing keys
// read as zero and extra keys are ignored.
func Vectorize(features map[string]float64) []float64 {
	out := make([]float64, len(meeting.FeatureKeys))
	for i, k := range meeting.FeatureKeys {
		out[i] = features[k]
	}
	return out
}

// CosineSimilarity is 0 when either vector has zero norm. Vectors of
// different length are compared over their common prefix.
func CosineSimilarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
