// Package psychometrics scores a speaker's affect from what they said and
// how they sounded.
package psychometrics

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speakerai/meeting"
)

var log = logrus.WithField("component", "psychometrics")

// emotionKeywords maps each basic emotion to the words that count towards it.
var emotionKeywords = []struct {
	name     string
	keywords []string
}{
	{"excited", []string{"excited", "thrilled", "pumped", "energetic"}},
	{"angry", []string{"angry", "furious", "frustrated", "mad"}},
	{"happy", []string{"happy", "glad", "pleased", "delighted"}},
	{"sad", []string{"sad", "upset", "down", "unhappy"}},
	{"fun", []string{"fun", "enjoy", "laugh", "joke", "humor"}},
}

// Scorer combines text polarity, keyword counts and acoustic energy/pitch.
type Scorer struct {
	sentiment Sentiment
}

// NewScorer wraps s; a nil s is treated as Unavailable.
func NewScorer(s Sentiment) *Scorer {
	if s == nil {
		s = Unavailable{}
	}
	return &Scorer{sentiment: s}
}

// Score returns all eight psychometric values. It never fails: a missing or
// failing sentiment analyzer leaves valence, arousal and dominance at their
// acoustic baseline.
func (s *Scorer) Score(ctx context.Context, texts []string, acoustic meeting.FeatureVector) meeting.PsychometricScores {
	combined := strings.Join(texts, " ")
	var scores meeting.PsychometricScores

	if s.sentiment.Available() {
		polarity, err := s.sentiment.PolarityScores(ctx, combined)
		if err != nil {
			log.WithError(err).Warn("sentiment analysis failed; using keyword heuristics")
		} else {
			scores.Valence = polarity.Compound
			scores.Arousal = polarity.Pos - polarity.Neg
			scores.Dominance = polarity.Pos
		}
	} else {
		log.Warn("sentiment analyzer not available; using keyword heuristics")
	}

	counts := KeywordCounts(combined)
	scores.Excited = counts["excited"]
	scores.Angry = counts["angry"]
	scores.Happy = counts["happy"]
	scores.Sad = counts["sad"]
	scores.Fun = counts["fun"]

	scores.Arousal += acoustic.EnergyMean / 10.0
	scores.Dominance += acoustic.MeanPitch / 400.0
	return scores
}

// KeywordCounts counts emotion keywords among the whitespace separated,
// punctuation trimmed, lower-cased tokens of text.
func KeywordCounts(text string) map[string]float64 {
	tokens := make(map[string]int)
	for _, tok := range strings.Fields(text) {
		tokens[strings.ToLower(strings.Trim(tok, ".,!?"))]++
	}
	out := make(map[string]float64, len(emotionKeywords))
	for _, e := range emotionKeywords {
		count := 0
		for _, k := range e.keywords {
			count += tokens[k]
		}
		out[e.name] = float64(count)
	}
	return out
}
