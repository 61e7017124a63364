// Package diarization assigns speaker labels to utterance spans without any
// acoustic clustering. A label owns consecutive speech until a duration cap
// is reached, then the next label takes over.
package diarization

import (
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speakerai/meeting"
)

const (
	DefaultMinDuration = 2.5
	DefaultMaxDuration = 15.0

	// SegmentConfidence is attached to every heuristic segment.
	SegmentConfidence = 0.5

	labelPrefix = "Speaker "
)

var log = logrus.WithField("component", "diarization")

// Policy is the duration-capped labeling state machine.
type Policy struct {
	// MinDuration is accepted as configuration but not enforced.
	MinDuration float64
	MaxDuration float64
}

// NewPolicy returns a policy; non-positive durations fall back to defaults.
func NewPolicy(minDuration, maxDuration float64) *Policy {
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}
	if maxDuration <= 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Policy{MinDuration: minDuration, MaxDuration: maxDuration}
}

// Diarize returns one segment per utterance, in input order.
func (p *Policy) Diarize(utterances []meeting.TimeSpan) []meeting.DiarizationSegment {
	if len(utterances) == 0 {
		return nil
	}
	segments := make([]meeting.DiarizationSegment, 0, len(utterances))
	speaker := 0
	cumulative := 0.0
	for _, u := range utterances {
		d := u.Duration()
		cumulative += d
		switch {
		case d > p.MaxDuration && len(segments) > 0:
			speaker++
		case cumulative >= p.MaxDuration:
			speaker++
			cumulative = 0
		}
		segments = append(segments, meeting.DiarizationSegment{
			TimeSpan:     u,
			SpeakerLabel: Label(speaker),
			Confidence:   SegmentConfidence,
		})
	}
	log.WithFields(logrus.Fields{
		"segments": len(segments),
		"labels":   speaker + 1,
	}).Debug("diarized utterances")
	return segments
}

// Label renders the n-th speaker label: 0 -> "Speaker A", 25 -> "Speaker Z",
// 26 -> "Speaker AA".
func Label(n int) string {
	return labelPrefix + letters(n)
}

func letters(n int) string {
	if n < 0 {
		n = 0
	}
	var buf []byte
	for {
		buf = append(buf, byte('A'+n%26))
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}
