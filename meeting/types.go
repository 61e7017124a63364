// Package meeting holds the data model shared by the analysis stages:
// time spans, diarized segments, speaker turns and per-speaker profiles.
package meeting

import (
	"math"
	"strings"
	"time"
)

// TimeSpan is a closed interval in seconds from the start of the recording.
type TimeSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration never goes negative.
func (s TimeSpan) Duration() float64 { return math.Max(0, s.End-s.Start) }

// Utterance is one timestamped piece of recognized speech.
type Utterance struct {
	TimeSpan
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// DiarizationSegment assigns a speaker label to an utterance span.
type DiarizationSegment struct {
	TimeSpan
	SpeakerLabel string  `json:"speaker_label"`
	Confidence   float64 `json:"confidence"`
}

// SpeakerTurn is a labeled utterance. SpeakerName stays empty until a stored
// speaker is matched to the label.
type SpeakerTurn struct {
	TimeSpan
	SpeakerLabel string   `json:"speaker_label"`
	SpeakerName  string   `json:"speaker_name,omitempty"`
	Text         string   `json:"text"`
	Confidence   *float64 `json:"confidence,omitempty"`
}

// WordCount counts whitespace separated words.
func (t SpeakerTurn) WordCount() int { return len(strings.Fields(t.Text)) }

// Match is an accepted association with a stored speaker.
type Match struct {
	SpeakerID   int64   `json:"speaker_id"`
	SpeakerName string  `json:"speaker_name"`
	Score       float64 `json:"score"`
}

// SpeakerRecord is a speaker persisted in the profile store.
type SpeakerRecord struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	FeatureVector map[string]float64 `json:"feature_vector"`
	Stats         map[string]float64 `json:"stats"`
	Psychometrics map[string]float64 `json:"psychometrics"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// Meeting bundles the result of one pipeline run.
type Meeting struct {
	Turns          []SpeakerTurn     `json:"turns"`
	Profiles       []*SpeakerProfile `json:"profiles"`
	TranscriptPath string            `json:"transcript_path,omitempty"`
	ReportPath     string            `json:"report_path,omitempty"`
}
