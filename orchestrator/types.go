package orchestrator

import (
	"context"

	"github.com/maastricht-university/speakerai/meeting"
)

// Extractor summarizes the audio of a time span; see features.Aggregator.
type Extractor interface {
	Extract(ctx context.Context, span meeting.TimeSpan, texts []string) (meeting.FeatureVector, error)
}

type Scorer interface {
	Score(ctx context.Context, texts []string, acoustic meeting.FeatureVector) meeting.PsychometricScores
}

type Matcher interface {
	Match(ctx context.Context, profile *meeting.SpeakerProfile, allow []string) (*meeting.Match, error)
}

// ProfileStore persists known speakers. ListAll must return records in
// ascending id order.
type ProfileStore interface {
	Add(ctx context.Context, name string, features, stats, psych map[string]float64, description string) (int64, error)
	Update(ctx context.Context, id int64, features, stats, psych map[string]float64, description string) error
	ListAll(ctx context.Context) ([]meeting.SpeakerRecord, error)
	FindByName(ctx context.Context, name string) (*meeting.SpeakerRecord, error)
}

// Transcriber turns an audio file into timestamped utterances.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]meeting.Utterance, error)
}

// Visualizer renders charts and returns where they were written.
type Visualizer interface {
	Radar(ctx context.Context, speaker string, categories []string, values []float64) (string, error)
	Timeline(ctx context.Context, timestamps []float64, speakers []string) (string, error)
}
