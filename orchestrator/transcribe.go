package orchestrator

import (
	"context"
	"fmt"

	"github.com/maastricht-university/speakerai/diarization"
	"github.com/maastricht-university/speakerai/features"
	"github.com/maastricht-university/speakerai/meeting"
)

// fallbackDuration is assumed when the recording length cannot be read.
const fallbackDuration = 60.0

// NaiveTranscriber is used when no speech service is configured. It cuts
// the recording into fixed chunks with placeholder text.
type NaiveTranscriber struct {
	ChunkSeconds float64
	// Probe reports the recording length; defaults to features.ProbeDuration.
	Probe func(path string) (float64, error)
}

func (n NaiveTranscriber) Transcribe(ctx context.Context, audioPath string) ([]meeting.Utterance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	chunk := n.ChunkSeconds
	if chunk <= 0 {
		chunk = diarization.DefaultMaxDuration
	}
	probe := n.Probe
	if probe == nil {
		probe = features.ProbeDuration
	}

	duration, err := probe(audioPath)
	if err != nil {
		log.WithError(err).Errorf("cannot read duration of %s; assuming %.0f seconds", audioPath, fallbackDuration)
		duration = fallbackDuration
	}
	log.WithField("audio", audioPath).Warn("no speech service configured; using untranscribed segments")

	var out []meeting.Utterance
	for start, i := 0.0, 0; start < duration; i++ {
		end := min(duration, start+chunk)
		out = append(out, meeting.Utterance{
			TimeSpan: meeting.TimeSpan{Start: start, End: end},
			Text:     fmt.Sprintf("[UNTRANSCRIBED SEGMENT %d]", i),
		})
		start = end
	}
	return out, nil
}

// assignSpeakers labels each utterance with the segmentation policy and
// keeps the recognizer's confidence on the turn.
func assignSpeakers(policy *diarization.Policy, utts []meeting.Utterance) []meeting.SpeakerTurn {
	spans := make([]meeting.TimeSpan, len(utts))
	for i, u := range utts {
		spans[i] = u.TimeSpan
	}
	segments := policy.Diarize(spans)

	turns := make([]meeting.SpeakerTurn, len(utts))
	for i, u := range utts {
		confidence := u.Confidence
		turns[i] = meeting.SpeakerTurn{
			TimeSpan:     u.TimeSpan,
			SpeakerLabel: segments[i].SpeakerLabel,
			Text:         u.Text,
			Confidence:   &confidence,
		}
	}
	return turns
}
