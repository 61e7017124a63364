package orchestrator

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/maastricht-university/speakerai/meeting"
)

// ErrProfileNotFound is returned when a report has no entry for a label.
var ErrProfileNotFound = errors.New("speaker profile not found in report")

var transcriptHeader = []string{"speaker_label", "speaker_name", "start", "end", "text", "confidence"}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteTranscript writes turns as CSV to <dir>/<stem>_transcript.csv.
func WriteTranscript(dir, stem string, turns []meeting.SpeakerTurn) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, stem+"_transcript.csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(transcriptHeader); err != nil {
		return "", err
	}
	for _, t := range turns {
		confidence := 0.0
		if t.Confidence != nil {
			confidence = *t.Confidence
		}
		row := []string{
			t.SpeakerLabel,
			t.SpeakerName,
			strconv.FormatFloat(t.Start, 'f', 2, 64),
			strconv.FormatFloat(t.End, 'f', 2, 64),
			t.Text,
			strconv.FormatFloat(confidence, 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

// WriteReport writes the profile summaries to <dir>/<stem>_speakers.json.
func WriteReport(dir, stem string, profiles []*meeting.SpeakerProfile) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if profiles == nil {
		profiles = []*meeting.SpeakerProfile{}
	}
	path := filepath.Join(dir, stem+"_speakers.json")
	if err := writeJSON(path, profiles); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func ReadReport(path string) ([]*meeting.SpeakerProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profiles []*meeting.SpeakerProfile
	if err := json.Unmarshal(raw, &profiles); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", filepath.Base(path), err)
	}
	return profiles, nil
}

// ProfileFromReport returns the report entry for label with any match
// cleared, ready to be registered under a new name.
func ProfileFromReport(path, label string) (*meeting.SpeakerProfile, error) {
	profiles, err := ReadReport(path)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.SpeakerLabel == label {
			p.MatchedSpeakerID = nil
			p.MatchedSpeakerName = nil
			return p, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", label, ErrProfileNotFound)
}
