// Package orchestrator runs one meeting recording through transcription,
// segmentation, profiling and speaker matching, and writes the exports.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speakerai/clients"
	cfg "github.com/maastricht-university/speakerai/config"
	"github.com/maastricht-university/speakerai/diarization"
	"github.com/maastricht-university/speakerai/features"
	"github.com/maastricht-university/speakerai/matching"
	"github.com/maastricht-university/speakerai/meeting"
	"github.com/maastricht-university/speakerai/psychometrics"
)

var log = logrus.WithField("component", "orchestrator")

type Pipeline struct {
	cfg         *cfg.Root
	store       ProfileStore
	scorer      Scorer
	matcher     Matcher
	transcriber Transcriber
	policy      *diarization.Policy
	analyzer    features.SignalAnalyzer
	viz         Visualizer
	metrics     *Metrics
}

type Option func(*Pipeline)

func WithTranscriber(t Transcriber) Option { return func(p *Pipeline) { p.transcriber = t } }
func WithScorer(s Scorer) Option           { return func(p *Pipeline) { p.scorer = s } }
func WithMatcher(m Matcher) Option         { return func(p *Pipeline) { p.matcher = m } }
func WithVisualizer(v Visualizer) Option   { return func(p *Pipeline) { p.viz = v } }
func WithMetrics(m *Metrics) Option        { return func(p *Pipeline) { p.metrics = m } }

func WithAnalyzer(a features.SignalAnalyzer) Option {
	return func(p *Pipeline) { p.analyzer = a }
}

// NewPipeline wires the HTTP collaborators that have a URL configured and
// local fallbacks for the rest.
func NewPipeline(c *cfg.Root, store ProfileStore, opts ...Option) *Pipeline {
	http := clients.NewHTTP(c.ServiceTimeout())
	p := &Pipeline{
		cfg:      c,
		store:    store,
		policy:   diarization.NewPolicy(c.Segmentation.MinDuration, c.Segmentation.MaxDuration),
		analyzer: features.NewDSPAnalyzer(),
	}

	var sentiment psychometrics.Sentiment = psychometrics.Unavailable{}
	if u := c.Services.Sentiment.URL; u != "" {
		sentiment = clients.SentimentService{HTTP: http, URL: u}
	}
	p.scorer = psychometrics.NewScorer(sentiment)
	p.matcher = matching.NewMatcher(store, c.Matching.SimilarityThreshold)

	if u := c.Services.ASR.URL; u != "" {
		p.transcriber = clients.ASRTranscriber{HTTP: http, URL: u}
	} else {
		p.transcriber = NaiveTranscriber{ChunkSeconds: p.policy.MaxDuration}
	}
	if u := c.Services.Visualization.URL; u != "" {
		p.viz = clients.VisualizationService{HTTP: http, URL: u, OutputDir: filepath.Join(c.Paths.Outputs, "charts")}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process builds one profile per speaker label, matches each against the
// store and writes matched names onto the turns in place.
func (p *Pipeline) Process(ctx context.Context, extractor Extractor, turns []meeting.SpeakerTurn, team []string) ([]*meeting.SpeakerProfile, error) {
	profiles, err := NewProfileBuilder(extractor, p.scorer).Build(ctx, turns)
	if err != nil {
		return nil, err
	}
	for _, prof := range profiles {
		p.metrics.incProfiles()
		m, err := p.matcher.Match(ctx, prof, team)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", prof.SpeakerLabel, err)
		}
		if m == nil {
			continue
		}
		prof.ApplyMatch(*m)
		p.metrics.incMatches()
		for i := range turns {
			if turns[i].SpeakerLabel == prof.SpeakerLabel {
				turns[i].SpeakerName = m.SpeakerName
			}
		}
	}
	return profiles, nil
}

// Run processes one recording end to end and writes the transcript CSV and
// the speaker report.
func (p *Pipeline) Run(ctx context.Context, audioPath string, team []string) (*meeting.Meeting, error) {
	started := time.Now()

	audio, err := features.LoadAudio(audioPath, p.cfg.Audio.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("load audio: %w", err)
	}
	utts, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}

	turns := assignSpeakers(p.policy, utts)
	profiles, err := p.Process(ctx, features.NewAggregator(audio, p.analyzer), turns, team)
	if err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	transcriptPath, err := WriteTranscript(p.cfg.TranscriptDir(), stem, turns)
	if err != nil {
		return nil, err
	}
	reportPath, err := WriteReport(p.cfg.ReportDir(), stem, profiles)
	if err != nil {
		return nil, err
	}

	p.visualize(ctx, turns, profiles)
	p.metrics.incMeetings()
	p.metrics.observeRun(time.Since(started))

	log.WithFields(logrus.Fields{
		"audio":      audioPath,
		"turns":      len(turns),
		"speakers":   len(profiles),
		"transcript": transcriptPath,
		"report":     reportPath,
	}).Info("meeting processed")

	return &meeting.Meeting{
		Turns:          turns,
		Profiles:       profiles,
		TranscriptPath: transcriptPath,
		ReportPath:     reportPath,
	}, nil
}

// SaveProfile stores profile as a new speaker.
func (p *Pipeline) SaveProfile(ctx context.Context, name string, profile *meeting.SpeakerProfile, description string) (int64, error) {
	id, err := p.store.Add(ctx, name, profile.Features.Map(), profile.Stats.Map(), profile.Psychometrics.Map(), description)
	if err != nil {
		return 0, fmt.Errorf("save profile %s: %w", name, err)
	}
	p.metrics.incRegistrations()
	return id, nil
}

// UpdateProfile overwrites a stored speaker with profile.
func (p *Pipeline) UpdateProfile(ctx context.Context, id int64, profile *meeting.SpeakerProfile, description string) error {
	if err := p.store.Update(ctx, id, profile.Features.Map(), profile.Stats.Map(), profile.Psychometrics.Map(), description); err != nil {
		return fmt.Errorf("update profile %d: %w", id, err)
	}
	p.metrics.incRegistrations()
	return nil
}

// RegisterFromReport saves the report entry for label under name.
func (p *Pipeline) RegisterFromReport(ctx context.Context, reportPath, label, name, description string) (int64, error) {
	profile, err := ProfileFromReport(reportPath, label)
	if err != nil {
		return 0, err
	}
	id, err := p.SaveProfile(ctx, name, profile, description)
	if err != nil {
		return 0, err
	}
	log.WithFields(logrus.Fields{"id": id, "name": name, "label": label}).Info("registered speaker")
	return id, nil
}

// ConfirmFromReport refreshes stored speaker id with the report entry for label.
func (p *Pipeline) ConfirmFromReport(ctx context.Context, reportPath, label string, id int64) error {
	profile, err := ProfileFromReport(reportPath, label)
	if err != nil {
		return err
	}
	if err := p.UpdateProfile(ctx, id, profile, ""); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"id": id, "label": label}).Info("confirmed speaker")
	return nil
}

// Speakers lists the stored speakers.
func (p *Pipeline) Speakers(ctx context.Context) ([]meeting.SpeakerRecord, error) {
	return p.store.ListAll(ctx)
}

// visualize pushes charts when a visualizer is configured. Failures are
// logged only.
func (p *Pipeline) visualize(ctx context.Context, turns []meeting.SpeakerTurn, profiles []*meeting.SpeakerProfile) {
	if p.viz == nil {
		return
	}
	for _, prof := range profiles {
		path, err := p.viz.Radar(ctx, prof.DisplayName(), meeting.PsychometricKeys, prof.Psychometrics.Values())
		if err != nil {
			log.WithError(err).WithField("label", prof.SpeakerLabel).Warn("radar chart failed")
			continue
		}
		log.WithField("path", path).Debug("radar chart written")
	}

	timestamps := make([]float64, len(turns))
	speakers := make([]string, len(turns))
	for i, t := range turns {
		timestamps[i] = t.Start
		speakers[i] = t.SpeakerLabel
		if t.SpeakerName != "" {
			speakers[i] = t.SpeakerName
		}
	}
	if _, err := p.viz.Timeline(ctx, timestamps, speakers); err != nil {
		log.WithError(err).Warn("timeline chart failed")
	}
}
