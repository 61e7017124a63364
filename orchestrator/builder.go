package orchestrator

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/speakerai/meeting"
)

// ProfileBuilder turns labeled turns into one profile per speaker label.
type ProfileBuilder struct {
	extractor Extractor
	scorer    Scorer
}

func NewProfileBuilder(extractor Extractor, scorer Scorer) *ProfileBuilder {
	return &ProfileBuilder{extractor: extractor, scorer: scorer}
}

// Build returns profiles in order of each label's first turn. Profiles come
// back unmatched.
func (b *ProfileBuilder) Build(ctx context.Context, turns []meeting.SpeakerTurn) ([]*meeting.SpeakerProfile, error) {
	groups := groupByLabel(turns)
	profiles := make([]*meeting.SpeakerProfile, 0, len(groups))
	for _, g := range groups {
		texts := g.texts()
		fv, err := b.extractor.Extract(ctx, g.span(), texts)
		if err != nil {
			return nil, fmt.Errorf("extract features for %s: %w", g.label, err)
		}
		profiles = append(profiles, &meeting.SpeakerProfile{
			SpeakerLabel:  g.label,
			InferredNames: inferNames(g.turns),
			Features:      fv,
			Stats:         turnStats(g.turns),
			Psychometrics: b.scorer.Score(ctx, texts, fv),
		})
		log.WithFields(logrus.Fields{
			"label": g.label,
			"turns": len(g.turns),
		}).Debug("profile built")
	}
	return profiles, nil
}
