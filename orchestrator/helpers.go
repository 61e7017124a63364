package orchestrator

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/maastricht-university/speakerai/meeting"
)

// nameCues are checked in this order on every turn.
var nameCues = []string{"i am", "my name is", "this is"}

type speakerGroup struct {
	label string
	turns []meeting.SpeakerTurn
}

// groupByLabel keeps labels in order of first appearance.
func groupByLabel(turns []meeting.SpeakerTurn) []*speakerGroup {
	var groups []*speakerGroup
	index := map[string]int{}
	for _, t := range turns {
		i, ok := index[t.SpeakerLabel]
		if !ok {
			i = len(groups)
			index[t.SpeakerLabel] = i
			groups = append(groups, &speakerGroup{label: t.SpeakerLabel})
		}
		groups[i].turns = append(groups[i].turns, t)
	}
	return groups
}

// span covers every turn of the group, gaps included.
func (g *speakerGroup) span() meeting.TimeSpan {
	s := meeting.TimeSpan{Start: math.Inf(1), End: math.Inf(-1)}
	for _, t := range g.turns {
		s.Start = math.Min(s.Start, t.Start)
		s.End = math.Max(s.End, t.End)
	}
	return s
}

func (g *speakerGroup) texts() []string {
	out := make([]string, 0, len(g.turns))
	for _, t := range g.turns {
		out = append(out, t.Text)
	}
	return out
}

func turnStats(turns []meeting.SpeakerTurn) meeting.Stats {
	var st meeting.Stats
	for _, t := range turns {
		st.TotalDuration += t.Duration()
		st.WordCount += t.WordCount()
	}
	st.TurnCount = len(turns)
	if st.TurnCount > 0 {
		st.AvgTurnDuration = st.TotalDuration / float64(st.TurnCount)
	}
	return st
}

// inferNames collects self introductions such as "my name is alice" as
// title-cased first names, without duplicates.
func inferNames(turns []meeting.SpeakerTurn) []string {
	caser := cases.Title(language.Und)
	names := []string{}
	for _, t := range turns {
		lower := strings.ToLower(t.Text)
		for _, cue := range nameCues {
			_, rest, found := strings.Cut(lower, cue)
			if !found {
				continue
			}
			fields := strings.Fields(rest)
			if len(fields) == 0 {
				continue
			}
			name := caser.String(fields[0])
			if name != "" && !contains(names, name) {
				names = append(names, name)
			}
		}
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
