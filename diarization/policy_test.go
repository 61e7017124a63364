package diarization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/speakerai/meeting"
)

func spans(pairs ...[2]float64) []meeting.TimeSpan {
	out := make([]meeting.TimeSpan, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, meeting.TimeSpan{Start: p[0], End: p[1]})
	}
	return out
}

func labels(segs []meeting.DiarizationSegment) []string {
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		out = append(out, s.SpeakerLabel)
	}
	return out
}

func TestDiarizeEmpty(t *testing.T) {
	assert.Empty(t, NewPolicy(0, 0).Diarize(nil))
}

func TestDiarizePreservesLengthAndOrder(t *testing.T) {
	in := spans([2]float64{0, 3}, [2]float64{3, 9}, [2]float64{9, 30}, [2]float64{30, 31}, [2]float64{31, 50})
	segs := NewPolicy(2.5, 15).Diarize(in)

	require.Len(t, segs, len(in))
	for i, s := range segs {
		assert.Equal(t, in[i], s.TimeSpan)
		assert.Equal(t, SegmentConfidence, s.Confidence)
	}
}

func TestDiarizeSingleLabelBelowCap(t *testing.T) {
	segs := NewPolicy(2.5, 15).Diarize(spans([2]float64{0, 4}, [2]float64{4, 8}, [2]float64{8, 14}))
	assert.Equal(t, []string{"Speaker A", "Speaker A", "Speaker A"}, labels(segs))
}

func TestDiarizeLongFirstUtteranceHasOneLabel(t *testing.T) {
	segs := NewPolicy(2.5, 15).Diarize(spans([2]float64{0, 20}))
	// the length rule needs a prior segment, but the cumulative cap still rotates
	assert.Equal(t, []string{"Speaker B"}, labels(segs))
}

func TestDiarizeSwitchesWhenCumulativeReachesCap(t *testing.T) {
	segs := NewPolicy(2.5, 15).Diarize(spans([2]float64{0, 5}, [2]float64{5, 10}, [2]float64{10, 16}, [2]float64{16, 20}))
	// cumulative 5, 10, 16 -> switch and reset, then 4
	assert.Equal(t, []string{"Speaker A", "Speaker A", "Speaker B", "Speaker B"}, labels(segs))
}

func TestDiarizeLongUtteranceDoesNotResetCumulative(t *testing.T) {
	segs := NewPolicy(2.5, 15).Diarize(spans([2]float64{0, 1}, [2]float64{1, 21}, [2]float64{21, 22}))
	// second switches on its own length; cumulative stays at 21 so the third switches again
	assert.Equal(t, []string{"Speaker A", "Speaker B", "Speaker C"}, labels(segs))
}

func TestDiarizeNegativeSpanCountsAsZero(t *testing.T) {
	segs := NewPolicy(2.5, 15).Diarize(spans([2]float64{5, 2}, [2]float64{2, 16}))
	assert.Equal(t, []string{"Speaker A", "Speaker A"}, labels(segs))
}

func TestNewPolicyDefaults(t *testing.T) {
	p := NewPolicy(0, -1)
	assert.Equal(t, DefaultMinDuration, p.MinDuration)
	assert.Equal(t, DefaultMaxDuration, p.MaxDuration)
}

func TestLabelSequence(t *testing.T) {
	cases := map[int]string{
		0:   "Speaker A",
		1:   "Speaker B",
		25:  "Speaker Z",
		26:  "Speaker AA",
		27:  "Speaker AB",
		51:  "Speaker AZ",
		52:  "Speaker BA",
		701: "Speaker ZZ",
		702: "Speaker AAA",
	}
	for n, want := range cases {
		assert.Equal(t, want, Label(n), "n=%d", n)
	}
}
