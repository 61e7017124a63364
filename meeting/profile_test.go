package meeting

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureKeysMatchVector(t *testing.T) {
	keys := make([]string, 0, 7)
	for k := range (FeatureVector{}).Map() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, FeatureKeys, keys)
	assert.True(t, sort.StringsAreSorted(FeatureKeys))
}

func TestFeatureVectorFromMapMissingKeys(t *testing.T) {
	fv := FeatureVectorFromMap(map[string]float64{"mean_pitch": 120, "unknown": 3})
	assert.Equal(t, FeatureVector{MeanPitch: 120}, fv)

	full := FeatureVector{MeanPitch: 1, PitchStd: 2, SpeakingRate: 3, EnergyMean: 4, EnergyStd: 5, SpectralCentroidMean: 6, SpectralCentroidStd: 7}
	assert.Equal(t, full, FeatureVectorFromMap(full.Map()))
}

func TestPsychometricScoresCarryAllKeys(t *testing.T) {
	p := PsychometricScores{Excited: 1, Dominance: 8}
	m := p.Map()
	require.Len(t, m, len(PsychometricKeys))
	values := p.Values()
	for i, k := range PsychometricKeys {
		assert.Equal(t, m[k], values[i], k)
	}
	assert.Equal(t, p, PsychometricScoresFromMap(m))
}

func TestApplyMatchSetsBothFields(t *testing.T) {
	p := &SpeakerProfile{SpeakerLabel: "Speaker A", InferredNames: []string{"Ali"}}
	assert.False(t, p.Matched())
	assert.Equal(t, "Ali", p.DisplayName())

	p.ApplyMatch(Match{SpeakerID: 9, SpeakerName: "Alice", Score: 0.93})
	require.True(t, p.Matched())
	assert.Equal(t, int64(9), *p.MatchedSpeakerID)
	assert.Equal(t, "Alice", p.DisplayName())

	assert.Equal(t, "Speaker B", (&SpeakerProfile{SpeakerLabel: "Speaker B"}).DisplayName())
}

func TestProfileJSONShape(t *testing.T) {
	raw, err := json.Marshal(&SpeakerProfile{SpeakerLabel: "Speaker A", InferredNames: []string{}})
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Len(t, m, 7)
	assert.JSONEq(t, "null", string(m["matched_speaker_id"]))
	assert.JSONEq(t, "[]", string(m["inferred_names"]))
}

func TestTimeSpanAndTurn(t *testing.T) {
	assert.Zero(t, TimeSpan{Start: 5, End: 2}.Duration())
	assert.Equal(t, 3.0, TimeSpan{Start: 2, End: 5}.Duration())
	assert.Equal(t, 3, SpeakerTurn{Text: "  we are  happy "}.WordCount())
	assert.Equal(t, 0, SpeakerTurn{}.WordCount())
}
