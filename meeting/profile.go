package meeting

// Feature keys in lexicographic order. This order defines the vector layout
// used for similarity.
var FeatureKeys = []string{
	"energy_mean",
	"energy_std",
	"mean_pitch",
	"pitch_std",
	"speaking_rate",
	"spectral_centroid_mean",
	"spectral_centroid_std",
}

// PsychometricKeys lists the score names in report order.
var PsychometricKeys = []string{
	"excited", "angry", "happy", "sad", "fun", "valence", "arousal", "dominance",
}

// FeatureVector is the fixed acoustic summary of one speaker.
type FeatureVector struct {
	MeanPitch            float64 `json:"mean_pitch"`
	PitchStd             float64 `json:"pitch_std"`
	SpeakingRate         float64 `json:"speaking_rate"`
	EnergyMean           float64 `json:"energy_mean"`
	EnergyStd            float64 `json:"energy_std"`
	SpectralCentroidMean float64 `json:"spectral_centroid_mean"`
	SpectralCentroidStd  float64 `json:"spectral_centroid_std"`
}

func (f FeatureVector) Map() map[string]float64 {
	return map[string]float64{
		"mean_pitch":             f.MeanPitch,
		"pitch_std":              f.PitchStd,
		"speaking_rate":          f.SpeakingRate,
		"energy_mean":            f.EnergyMean,
		"energy_std":             f.EnergyStd,
		"spectral_centroid_mean": f.SpectralCentroidMean,
		"spectral_centroid_std":  f.SpectralCentroidStd,
	}
}

// FeatureVectorFromMap reads a stored feature map; missing keys read as zero.
func FeatureVectorFromMap(m map[string]float64) FeatureVector {
	return FeatureVector{
		MeanPitch:            m["mean_pitch"],
		PitchStd:             m["pitch_std"],
		SpeakingRate:         m["speaking_rate"],
		EnergyMean:           m["energy_mean"],
		EnergyStd:            m["energy_std"],
		SpectralCentroidMean: m["spectral_centroid_mean"],
		SpectralCentroidStd:  m["spectral_centroid_std"],
	}
}

// PsychometricScores is the fixed affect summary of one speaker.
type PsychometricScores struct {
	Excited   float64 `json:"excited"`
	Angry     float64 `json:"angry"`
	Happy     float64 `json:"happy"`
	Sad       float64 `json:"sad"`
	Fun       float64 `json:"fun"`
	Valence   float64 `json:"valence"`
	Arousal   float64 `json:"arousal"`
	Dominance float64 `json:"dominance"`
}

func (p PsychometricScores) Map() map[string]float64 {
	return map[string]float64{
		"excited":   p.Excited,
		"angry":     p.Angry,
		"happy":     p.Happy,
		"sad":       p.Sad,
		"fun":       p.Fun,
		"valence":   p.Valence,
		"arousal":   p.Arousal,
		"dominance": p.Dominance,
	}
}

// Values returns the scores in PsychometricKeys order.
func (p PsychometricScores) Values() []float64 {
	return []float64{p.Excited, p.Angry, p.Happy, p.Sad, p.Fun, p.Valence, p.Arousal, p.Dominance}
}

func PsychometricScoresFromMap(m map[string]float64) PsychometricScores {
	return PsychometricScores{
		Excited:   m["excited"],
		Angry:     m["angry"],
		Happy:     m["happy"],
		Sad:       m["sad"],
		Fun:       m["fun"],
		Valence:   m["valence"],
		Arousal:   m["arousal"],
		Dominance: m["dominance"],
	}
}

// Stats summarizes the turns of one speaker.
type Stats struct {
	TotalDuration   float64 `json:"total_duration"`
	TurnCount       int     `json:"turn_count"`
	AvgTurnDuration float64 `json:"avg_turn_duration"`
	WordCount       int     `json:"word_count"`
}

func (s Stats) Map() map[string]float64 {
	return map[string]float64{
		"total_duration":    s.TotalDuration,
		"turn_count":        float64(s.TurnCount),
		"avg_turn_duration": s.AvgTurnDuration,
		"word_count":        float64(s.WordCount),
	}
}

// SpeakerProfile aggregates everything known about one speaker label in a
// single meeting. Its JSON form is the report entry.
type SpeakerProfile struct {
	SpeakerLabel       string             `json:"speaker_label"`
	MatchedSpeakerID   *int64             `json:"matched_speaker_id"`
	MatchedSpeakerName *string            `json:"matched_speaker_name"`
	InferredNames      []string           `json:"inferred_names"`
	Features           FeatureVector      `json:"features"`
	Stats              Stats              `json:"stats"`
	Psychometrics      PsychometricScores `json:"psychometrics"`
}

// ApplyMatch records a confirmed match. Id and name are always set together.
func (p *SpeakerProfile) ApplyMatch(m Match) {
	id, name := m.SpeakerID, m.SpeakerName
	p.MatchedSpeakerID = &id
	p.MatchedSpeakerName = &name
}

// Matched reports whether a stored speaker has been associated.
func (p *SpeakerProfile) Matched() bool {
	return p.MatchedSpeakerID != nil && p.MatchedSpeakerName != nil
}

// DisplayName prefers the matched name, then the first inferred name, then the label.
func (p *SpeakerProfile) DisplayName() string {
	if p.MatchedSpeakerName != nil {
		return *p.MatchedSpeakerName
	}
	if len(p.InferredNames) > 0 {
		return p.InferredNames[0]
	}
	return p.SpeakerLabel
}
