package psychometrics

import (
	"context"
	"errors"
)

// ErrUnavailable is returned by the Unavailable sentiment variant.
var ErrUnavailable = errors.New("sentiment analyzer unavailable")

// Polarity is a VADER style polarity breakdown: Compound in [-1,1], the
// proportions in [0,1].
type Polarity struct {
	Compound float64 `json:"compound"`
	Pos      float64 `json:"pos"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
}

// Sentiment scores free text. Callers check Available before relying on it.
type Sentiment interface {
	Available() bool
	PolarityScores(ctx context.Context, text string) (Polarity, error)
}

// Unavailable is the Sentiment used when no analyzer is configured.
type Unavailable struct{}

func (Unavailable) Available() bool { return false }

func (Unavailable) PolarityScores(context.Context, string) (Polarity, error) {
	return Polarity{}, ErrUnavailable
}
