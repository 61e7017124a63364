package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/maastricht-university/speakerai/psychometrics"
)

// --- Sentiment (/polarity) ---
type PolarityReq struct {
	Text string `json:"text"`
}

func (h *HTTP) Polarity(ctx context.Context, url, text string) (*psychometrics.Polarity, error) {
	b, _ := json.Marshal(PolarityReq{Text: text})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/polarity", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("sentiment %s: %s", resp.Status, string(body))
	}

	var out psychometrics.Polarity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sentiment decode: %w", err)
	}
	return &out, nil
}

// SentimentService is a psychometrics.Sentiment backed by the polarity
// service. It is available whenever a URL is configured.
type SentimentService struct {
	HTTP *HTTP
	URL  string
}

func (s SentimentService) Available() bool { return s.HTTP != nil && s.URL != "" }

func (s SentimentService) PolarityScores(ctx context.Context, text string) (psychometrics.Polarity, error) {
	if !s.Available() {
		return psychometrics.Polarity{}, psychometrics.ErrUnavailable
	}
	p, err := s.HTTP.Polarity(ctx, s.URL, text)
	if err != nil {
		return psychometrics.Polarity{}, err
	}
	return *p, nil
}
