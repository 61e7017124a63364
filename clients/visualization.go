package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// --- Visualization ---
type TimelineReq struct {
	Timestamps []float64 `json:"timestamps"`
	Speakers   []string  `json:"speakers"`
	OutputDir  string    `json:"output_dir,omitempty"`
}

type TimelineResp struct{ Status, Path string }

func (h *HTTP) GenerateTimeline(ctx context.Context, url string, req TimelineReq) (*TimelineResp, error) {
	var out TimelineResp
	if err := h.postJSON(ctx, url+"/generate-timeline", "viz timeline", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RadarReq struct {
	Categories  []string  `json:"categories"`
	Values      []float64 `json:"values"`
	SpeakerName string    `json:"speaker_name"`
	OutputDir   string    `json:"output_dir,omitempty"`
}
type RadarResp struct{ Status, Path string }

func (h *HTTP) GenerateRadar(ctx context.Context, url string, req RadarReq) (*RadarResp, error) {
	var out RadarResp
	if err := h.postJSON(ctx, url+"/generate-radar", "viz radar", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (h *HTTP) postJSON(ctx context.Context, endpoint, svc string, in, out any) error {
	b, _ := json.Marshal(in)
	r, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	r.Header.Set("Content-Type", "application/json")
	resp, err := h.c.Do(r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s", svc, resp.Status, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s decode: %w", svc, err)
	}
	return nil
}

// VisualizationService renders charts for a processed meeting.
type VisualizationService struct {
	HTTP      *HTTP
	URL       string
	OutputDir string
}

func (v VisualizationService) Radar(ctx context.Context, speaker string, categories []string, values []float64) (string, error) {
	resp, err := v.HTTP.GenerateRadar(ctx, v.URL, RadarReq{
		Categories:  categories,
		Values:      values,
		SpeakerName: speaker,
		OutputDir:   v.OutputDir,
	})
	if err != nil {
		return "", err
	}
	return resp.Path, nil
}

func (v VisualizationService) Timeline(ctx context.Context, timestamps []float64, speakers []string) (string, error) {
	resp, err := v.HTTP.GenerateTimeline(ctx, v.URL, TimelineReq{
		Timestamps: timestamps,
		Speakers:   speakers,
		OutputDir:  v.OutputDir,
	})
	if err != nil {
		return "", err
	}
	return resp.Path, nil
}
