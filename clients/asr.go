package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/maastricht-university/speakerai/meeting"
)

type TransSeg struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
type ASRResp struct {
	Segments []TransSeg `json:"segments"`
	Language string     `json:"language"`
}

func (h *HTTP) ASR(ctx context.Context, url, audioPath string) (*ASRResp, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, err
	}
	fd, err := os.Open(audioPath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, err
	}
	if err = w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url+"/transcribe", &b)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := h.c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("asr %s: %s", resp.Status, string(body))
	}

	var out ASRResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("asr decode: %w", err)
	}
	return &out, nil
}

// ASRTranscriber turns the speech service's segments into utterances.
type ASRTranscriber struct {
	HTTP *HTTP
	URL  string
}

func (t ASRTranscriber) Transcribe(ctx context.Context, audioPath string) ([]meeting.Utterance, error) {
	resp, err := t.HTTP.ASR(ctx, t.URL, audioPath)
	if err != nil {
		return nil, err
	}
	out := make([]meeting.Utterance, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		out = append(out, meeting.Utterance{
			TimeSpan:   meeting.TimeSpan{Start: s.Start, End: s.End},
			Text:       s.Text,
			Confidence: s.Confidence,
		})
	}
	return out, nil
}
