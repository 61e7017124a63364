package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maastricht-university/speakerai/psychometrics"
)

func TestASRTranscriber(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		body, _ := io.ReadAll(f)
		assert.Equal(t, "meeting.wav", hdr.Filename)
		assert.Equal(t, "RIFF", string(body))

		_ = json.NewEncoder(w).Encode(ASRResp{Segments: []TransSeg{
			{Start: 0, End: 4.5, Text: "hello there", Confidence: 0.9},
			{Start: 4.5, End: 7, Text: "hi"},
		}})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "meeting.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	utts, err := ASRTranscriber{HTTP: NewHTTP(time.Second), URL: srv.URL}.Transcribe(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, utts, 2)
	assert.Equal(t, 4.5, utts[0].End)
	assert.Equal(t, "hello there", utts[0].Text)
	assert.Equal(t, 0.9, utts[0].Confidence)
	assert.Equal(t, 4.5, utts[1].Start)
}

func TestASRErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "meeting.wav")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewHTTP(0).ASR(context.Background(), srv.URL, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "asr 503")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestSentimentService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/polarity", r.URL.Path)
		var req PolarityReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "great work", req.Text)
		_, _ = w.Write([]byte(`{"compound":0.62,"pos":0.7,"neg":0,"neu":0.3}`))
	}))
	defer srv.Close()

	s := SentimentService{HTTP: NewHTTP(time.Second), URL: srv.URL}
	require.True(t, s.Available())
	p, err := s.PolarityScores(context.Background(), "great work")
	require.NoError(t, err)
	assert.Equal(t, psychometrics.Polarity{Compound: 0.62, Pos: 0.7, Neu: 0.3}, p)
}

func TestSentimentServiceWithoutURL(t *testing.T) {
	s := SentimentService{HTTP: NewHTTP(0)}
	assert.False(t, s.Available())
	_, err := s.PolarityScores(context.Background(), "x")
	assert.ErrorIs(t, err, psychometrics.ErrUnavailable)
}

func TestSentimentDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := SentimentService{HTTP: NewHTTP(0), URL: srv.URL}.PolarityScores(context.Background(), "x")
	assert.ErrorContains(t, err, "sentiment decode")
}

func TestVisualizationService(t *testing.T) {
	var radar RadarReq
	var timeline TimelineReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/generate-radar":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&radar))
			_, _ = w.Write([]byte(`{"Status":"ok","Path":"/out/radar.png"}`))
		case "/generate-timeline":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&timeline))
			_, _ = w.Write([]byte(`{"Status":"ok","Path":"/out/timeline.png"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	v := VisualizationService{HTTP: NewHTTP(0), URL: srv.URL, OutputDir: "/out"}
	path, err := v.Radar(context.Background(), "Alice", []string{"happy", "sad"}, []float64{2, 0})
	require.NoError(t, err)
	assert.Equal(t, "/out/radar.png", path)
	assert.Equal(t, "Alice", radar.SpeakerName)
	assert.Equal(t, []float64{2, 0}, radar.Values)

	path, err = v.Timeline(context.Background(), []float64{0, 5}, []string{"Alice", "Speaker B"})
	require.NoError(t, err)
	assert.Equal(t, "/out/timeline.png", path)
	assert.Equal(t, []string{"Alice", "Speaker B"}, timeline.Speakers)
	assert.Equal(t, "/out", timeline.OutputDir)
}

func TestVisualizationErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewHTTP(0).GenerateRadar(context.Background(), srv.URL, RadarReq{})
	assert.ErrorContains(t, err, "viz radar 404")
}
