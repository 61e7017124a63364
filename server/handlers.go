package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/maastricht-university/speakerai/orchestrator"
	"github.com/maastricht-university/speakerai/store"
)

var audioExtensions = map[string]bool{".mp3": true, ".wav": true}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, APIResponse{Success: false, Error: err.Error()})
}

func (s *Server) analyze(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("missing audio file: %w", err))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !audioExtensions[ext] {
		fail(c, http.StatusBadRequest, errors.New("only MP3 and WAV files are supported"))
		return
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	name := uuid.NewString() + "_" + filepath.Base(file.Filename)
	dst := filepath.Join(s.cfg.UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		fail(c, http.StatusInternalServerError, fmt.Errorf("save upload: %w", err))
		return
	}

	m, err := s.svc.Run(c.Request.Context(), dst, splitTeam(c.PostForm("team_members")))
	if err != nil {
		log.WithError(err).WithField("upload", name).Error("analysis failed")
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: m})
}

func (s *Server) register(c *gin.Context) {
	label := strings.TrimSpace(c.PostForm("speaker_label"))
	name := strings.TrimSpace(c.PostForm("speaker_name"))
	if label == "" || name == "" {
		fail(c, http.StatusBadRequest, errors.New("speaker_label and speaker_name are required"))
		return
	}
	report, ok := s.resolveOutput(c, c.PostForm("report_path"))
	if !ok {
		return
	}

	id, err := s.svc.RegisterFromReport(c.Request.Context(), report, label, name, c.PostForm("description"))
	if err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"speaker_id": id, "speaker_name": name}})
}

func (s *Server) confirm(c *gin.Context) {
	label := strings.TrimSpace(c.PostForm("speaker_label"))
	id, err := strconv.ParseInt(c.PostForm("speaker_id"), 10, 64)
	if label == "" || err != nil {
		fail(c, http.StatusBadRequest, errors.New("speaker_label and a numeric speaker_id are required"))
		return
	}
	if c.PostForm("confirm") != "yes" {
		c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"confirmed": false}})
		return
	}
	report, ok := s.resolveOutput(c, c.PostForm("report_path"))
	if !ok {
		return
	}

	if err := s.svc.ConfirmFromReport(c.Request.Context(), report, label, id); err != nil {
		fail(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"confirmed": true, "speaker_id": id}})
}

func (s *Server) speakers(c *gin.Context) {
	records, err := s.svc.Speakers(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: records})
}

func (s *Server) download(contentType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path, ok := s.resolveOutput(c, c.Query("path"))
		if !ok {
			return
		}
		c.Header("Content-Type", contentType)
		c.FileAttachment(path, filepath.Base(path))
	}
}

// resolveOutput accepts only existing files below the output directory. It
// writes the error response itself.
func (s *Server) resolveOutput(c *gin.Context, path string) (string, bool) {
	if path == "" {
		fail(c, http.StatusBadRequest, errors.New("path is required"))
		return "", false
	}
	abs, ok := within(s.cfg.OutputDir, path)
	if !ok {
		fail(c, http.StatusForbidden, errors.New("path is outside the output directory"))
		return "", false
	}
	if info, err := os.Stat(abs); err != nil || info.IsDir() {
		fail(c, http.StatusNotFound, errors.New("file not found"))
		return "", false
	}
	return abs, true
}

func within(root, path string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return absPath, true
}

func splitTeam(raw string) []string {
	var team []string
	for _, member := range strings.Split(raw, ",") {
		if m := strings.TrimSpace(member); m != "" {
			team = append(team, m)
		}
	}
	return team
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, orchestrator.ErrProfileNotFound):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrSpeakerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
