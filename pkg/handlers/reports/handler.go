package reports

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/cloud-billing-report/pkg/models/api"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler previews generated report emails from the output directory.
type Handler struct {
	dir string
}

func NewHandler(dir string) *Handler {
	return &Handler{dir: dir}
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	entries, err := os.ReadDir(h.dir)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read reports directory")
		http.Error(w, "failed to list reports", http.StatusInternalServerError)
		return
	}

	reports := make([]api.Report, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".eml") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		reports = append(reports, api.Report{
			Name:       entry.Name(),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		logger.Error().Err(err).Msg("failed to encode reports list")
	}
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	// Base strips any path traversal from the URL parameter.
	name := filepath.Base(chi.URLParam(r, "name"))
	if !strings.HasSuffix(name, ".eml") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	content, err := os.ReadFile(filepath.Join(h.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		logger.Error().Err(err).Str("report", name).Msg("failed to read report")
		http.Error(w, "failed to read report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "message/rfc822")
	if _, err := w.Write(content); err != nil {
		logger.Error().Err(err).Str("report", name).Msg("failed to write report response")
	}
}
