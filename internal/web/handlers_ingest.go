package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/archive"
	"github.com/JonMunkholm/RadioRCA/internal/ingest"
	"github.com/JonMunkholm/RadioRCA/internal/logging"
	"github.com/JonMunkholm/RadioRCA/internal/schema"
	"github.com/go-chi/chi/v5"
)

// handleIngest accepts a multipart vendor export, normalizes it, and
// archives the clean file under its category.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleIngest"

	category := chi.URLParam(r, "category")

	maxSize := s.cfg.Ingest.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		s.respondError(w, r, apperr.Wrap(apperr.KindValidation, op, "parse multipart form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, apperr.Wrap(apperr.KindValidation, op, "read multipart field", err))
		return
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	result, err := s.svc.Ingest.CleanUpload(ctx, category, header.Filename, file)
	if err != nil {
		if errors.Is(err, ingest.ErrTooManyIngests) {
			logging.FromContext(r.Context()).Warn("ingest rejected, limiter full", "category", category)
			w.Header().Set("Retry-After", "30")
			respondErrorJSON(w, MapError(err), http.StatusServiceUnavailable)
			return
		}
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleArchiveSummary lists every category with its file count and
// newest clean file.
func (s *Server) handleArchiveSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Archive.Summary()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// ArchiveListResponse wraps a category listing for JSON encoding.
type ArchiveListResponse struct {
	Category string              `json:"category"`
	Count    int                 `json:"count"`
	Files    []archive.CleanFile `json:"files"`
}

// handleArchiveList lists the clean files of one category, newest first.
// An optional technology parameter filters by file name.
func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleArchiveList"

	category := chi.URLParam(r, "category")
	if !schema.Valid(category) {
		s.respondError(w, r, apperr.Newf(apperr.KindValidation, op, "unknown category %q", category))
		return
	}

	files, err := s.svc.Archive.List(schema.Category(category), r.URL.Query().Get("technology"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if files == nil {
		files = []archive.CleanFile{}
	}

	writeJSON(w, http.StatusOK, ArchiveListResponse{
		Category: category,
		Count:    len(files),
		Files:    files,
	})
}

// handleArchivePreview sniffs the latest clean file of a category and
// returns the detected layout, role mapping, and first rows.
func (s *Server) handleArchivePreview(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleArchivePreview"

	category := chi.URLParam(r, "category")
	def, ok := schema.Get(category)
	if !ok {
		s.respondError(w, r, apperr.Newf(apperr.KindValidation, op, "unknown category %q", category))
		return
	}

	tech := r.URL.Query().Get("technology")
	file, ok := s.svc.Archive.Latest(def.Key, tech)
	if !ok {
		s.respondError(w, r, apperr.Newf(apperr.KindDataUnavailable, op, "no clean file archived for %s", category))
		return
	}

	rows := parseIntParam(r, "rows", ingest.DefaultPreviewRows)
	preview, err := ingest.Preview(file.Path, def, rows)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
