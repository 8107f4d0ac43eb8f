package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/export"
	"github.com/JonMunkholm/RadioRCA/internal/history"
	"github.com/JonMunkholm/RadioRCA/internal/logging"
	"github.com/JonMunkholm/RadioRCA/internal/rca"
)

// handleHealth reports liveness and the ingest limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"ingest": s.svc.Ingest.Limiter().Status(),
	})
}

// handleAnalyze runs a coverage analysis for the location in the request
// body and returns the full result.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleAnalyze"

	var req rca.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, apperr.Wrap(apperr.KindValidation, op, "decode request body", err))
		return
	}
	if req.SiteLimit == 0 {
		req.SiteLimit = s.cfg.Analysis.DefaultSiteLimit
	}

	result, err := s.svc.Engine.Analyze(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.recordHistory(r.Context(), req, result)
	writeJSON(w, http.StatusOK, result)
}

// handleAnalyzeExport runs the same analysis from query parameters and
// streams the report as a download. format=csv selects the flat per-cell
// records; the default is the XLSX workbook.
func (s *Server) handleAnalyzeExport(w http.ResponseWriter, r *http.Request) {
	req, err := analysisRequestFromQuery(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if req.SiteLimit == 0 {
		req.SiteLimit = s.cfg.Analysis.DefaultSiteLimit
	}

	result, err := s.svc.Engine.Analyze(r.Context(), req)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.recordHistory(r.Context(), req, result)

	timestamp := result.GeneratedAt.Format("20060102_150405")
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rca_%s.csv"`, timestamp))
		if err := export.WriteCSV(w, result); err != nil {
			logging.FromContext(r.Context()).Error("csv export failed", "error", err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rca_%s.xlsx"`, timestamp))
	if err := export.WriteWorkbook(w, result); err != nil {
		logging.FromContext(r.Context()).Error("workbook export failed", "error", err)
	}
}

// analysisRequestFromQuery builds an AnalysisRequest from lat, lon,
// site_limit, and technology query parameters.
func analysisRequestFromQuery(r *http.Request) (rca.AnalysisRequest, error) {
	const op = "web.analysisRequest"
	q := r.URL.Query()

	lat, err := strconv.ParseFloat(q.Get("lat"), 64)
	if err != nil {
		return rca.AnalysisRequest{}, apperr.Newf(apperr.KindValidation, op, "latitude %q is not a number", q.Get("lat"))
	}
	lon, err := strconv.ParseFloat(q.Get("lon"), 64)
	if err != nil {
		return rca.AnalysisRequest{}, apperr.Newf(apperr.KindValidation, op, "longitude %q is not a number", q.Get("lon"))
	}

	req := rca.AnalysisRequest{Latitude: lat, Longitude: lon, Technology: q.Get("technology")}
	if v := q.Get("site_limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return rca.AnalysisRequest{}, apperr.Newf(apperr.KindValidation, op, "site_limit %q is not an integer", v)
		}
		req.SiteLimit = n
	}
	return req, nil
}

// recordHistory appends a completed run to the journal. Failures are
// logged, not surfaced: the analysis itself already succeeded.
func (s *Server) recordHistory(ctx context.Context, req rca.AnalysisRequest, res *rca.AnalysisResult) {
	entry := history.Entry{
		RunID:      res.RunID,
		Timestamp:  res.GeneratedAt,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		SiteLimit:  req.SiteLimit,
		Technology: req.Technology,
		Verdict:    res.Verdict,
	}
	if err := s.svc.History.Add(entry); err != nil {
		logging.FromContext(ctx).Warn("history append failed", "error", err)
	}
}
