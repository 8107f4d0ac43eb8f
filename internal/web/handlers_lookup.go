package web

import (
	"net/http"
	"strconv"

	"github.com/JonMunkholm/RadioRCA/internal/apperr"
	"github.com/JonMunkholm/RadioRCA/internal/history"
	"github.com/JonMunkholm/RadioRCA/internal/rca"
)

// PCI ranges: LTE has 504 physical identities, NR has 1008.
const (
	maxLTEPCI = 503
	maxNRPCI  = 1007
)

// handleHistory returns the recent run journal, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := s.svc.History.List()
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// NRLookupResponse carries the cells broadcasting a PCI plus an
// optional grading of a measured RSRP sample.
type NRLookupResponse struct {
	PCI      int           `json:"pci"`
	Cells    []rca.CellRef `json:"cells"`
	RSRPDBm  *float64      `json:"rsrp_dbm,omitempty"`
	Severity string        `json:"severity,omitempty"`
}

// LTELookupResponse carries the anchor cells whose physical layer
// identity pair combines to the requested PCI.
type LTELookupResponse struct {
	PCI   int           `json:"pci"`
	Cells []rca.CellRef `json:"cells"`
}

// handleNRCellLookup resolves pci= against the latest NR configuration
// dump. An optional rsrp= sample is graded alongside.
func (s *Server) handleNRCellLookup(w http.ResponseWriter, r *http.Request) {
	const op = "web.handleNRCellLookup"

	pci, err := parsePCI(r, maxNRPCI)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	refs, err := s.svc.Lookup.NRCellsByPCI(pci)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if refs == nil {
		refs = []rca.CellRef{}
	}

	resp := NRLookupResponse{PCI: pci, Cells: refs}
	if raw := r.URL.Query().Get("rsrp"); raw != "" {
		rsrp, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(w, r, apperr.Newf(apperr.KindValidation, op, "rsrp %q is not a number", raw))
			return
		}
		resp.RSRPDBm = &rsrp
		resp.Severity = rca.RSRPSeverity(rsrp)
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLTEAnchorLookup resolves pci= against the latest LTE dump.
func (s *Server) handleLTEAnchorLookup(w http.ResponseWriter, r *http.Request) {
	pci, err := parsePCI(r, maxLTEPCI)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	refs, err := s.svc.Lookup.LTEAnchorsByPCI(pci)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if refs == nil {
		refs = []rca.CellRef{}
	}

	writeJSON(w, http.StatusOK, LTELookupResponse{PCI: pci, Cells: refs})
}

// parsePCI reads and bounds the pci query parameter.
func parsePCI(r *http.Request, max int) (int, error) {
	const op = "web.parsePCI"

	raw := r.URL.Query().Get("pci")
	if raw == "" {
		return 0, apperr.New(apperr.KindValidation, op, "missing pci parameter")
	}
	pci, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Newf(apperr.KindValidation, op, "pci %q is not an integer", raw)
	}
	if pci < 0 || pci > max {
		return 0, apperr.Newf(apperr.KindValidation, op, "pci %d out of range 0-%d", pci, max)
	}
	return pci, nil
}
