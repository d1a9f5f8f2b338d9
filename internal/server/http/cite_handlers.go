package httpserver

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/scholarai/discovery-service/internal/citation"
	"github.com/scholarai/discovery-service/internal/domain"
)

type rawCiteRequest struct {
	Format string          `json:"format"`
	Paper  json.RawMessage `json:"paper"`
}

// citePaper handles POST /cite.
func (s *Server) citePaper(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var raw rawCiteRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if len(raw.Paper) == 0 || string(raw.Paper) == "null" || string(raw.Paper) == "{}" {
		writeError(w, http.StatusBadRequest, "No paper data provided")
		return
	}

	var paper domain.Paper
	if err := json.Unmarshal(raw.Paper, &paper); err != nil {
		writeError(w, http.StatusBadRequest, "invalid paper object")
		return
	}

	style := citation.ParseStyle(raw.Format)
	formatted, err := citation.Format(paper, style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.metrics.CitationsFormatted.WithLabelValues(string(style)).Inc()
	writeJSON(w, http.StatusOK, citeResponse{Citation: formatted})
}

// batchCitations handles POST /cite/batch.
func (s *Server) batchCitations(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	var req batchCiteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return
	}
	if len(req.Papers) == 0 {
		writeError(w, http.StatusBadRequest, "No papers provided")
		return
	}

	style := citation.ParseStyle(req.Format)
	formatted, err := citation.FormatBatch(req.Papers, style)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.metrics.CitationsFormatted.WithLabelValues(string(style)).Add(float64(len(req.Papers)))
	writeJSON(w, http.StatusOK, batchCiteResponse{Citations: formatted})
}
