package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

// assessRequest is the body of POST /v1/assess. The document is either a
// JSON object (a structured record) or a JSON string (plain text).
type assessRequest struct {
	Document json.RawMessage `json:"document"`
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return
	}
	if len(req.Document) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "document is required")
		return
	}

	var input interface{}
	var record map[string]interface{}
	if err := json.Unmarshal(req.Document, &record); err == nil {
		input = record
	} else {
		var text string
		if err := json.Unmarshal(req.Document, &text); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "document must be a JSON object or string")
			return
		}
		input = text
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	assessment := s.runner.Assess(ctx, input)
	log.Info().
		Str("workflow_id", assessment.Metadata.WorkflowID).
		Str("verdict", assessment.IsScam).
		Msg("api_document_assessed")
	writeJSON(w, http.StatusOK, assessment)
}

func (s *Server) handleRunsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	var from, to time.Time
	if v := q.Get("from"); v != "" {
		from, _ = time.Parse(time.RFC3339, v)
	}
	if v := q.Get("to"); v != "" {
		to, _ = time.Parse(time.RFC3339, v)
	}

	runs, err := s.runs.List(r.Context(), q.Get("route"), q.Get("verdict"), from, to, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	artifact, err := s.runs.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, artifact)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from, to time.Time
	if v := q.Get("from"); v != "" {
		from, _ = time.Parse(time.RFC3339, v)
	}
	if v := q.Get("to"); v != "" {
		to, _ = time.Parse(time.RFC3339, v)
	}

	counts, err := s.runs.VerdictCounts(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"verdicts": counts})
}

// handleTools lists the tools advertised by every configured tool server.
// Unreachable servers are reported inline rather than failing the request.
func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	out := map[string]interface{}{}
	for _, server := range s.tools.Servers() {
		tools, err := s.tools.ListTools(r.Context(), server)
		if err != nil {
			out[server] = map[string]string{"error": err.Error()}
			continue
		}
		out[server] = tools
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"servers": out})
}
