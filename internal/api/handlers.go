package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/maximuthking/csv-viewer/internal/engine"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// errorResponse is the structured error payload. The gateway extracts the
// detail field on the client side.
type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps engine sentinel errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrInvalid):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Detail: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "malformed request body: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListFiles(w http.ResponseWriter, _ *http.Request) {
	datasets, err := s.catalog.List()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if datasets == nil {
		datasets = []core.DatasetDescriptor{}
	}
	writeJSON(w, http.StatusOK, datasets)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "path query parameter is required"})
		return
	}

	schema, err := s.source.Describe(r.Context(), path)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schema)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req core.PreviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.source.Preview(r.Context(), engine.PreviewQuery{
		Path:    req.Path,
		Limit:   req.Limit,
		Offset:  req.Offset,
		OrderBy: req.OrderBy,
		Filters: req.Filters,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req core.LocateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.source.Locate(r.Context(), engine.LocateQuery{
		Path:      req.Path,
		Column:    req.Column,
		Value:     req.Value,
		MatchMode: req.MatchMode,
		Filters:   req.Filters,
		OrderBy:   req.OrderBy,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req core.SummaryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	summaries, err := s.source.Summarize(r.Context(), engine.SummaryQuery{
		Path:    req.Path,
		Columns: req.Columns,
		Filters: req.Filters,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.SummaryResponse{Summaries: summaries})
}

func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	var req core.ChartDataRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.source.ChartData(r.Context(), engine.ChartQuery{
		Path:          req.Path,
		ChartType:     req.ChartType,
		TimeColumn:    req.TimeColumn,
		ValueColumns:  req.ValueColumns,
		TimeBucket:    req.TimeBucket,
		Interpolation: req.Interpolation,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req core.QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.source.Query(r.Context(), req.Path, req.SQL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, core.QueryResponse{
		Rows:     result.Rows,
		Columns:  result.Columns,
		RowCount: len(result.Rows),
	})
}

func (s *Server) handleUniqueValues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	path := query.Get("path")
	column := query.Get("column")
	if path == "" || column == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "path and column query parameters are required"})
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "limit must be an integer"})
			return
		}
		limit = parsed
	}

	values, err := s.source.UniqueValues(r.Context(), path, column, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if values == nil {
		values = []any{}
	}
	writeJSON(w, http.StatusOK, values)
}
