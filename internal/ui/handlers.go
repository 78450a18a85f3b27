package ui

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/maximuthking/csv-viewer/internal/dashboard"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// handleIndex renders the full dashboard page. Subsequent updates arrive as
// SSE element patches.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(renderPage(d.State())))
}

// handleUpdates is the long-lived SSE endpoint. It re-renders the app shell
// on every dashboard state change.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	sse := datastar.NewSSE(w, r)

	updates := d.Subscribe()
	defer d.Unsubscribe(updates)

	// Initial state, then one patch per change.
	if err := sse.PatchElements(appShellHTML(d.State())); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			if err := sse.PatchElements(appShellHTML(d.State())); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	path := r.FormValue("path")
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}
	d.SelectFile(s.baseCtx, path)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	go d.Reload(s.baseCtx)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	page, err := strconv.Atoi(r.FormValue("page"))
	if err != nil {
		http.Error(w, "page must be an integer", http.StatusBadRequest)
		return
	}
	d.SetPage(s.baseCtx, page)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePageSize(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	size, err := strconv.Atoi(r.FormValue("size"))
	if err != nil {
		http.Error(w, "size must be an integer", http.StatusBadRequest)
		return
	}
	d.SetPageSize(s.baseCtx, size)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	column := r.FormValue("column")
	direction := core.SortDirection(r.FormValue("direction"))

	if column == "" || direction == "" {
		d.SetSort(s.baseCtx, nil)
	} else {
		d.SetSort(s.baseCtx, []core.SortSpec{{Column: column, Direction: direction}})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	column := r.FormValue("column")
	if column == "" {
		d.SetFilters(s.baseCtx, nil)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	operator := core.FilterOperator(r.FormValue("operator"))
	if operator == "" {
		operator = core.FilterEq
	}
	d.SetFilters(s.baseCtx, []core.FilterSpec{{
		Column:   column,
		Operator: operator,
		Value:    r.FormValue("value"),
	}})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	column := r.FormValue("column")
	value := r.FormValue("value")
	if column == "" || value == "" {
		http.Error(w, "column and value are required", http.StatusBadRequest)
		return
	}

	mode := core.MatchMode(r.FormValue("mode"))
	if mode == "" {
		mode = core.MatchContains
	}
	d.Locate(s.baseCtx, column, value, mode)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSearch(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	d.ClearSearch()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	// Only keys present in the request become part of the patch; everything
	// else keeps its current value.
	var patch dashboard.ChartOptionsPatch
	if r.Form.Has("chart_type") {
		t := core.ChartType(r.FormValue("chart_type"))
		patch.ChartType = &t
	}
	if r.Form.Has("time_column") {
		c := r.FormValue("time_column")
		patch.TimeColumn = &c
	}
	if r.Form.Has("value_columns") {
		cols := splitColumns(r.FormValue("value_columns"))
		patch.ValueColumns = &cols
	}
	if r.Form.Has("time_bucket") {
		b := r.FormValue("time_bucket")
		patch.TimeBucket = &b
	}
	if r.Form.Has("interpolation") {
		i := core.Interpolation(r.FormValue("interpolation"))
		patch.Interpolation = &i
	}

	d.SetChartOptions(s.baseCtx, patch)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	d := s.dashboardFor(w, r)
	d.RefreshPreview(s.baseCtx)
	d.RefreshSummary(s.baseCtx)
	d.RefreshChart(s.baseCtx)
	w.WriteHeader(http.StatusNoContent)
}

func splitColumns(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cols = append(cols, trimmed)
		}
	}
	return cols
}
