package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximuthking/csv-viewer/internal/engine"
	"github.com/maximuthking/csv-viewer/internal/testutil"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// stubSource implements DataSource with canned responses per test.
type stubSource struct {
	schema    []core.ColumnDescriptor
	schemaErr error
	preview   *core.PreviewResult
	locate    *core.LocateResult
	summaries []core.ColumnSummary
	chart     *core.TableResult
	chartErr  error

	lastPreview engine.PreviewQuery
}

func (s *stubSource) Describe(context.Context, string) ([]core.ColumnDescriptor, error) {
	return s.schema, s.schemaErr
}

func (s *stubSource) Preview(_ context.Context, q engine.PreviewQuery) (*core.PreviewResult, error) {
	s.lastPreview = q
	return s.preview, nil
}

func (s *stubSource) Locate(context.Context, engine.LocateQuery) (*core.LocateResult, error) {
	return s.locate, nil
}

func (s *stubSource) Summarize(context.Context, engine.SummaryQuery) ([]core.ColumnSummary, error) {
	return s.summaries, nil
}

func (s *stubSource) ChartData(context.Context, engine.ChartQuery) (*core.TableResult, error) {
	return s.chart, s.chartErr
}

func (s *stubSource) UniqueValues(context.Context, string, string, int) ([]any, error) {
	return []any{"a", "b"}, nil
}

func (s *stubSource) Query(_ context.Context, _ string, _ string) (*core.TableResult, error) {
	return &core.TableResult{Rows: []core.Row{{"n": 5.0}}, Columns: []string{"n"}}, nil
}

type stubLister struct {
	datasets []core.DatasetDescriptor
	err      error
}

func (s *stubLister) List() ([]core.DatasetDescriptor, error) {
	return s.datasets, s.err
}

func newTestServer(t *testing.T, source *stubSource, lister *stubLister) *Server {
	t.Helper()
	return NewServer(Config{
		Source:  source,
		Catalog: lister,
		Logger:  testutil.NewTestLogger(t),
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, &stubLister{})
	rec := doJSON(t, srv, http.MethodGet, "/v1/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListFiles(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, &stubLister{
		datasets: []core.DatasetDescriptor{{Name: "a.csv", Path: "a.csv"}},
	})

	rec := doJSON(t, srv, http.MethodGet, "/v1/files", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var datasets []core.DatasetDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &datasets))
	require.Len(t, datasets, 1)
	assert.Equal(t, "a.csv", datasets[0].Path)
}

func TestSchemaRequiresPath(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, &stubLister{})
	rec := doJSON(t, srv, http.MethodGet, "/v1/tables", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemaNotFound(t *testing.T) {
	srv := newTestServer(t, &stubSource{
		schemaErr: fmt.Errorf("%w: ghost.csv", engine.ErrNotFound),
	}, &stubLister{})

	rec := doJSON(t, srv, http.MethodGet, "/v1/tables?path=ghost.csv", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "ghost.csv")
}

func TestPreviewPassesQueryThrough(t *testing.T) {
	source := &stubSource{
		preview: &core.PreviewResult{Rows: []core.Row{}, Columns: []string{"id"}, TotalRows: 3},
	}
	srv := newTestServer(t, source, &stubLister{})

	rec := doJSON(t, srv, http.MethodPost, "/v1/preview", core.PreviewRequest{
		Path:    "a.csv",
		Limit:   25,
		Offset:  50,
		Filters: []core.FilterSpec{{Column: "x", Operator: core.FilterEq, Value: "y"}},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a.csv", source.lastPreview.Path)
	assert.Equal(t, 25, source.lastPreview.Limit)
	assert.Equal(t, 50, source.lastPreview.Offset)
	require.Len(t, source.lastPreview.Filters, 1)
}

func TestPreviewRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, &stubLister{})

	req := httptest.NewRequest(http.MethodPost, "/v1/preview", bytes.NewReader([]byte("{nope")))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChartDataInvalidIs400(t *testing.T) {
	srv := newTestServer(t, &stubSource{
		chartErr: fmt.Errorf("%w: scatter plots require two value columns", engine.ErrInvalid),
	}, &stubLister{})

	rec := doJSON(t, srv, http.MethodPost, "/v1/chart-data", core.ChartDataRequest{
		Path: "a.csv", ChartType: core.ChartScatter, ValueColumns: []string{"x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryResponseShape(t *testing.T) {
	srv := newTestServer(t, &stubSource{}, &stubLister{})

	rec := doJSON(t, srv, http.MethodPost, "/v1/query", core.QueryRequest{
		Path: "a.csv", SQL: "SELECT COUNT(*) AS n FROM csv_view",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp core.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.RowCount)
	assert.Equal(t, []string{"n"}, resp.Columns)
}
