// Package gateway is the typed HTTP client for the /v1 analytic service.
// Every remote operation has one method; every failure is normalized into a
// single *Error so callers never see transport-specific error shapes. Retry
// policy belongs to callers.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// RequestTimeout bounds every gateway call.
const RequestTimeout = 30 * time.Second

// NoResponseMessage is reported when the server was unreachable.
const NoResponseMessage = "no response from server"

// Error is the normalized failure shape of every gateway call. Status is the
// HTTP status code, or zero when no response was received.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

// errorPayload matches the structured error body the server produces.
type errorPayload struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// Client calls the analytic service.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a gateway client for the service at baseURL.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: RequestTimeout},
		logger:  logger,
	}
}

// ListDatasets returns the catalog of available datasets.
func (c *Client) ListDatasets(ctx context.Context) ([]core.DatasetDescriptor, error) {
	var datasets []core.DatasetDescriptor
	if err := c.get(ctx, "/v1/files", nil, &datasets); err != nil {
		return nil, err
	}
	return datasets, nil
}

// GetSchema returns the column schema of a dataset.
func (c *Client) GetSchema(ctx context.Context, path string) ([]core.ColumnDescriptor, error) {
	var schema []core.ColumnDescriptor
	if err := c.get(ctx, "/v1/tables", url.Values{"path": {path}}, &schema); err != nil {
		return nil, err
	}
	return schema, nil
}

// GetPreviewPage returns one page of rows plus the filtered total.
func (c *Client) GetPreviewPage(ctx context.Context, req core.PreviewRequest) (*core.PreviewResult, error) {
	var result core.PreviewResult
	if err := c.post(ctx, "/v1/preview", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// LocateRow finds the global row index of the first value match.
func (c *Client) LocateRow(ctx context.Context, req core.LocateRequest) (*core.LocateResult, error) {
	var result core.LocateResult
	if err := c.post(ctx, "/v1/preview/locate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSummary returns per-column statistics.
func (c *Client) GetSummary(ctx context.Context, req core.SummaryRequest) ([]core.ColumnSummary, error) {
	var response core.SummaryResponse
	if err := c.post(ctx, "/v1/summary", req, &response); err != nil {
		return nil, err
	}
	return response.Summaries, nil
}

// GetChartData returns aggregate or sampled chart data.
func (c *Client) GetChartData(ctx context.Context, req core.ChartDataRequest) (*core.TableResult, error) {
	var result core.TableResult
	if err := c.post(ctx, "/v1/chart-data", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RunQuery executes a user SELECT statement against a dataset.
func (c *Client) RunQuery(ctx context.Context, req core.QueryRequest) (*core.QueryResponse, error) {
	var response core.QueryResponse
	if err := c.post(ctx, "/v1/query", req, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// UniqueValues returns distinct non-null values of a column.
func (c *Client) UniqueValues(ctx context.Context, path, column string, limit int) ([]any, error) {
	query := url.Values{"path": {path}, "column": {column}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var values []any
	if err := c.get(ctx, "/v1/unique-values", query, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &Error{Detail: err.Error()}
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return &Error{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request and normalizes every failure into *Error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		// The server never answered; report the fixed no-response message
		// rather than a transport-specific one.
		c.logger.Debug("gateway transport failure", "url", req.URL.String(), "error", err)
		return &Error{Detail: NoResponseMessage}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Detail: NoResponseMessage}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Status: resp.StatusCode, Detail: extractDetail(raw, resp.StatusCode)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Status: resp.StatusCode, Detail: fmt.Sprintf("malformed response: %v", err)}
	}
	return nil
}

// extractDetail pulls the human-readable message out of a structured error
// payload, falling back to the HTTP status text.
func extractDetail(raw []byte, status int) string {
	var payload errorPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(status)
}
