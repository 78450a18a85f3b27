package core

// Request and response payloads of the /v1 analytic service. The gateway
// client marshals them and the API server decodes them.

// PreviewRequest asks for one page of rows.
type PreviewRequest struct {
	Path    string       `json:"path"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	OrderBy []SortSpec   `json:"order_by,omitempty"`
	Filters []FilterSpec `json:"filters,omitempty"`
}

// LocateRequest asks for the global row index of the first value match.
type LocateRequest struct {
	Path      string       `json:"path"`
	Column    string       `json:"column"`
	Value     any          `json:"value"`
	MatchMode MatchMode    `json:"match_mode"`
	Filters   []FilterSpec `json:"filters,omitempty"`
	OrderBy   []SortSpec   `json:"order_by,omitempty"`
}

// SummaryRequest asks for per-column statistics. An empty Columns slice
// means all columns; an empty Filters slice means the whole dataset.
type SummaryRequest struct {
	Path    string       `json:"path"`
	Columns []string     `json:"columns,omitempty"`
	Filters []FilterSpec `json:"filters,omitempty"`
}

// SummaryResponse wraps the per-column statistics.
type SummaryResponse struct {
	Summaries []ColumnSummary `json:"summaries"`
}

// ChartDataRequest asks for aggregate or sampled chart data.
type ChartDataRequest struct {
	Path          string        `json:"path"`
	ChartType     ChartType     `json:"chart_type"`
	TimeColumn    string        `json:"time_column,omitempty"`
	ValueColumns  []string      `json:"value_columns"`
	TimeBucket    string        `json:"time_bucket,omitempty"`
	Interpolation Interpolation `json:"interpolation,omitempty"`
}

// QueryRequest runs a user-supplied SELECT against a dataset.
type QueryRequest struct {
	Path string `json:"path"`
	SQL  string `json:"sql"`
}

// QueryResponse carries the result of a user query.
type QueryResponse struct {
	Rows     []Row    `json:"rows"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
}
