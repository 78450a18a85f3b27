// Package core provides the shared types exchanged between the analytic
// service, the HTTP gateway, and the dashboard. The JSON field names are the
// wire format of the /v1 API.
package core

// DatasetDescriptor identifies a CSV- or Parquet-backed dataset in the
// catalog. Path is the unique key (relative to the data directory,
// slash-separated).
type DatasetDescriptor struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	SizeBytes  int64  `json:"size_bytes"`
	ModifiedAt string `json:"modified_at"`
}

// ColumnDescriptor describes one column of a dataset's schema.
type ColumnDescriptor struct {
	Name     string `json:"name"`
	Dtype    string `json:"dtype"`
	Nullable bool   `json:"nullable"`
}

// SortDirection is the direction of a sort key.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec is a single sort key. Order across a slice of SortSpecs is
// significant: the first entry is the primary key.
type SortSpec struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// FilterOperator is a comparison operator usable in a FilterSpec.
type FilterOperator string

// Filter operators.
const (
	FilterEq       FilterOperator = "eq"
	FilterNe       FilterOperator = "ne"
	FilterLt       FilterOperator = "lt"
	FilterLte      FilterOperator = "lte"
	FilterGt       FilterOperator = "gt"
	FilterGte      FilterOperator = "gte"
	FilterContains FilterOperator = "contains"
)

// FilterSpec is a single filter condition. Conditions in a slice are combined
// with AND.
type FilterSpec struct {
	Column   string         `json:"column"`
	Operator FilterOperator `json:"operator"`
	Value    any            `json:"value"`
}

// Row is one record keyed by column name. Values are the scalar kinds the
// engine produces: string, float64/int64, bool, time formatted as string, or
// nil.
type Row map[string]any

// PreviewResult is one page of rows plus the filtered total.
type PreviewResult struct {
	Rows      []Row    `json:"rows"`
	Columns   []string `json:"columns"`
	TotalRows int64    `json:"total_rows"`
}

// TableResult is a generic rows+columns result (chart data, ad-hoc queries).
type TableResult struct {
	Rows    []Row    `json:"rows"`
	Columns []string `json:"columns"`
}

// ColumnSummary holds aggregate statistics for one column. Mean and stddev
// are only populated for numeric dtypes; min and max are reported for every
// dtype with at least one non-null value.
type ColumnSummary struct {
	Column        string   `json:"column"`
	Dtype         string   `json:"dtype"`
	TotalRows     int64    `json:"total_rows"`
	NullCount     int64    `json:"null_count"`
	NonNullCount  int64    `json:"non_null_count"`
	DistinctCount int64    `json:"distinct_count"`
	MinValue      any      `json:"min_value,omitempty"`
	MaxValue      any      `json:"max_value,omitempty"`
	MeanValue     *float64 `json:"mean_value,omitempty"`
	StddevValue   *float64 `json:"stddev_value,omitempty"`
}

// ChartType selects the chart shape.
type ChartType string

// Chart types.
const (
	ChartLine    ChartType = "line"
	ChartBar     ChartType = "bar"
	ChartScatter ChartType = "scatter"
)

// IsTimeSeries reports whether the chart type plots values against a time
// axis and therefore requires a time column and bucket.
func (t ChartType) IsTimeSeries() bool {
	return t == ChartLine || t == ChartBar
}

// Interpolation selects how gaps in bucketed series are filled.
type Interpolation string

// Interpolation modes.
const (
	InterpolationNone   Interpolation = "none"
	InterpolationFfill  Interpolation = "ffill"
	InterpolationBfill  Interpolation = "bfill"
	InterpolationLinear Interpolation = "linear"
)

// TimeBuckets is the fixed set of bucket widths offered for time-series
// charts, in DuckDB INTERVAL syntax.
var TimeBuckets = []string{
	"1 minute",
	"5 minutes",
	"15 minutes",
	"1 hour",
	"6 hours",
	"1 day",
	"1 week",
	"1 month",
}

// DefaultTimeBucket is the bucket used when none is configured.
const DefaultTimeBucket = "1 day"

// MatchMode selects how a locate search compares values.
type MatchMode string

// Locate match modes.
const (
	MatchContains MatchMode = "contains"
	MatchExact    MatchMode = "exact"
)

// LocateResult reports the first row matching a locate search. RowIndex is
// the zero-based global index under the request's filters; page placement is
// the caller's concern.
type LocateResult struct {
	Found    bool   `json:"found"`
	RowIndex int64  `json:"row_index,omitempty"`
	Column   string `json:"column,omitempty"`
	Value    any    `json:"value,omitempty"`
}
