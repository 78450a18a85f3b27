// Package dashboard implements the coordinating store behind the web UI: one
// mutex-guarded state object owning dataset selection, the preview, summary
// and chart sessions, and the recent-files list. All fetches run on
// goroutines; every result application is keyed on the (path, generation)
// pair captured when the fetch was issued, so a stale result from a slower
// request or a previous dataset is dropped instead of overwriting newer
// state.
package dashboard

import (
	"context"
	"log/slog"
	"sync"

	"github.com/maximuthking/csv-viewer/internal/notifier"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultPageSize    = 50
	DefaultRecentLimit = 5
)

// maxSeriesColumns caps how many value columns a line or bar chart plots.
const maxSeriesColumns = 3

// Gateway is the remote surface the dashboard fetches through. Implemented
// by *gateway.Client.
type Gateway interface {
	ListDatasets(ctx context.Context) ([]core.DatasetDescriptor, error)
	GetSchema(ctx context.Context, path string) ([]core.ColumnDescriptor, error)
	GetPreviewPage(ctx context.Context, req core.PreviewRequest) (*core.PreviewResult, error)
	LocateRow(ctx context.Context, req core.LocateRequest) (*core.LocateResult, error)
	GetSummary(ctx context.Context, req core.SummaryRequest) ([]core.ColumnSummary, error)
	GetChartData(ctx context.Context, req core.ChartDataRequest) (*core.TableResult, error)
}

// Options configures a Dashboard.
type Options struct {
	// SummaryRespectsFilters computes column statistics over the filtered
	// rows instead of the whole dataset.
	SummaryRespectsFilters bool
	PageSize               int
	RecentLimit            int

	// TimeBucket and Interpolation seed the chart options of new sessions.
	TimeBucket    string
	Interpolation core.Interpolation

	Logger *slog.Logger
}

// Highlight marks the cell found by the last successful locate. Token
// increases on every locate so the UI re-scrolls even when the same cell
// matches again.
type Highlight struct {
	Page      int
	RowInPage int
	Column    string
	Value     any
	Token     uint64
}

// Search is the last submitted locate request, kept for display.
type Search struct {
	Column    string
	Value     any
	MatchMode core.MatchMode
}

// PreviewState is the paged, sorted, filtered view over the selected
// dataset's rows.
type PreviewState struct {
	Rows      []core.Row
	Columns   []string
	TotalRows int64
	Page      int // 1-based
	PageSize  int
	Sort      []core.SortSpec
	Filters   []core.FilterSpec
	IsLoading bool
	Error     string

	Search      *Search
	SearchError string
	Highlight   *Highlight
}

// SummaryState holds per-column statistics for the selected dataset.
type SummaryState struct {
	Data      []core.ColumnSummary
	IsLoading bool
	Error     string
}

// ChartOptions is the chart configuration. For line and bar charts
// TimeColumn must be set and ValueColumns holds 1-3 series; for scatter
// ValueColumns holds exactly the [x, y] pair and TimeColumn is unused.
type ChartOptions struct {
	ChartType     core.ChartType
	TimeColumn    string
	ValueColumns  []string
	TimeBucket    string
	Interpolation core.Interpolation
}

// ChartState holds the chart configuration and its fetched data.
type ChartState struct {
	Data      []core.Row
	Columns   []string
	Options   ChartOptions
	IsLoading bool
	Error     string
}

// State is a point-in-time snapshot of the whole dashboard, safe to read
// without holding any lock. Row and summary slices are shared with the store
// and must be treated as read-only.
type State struct {
	Datasets     []core.DatasetDescriptor
	CatalogError string
	Recent       []string
	SelectedPath string
	Schema       []core.ColumnDescriptor
	Preview      PreviewState
	Summary      SummaryState
	Chart        ChartState
}

// Dashboard is the single coordinating store. All mutation goes through its
// methods; rendering code reads snapshots via State and re-renders on
// notifier pings.
type Dashboard struct {
	mu       sync.Mutex
	gw       Gateway
	opts     Options
	logger   *slog.Logger
	notifier *notifier.Notifier

	datasets     []core.DatasetDescriptor
	catalogError string
	recent       []string

	selectedPath string
	schema       []core.ColumnDescriptor

	preview PreviewState
	summary SummaryState
	chart   ChartState

	// Per-session generation counters. Every fetch captures the counter at
	// issue time; a result is applied only while its generation is still
	// current, which is how superseded requests get dropped.
	catalogGen uint64
	selectGen  uint64
	previewGen uint64
	locateGen  uint64
	summaryGen uint64
	chartGen   uint64

	highlightToken uint64
}

// New creates a dashboard store fetching through gw.
func New(gw Gateway, opts Options) *Dashboard {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = DefaultRecentLimit
	}
	if opts.TimeBucket == "" {
		opts.TimeBucket = core.DefaultTimeBucket
	}
	if opts.Interpolation == "" {
		opts.Interpolation = core.InterpolationNone
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	d := &Dashboard{
		gw:       gw,
		opts:     opts,
		logger:   logger,
		notifier: notifier.New(),
	}
	d.preview.Page = 1
	d.preview.PageSize = opts.PageSize
	d.chart.Options = ChartOptions{
		ChartType:     core.ChartLine,
		TimeBucket:    opts.TimeBucket,
		Interpolation: opts.Interpolation,
	}
	return d
}

// Subscribe returns a channel pinged after every applied state change.
func (d *Dashboard) Subscribe() chan struct{} {
	return d.notifier.Subscribe()
}

// Unsubscribe releases a channel obtained from Subscribe.
func (d *Dashboard) Unsubscribe(ch chan struct{}) {
	d.notifier.Unsubscribe(ch)
}

// State returns a snapshot of the current dashboard state.
func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := State{
		Datasets:     append([]core.DatasetDescriptor(nil), d.datasets...),
		CatalogError: d.catalogError,
		Recent:       append([]string(nil), d.recent...),
		SelectedPath: d.selectedPath,
		Schema:       append([]core.ColumnDescriptor(nil), d.schema...),
		Preview:      d.preview,
		Summary:      d.summary,
		Chart:        d.chart,
	}
	st.Preview.Sort = cloneSorts(d.preview.Sort)
	st.Preview.Filters = cloneFilters(d.preview.Filters)
	st.Chart.Options.ValueColumns = append([]string(nil), d.chart.Options.ValueColumns...)
	if d.preview.Highlight != nil {
		h := *d.preview.Highlight
		st.Preview.Highlight = &h
	}
	if d.preview.Search != nil {
		s := *d.preview.Search
		st.Preview.Search = &s
	}
	return st
}

func cloneSorts(sorts []core.SortSpec) []core.SortSpec {
	if sorts == nil {
		return nil
	}
	return append([]core.SortSpec(nil), sorts...)
}

func cloneFilters(filters []core.FilterSpec) []core.FilterSpec {
	if filters == nil {
		return nil
	}
	return append([]core.FilterSpec(nil), filters...)
}
