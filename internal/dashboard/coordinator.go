package dashboard

import (
	"context"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// SelectFile makes path the active dataset: resets all three sessions,
// records the path in the recent list, fetches the schema, and on schema
// success kicks off the preview, summary and chart fetches concurrently.
// Selecting the already-active dataset is a no-op.
func (d *Dashboard) SelectFile(ctx context.Context, path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.selectLocked(ctx, path)
}

func (d *Dashboard) selectLocked(ctx context.Context, path string) {
	if path == d.selectedPath {
		return
	}

	// The reset happens synchronously, before any fetch is issued, so a late
	// result from the previous dataset can never pass the (path, generation)
	// check below.
	d.selectedPath = path
	d.pushRecentLocked(path)
	d.resetSessionsLocked()
	d.notifier.Broadcast()

	d.selectGen++
	gen := d.selectGen
	go d.fetchSchema(ctx, path, gen)
}

func (d *Dashboard) fetchSchema(ctx context.Context, path string, gen uint64) {
	schema, err := d.gw.GetSchema(ctx, path)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.selectGen || path != d.selectedPath {
		return
	}
	if err != nil {
		// The schema blocks all three sessions, so every view reports the
		// same root cause.
		detail := err.Error()
		d.preview.IsLoading = false
		d.preview.Error = detail
		d.summary.IsLoading = false
		d.summary.Error = detail
		d.chart.IsLoading = false
		d.chart.Error = detail
		d.logger.Warn("schema fetch failed", "path", path, "error", err)
		d.notifier.Broadcast()
		return
	}

	d.schema = schema
	d.applyChartDefaultsLocked()
	d.refreshPreviewLocked(ctx)
	d.refreshSummaryLocked(ctx)
	d.refreshChartLocked(ctx)
	d.notifier.Broadcast()
}

// pushRecentLocked moves path to the front of the recent list, deduplicated
// and capped.
func (d *Dashboard) pushRecentLocked(path string) {
	recent := make([]string, 0, len(d.recent)+1)
	recent = append(recent, path)
	for _, p := range d.recent {
		if p != path {
			recent = append(recent, p)
		}
	}
	if len(recent) > d.opts.RecentLimit {
		recent = recent[:d.opts.RecentLimit]
	}
	d.recent = recent
}

// resetSessionsLocked puts all three sessions back into their initial
// loading shape and invalidates every in-flight fetch. Page size and the
// dataset-independent chart options survive the switch; column selections do
// not.
func (d *Dashboard) resetSessionsLocked() {
	d.schema = nil
	d.previewGen++
	d.locateGen++
	d.summaryGen++
	d.chartGen++

	d.preview = PreviewState{
		Page:      1,
		PageSize:  d.preview.PageSize,
		IsLoading: true,
	}
	d.summary = SummaryState{IsLoading: true}
	d.chart = ChartState{
		IsLoading: true,
		Options: ChartOptions{
			ChartType:     d.chart.Options.ChartType,
			TimeBucket:    d.chart.Options.TimeBucket,
			Interpolation: d.chart.Options.Interpolation,
		},
	}
}

// firstNumericColumnLocked returns the name of the first numeric column in
// the schema, or "".
func (d *Dashboard) firstNumericColumnLocked() string {
	for _, col := range d.schema {
		if core.IsNumericDtype(col.Dtype) {
			return col.Name
		}
	}
	return ""
}

// firstTemporalColumnLocked returns the name of the first timestamp-like
// column in the schema, or "".
func (d *Dashboard) firstTemporalColumnLocked() string {
	for _, col := range d.schema {
		if core.IsTemporalDtype(col.Dtype) {
			return col.Name
		}
	}
	return ""
}

func (d *Dashboard) isNumericColumnLocked(name string) bool {
	for _, col := range d.schema {
		if col.Name == name {
			return core.IsNumericDtype(col.Dtype)
		}
	}
	return false
}
