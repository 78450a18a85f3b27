package dashboard

import (
	"context"
	"slices"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// ChartOptionsPatch is a partial update of the chart configuration. Nil
// fields are left unchanged.
type ChartOptionsPatch struct {
	ChartType     *core.ChartType
	TimeColumn    *string
	ValueColumns  *[]string
	TimeBucket    *string
	Interpolation *core.Interpolation
}

// SetChartOptions merges patch into the current chart options, applies
// chart-type switch side effects, and refetches the chart data.
func (d *Dashboard) SetChartOptions(ctx context.Context, patch ChartOptionsPatch) {
	d.mu.Lock()
	defer d.mu.Unlock()

	opts := &d.chart.Options
	if patch.TimeColumn != nil {
		opts.TimeColumn = *patch.TimeColumn
	}
	if patch.ValueColumns != nil {
		opts.ValueColumns = append([]string(nil), (*patch.ValueColumns)...)
	}
	if patch.TimeBucket != nil {
		opts.TimeBucket = *patch.TimeBucket
	}
	if patch.Interpolation != nil {
		opts.Interpolation = *patch.Interpolation
	}
	if patch.ChartType != nil && *patch.ChartType != opts.ChartType {
		d.switchChartTypeLocked(*patch.ChartType)
	}

	if opts.ChartType == core.ChartScatter && len(opts.ValueColumns) > 2 {
		opts.ValueColumns = opts.ValueColumns[:2]
	}
	if opts.ChartType.IsTimeSeries() && len(opts.ValueColumns) > maxSeriesColumns {
		opts.ValueColumns = opts.ValueColumns[:maxSeriesColumns]
	}

	d.refreshChartLocked(ctx)
	d.notifier.Broadcast()
}

// RefreshChart refetches the chart data with the current options.
func (d *Dashboard) RefreshChart(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshChartLocked(ctx)
	d.notifier.Broadcast()
}

// switchChartTypeLocked applies the side effects of changing the chart type.
// Switching to scatter recomputes the value columns as up to two
// numeric-capable columns, preferring ones already selected, and clears the
// time column; switching away restores a single numeric value column and a
// default time column if the schema has one.
func (d *Dashboard) switchChartTypeLocked(next core.ChartType) {
	opts := &d.chart.Options
	prev := opts.ChartType
	opts.ChartType = next

	if next == core.ChartScatter {
		opts.ValueColumns = d.scatterColumnsLocked(opts.ValueColumns)
		opts.TimeColumn = ""
		return
	}
	if prev == core.ChartScatter {
		var value string
		for _, name := range opts.ValueColumns {
			if d.isNumericColumnLocked(name) {
				value = name
				break
			}
		}
		if value == "" {
			value = d.firstNumericColumnLocked()
		}
		if value == "" {
			opts.ValueColumns = nil
		} else {
			opts.ValueColumns = []string{value}
		}
		if opts.TimeColumn == "" {
			opts.TimeColumn = d.firstTemporalColumnLocked()
		}
	}
}

// scatterColumnsLocked picks up to two numeric columns for a scatter plot,
// keeping already-selected numeric columns in order before falling back to
// the schema.
func (d *Dashboard) scatterColumnsLocked(preferred []string) []string {
	cols := make([]string, 0, 2)
	for _, name := range preferred {
		if len(cols) == 2 {
			break
		}
		if d.isNumericColumnLocked(name) && !slices.Contains(cols, name) {
			cols = append(cols, name)
		}
	}
	for _, col := range d.schema {
		if len(cols) == 2 {
			break
		}
		if core.IsNumericDtype(col.Dtype) && !slices.Contains(cols, col.Name) {
			cols = append(cols, col.Name)
		}
	}
	return cols
}

// applyChartDefaultsLocked fills unset chart options once a schema is
// available. It never overrides an explicit choice.
func (d *Dashboard) applyChartDefaultsLocked() {
	opts := &d.chart.Options
	if opts.ChartType == "" {
		opts.ChartType = core.ChartLine
	}
	if opts.TimeBucket == "" {
		opts.TimeBucket = core.DefaultTimeBucket
	}
	if opts.Interpolation == "" {
		opts.Interpolation = core.InterpolationNone
	}

	if opts.ChartType == core.ChartScatter {
		if len(opts.ValueColumns) < 2 {
			opts.ValueColumns = d.scatterColumnsLocked(opts.ValueColumns)
		}
		return
	}
	if opts.TimeColumn == "" {
		opts.TimeColumn = d.firstTemporalColumnLocked()
	}
	if len(opts.ValueColumns) == 0 {
		if col := d.firstNumericColumnLocked(); col != "" {
			opts.ValueColumns = []string{col}
		}
	}
}

// refreshChartLocked issues a chart-data fetch for the current options. The
// caller must hold d.mu. A time-series chart without a time column is a
// configuration error detected here; it never reaches the gateway.
func (d *Dashboard) refreshChartLocked(ctx context.Context) {
	opts := d.chart.Options
	if d.selectedPath == "" || len(opts.ValueColumns) == 0 {
		d.chart.IsLoading = false
		return
	}
	if opts.ChartType.IsTimeSeries() && opts.TimeColumn == "" {
		d.chart.Data = nil
		d.chart.Columns = nil
		d.chart.IsLoading = false
		d.chart.Error = "time column not selected"
		return
	}

	d.chart.IsLoading = true
	d.chart.Error = ""
	d.chartGen++
	gen := d.chartGen
	path := d.selectedPath
	req := core.ChartDataRequest{
		Path:          path,
		ChartType:     opts.ChartType,
		TimeColumn:    opts.TimeColumn,
		ValueColumns:  append([]string(nil), opts.ValueColumns...),
		TimeBucket:    opts.TimeBucket,
		Interpolation: opts.Interpolation,
	}

	go func() {
		result, err := d.gw.GetChartData(ctx, req)

		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.chartGen || path != d.selectedPath {
			return
		}
		if err != nil {
			d.chart.Data = nil
			d.chart.Columns = nil
			d.chart.IsLoading = false
			d.chart.Error = err.Error()
			d.notifier.Broadcast()
			return
		}
		d.chart.Data = result.Rows
		d.chart.Columns = result.Columns
		d.chart.IsLoading = false
		d.chart.Error = ""
		d.notifier.Broadcast()
	}()
}
