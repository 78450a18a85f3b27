package dashboard

import (
	"context"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// RefreshSummary refetches per-column statistics. A no-op until a dataset is
// selected and its schema has loaded.
func (d *Dashboard) RefreshSummary(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refreshSummaryLocked(ctx)
}

// refreshSummaryLocked issues a summary fetch for all columns of the current
// schema. The caller must hold d.mu.
func (d *Dashboard) refreshSummaryLocked(ctx context.Context) {
	if d.selectedPath == "" || len(d.schema) == 0 {
		d.summary.IsLoading = false
		return
	}

	d.summary.IsLoading = true
	d.summary.Error = ""
	d.summaryGen++
	gen := d.summaryGen
	path := d.selectedPath
	req := core.SummaryRequest{Path: path}
	if d.opts.SummaryRespectsFilters {
		req.Filters = cloneFilters(d.preview.Filters)
	}

	go func() {
		summaries, err := d.gw.GetSummary(ctx, req)

		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.summaryGen || path != d.selectedPath {
			return
		}
		if err != nil {
			d.summary.Data = nil
			d.summary.IsLoading = false
			d.summary.Error = err.Error()
			d.notifier.Broadcast()
			return
		}
		d.summary.Data = summaries
		d.summary.IsLoading = false
		d.summary.Error = ""
		d.notifier.Broadcast()
	}()
}
