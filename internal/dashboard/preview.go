package dashboard

import (
	"context"
	"fmt"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// SetPage moves the preview to a 1-based page and refetches. The page is
// clamped to the range the last known row total allows.
func (d *Dashboard) SetPage(ctx context.Context, page int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedPath == "" {
		return
	}

	if page < 1 {
		page = 1
	}
	if max := d.maxPageLocked(); max > 0 && page > max {
		page = max
	}
	d.preview.Page = page
	d.refreshPreviewLocked(ctx)
	d.notifier.Broadcast()
}

// SetPageSize changes the page size and resets the preview to page 1.
func (d *Dashboard) SetPageSize(ctx context.Context, size int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedPath == "" {
		return
	}

	if size < 1 {
		size = DefaultPageSize
	}
	d.preview.PageSize = size
	d.preview.Page = 1
	d.refreshPreviewLocked(ctx)
	d.notifier.Broadcast()
}

// SetSort replaces the sort keys and resets the preview to page 1.
func (d *Dashboard) SetSort(ctx context.Context, sort []core.SortSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedPath == "" {
		return
	}

	d.preview.Sort = cloneSorts(sort)
	d.preview.Page = 1
	d.refreshPreviewLocked(ctx)
	d.notifier.Broadcast()
}

// SetFilters replaces the filter conditions and resets the preview to page 1.
// When summary statistics are configured to respect filters, the summary is
// refetched as well.
func (d *Dashboard) SetFilters(ctx context.Context, filters []core.FilterSpec) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedPath == "" {
		return
	}

	d.preview.Filters = cloneFilters(filters)
	d.preview.Page = 1
	d.refreshPreviewLocked(ctx)
	if d.opts.SummaryRespectsFilters {
		d.refreshSummaryLocked(ctx)
	}
	d.notifier.Broadcast()
}

// RefreshPreview refetches the current page with the current parameters.
func (d *Dashboard) RefreshPreview(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedPath == "" {
		return
	}
	d.refreshPreviewLocked(ctx)
	d.notifier.Broadcast()
}

// refreshPreviewLocked issues a page fetch for the parameters active right
// now. The caller must hold d.mu.
func (d *Dashboard) refreshPreviewLocked(ctx context.Context) {
	if d.selectedPath == "" {
		d.preview.IsLoading = false
		return
	}

	d.preview.IsLoading = true
	d.preview.Error = ""
	d.previewGen++
	gen := d.previewGen
	path := d.selectedPath
	req := core.PreviewRequest{
		Path:    path,
		Limit:   d.preview.PageSize,
		Offset:  (d.preview.Page - 1) * d.preview.PageSize,
		OrderBy: cloneSorts(d.preview.Sort),
		Filters: cloneFilters(d.preview.Filters),
	}

	go func() {
		result, err := d.gw.GetPreviewPage(ctx, req)

		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.previewGen || path != d.selectedPath {
			// Superseded by a newer request or a dataset switch.
			return
		}
		if err != nil {
			d.preview.Rows = nil
			d.preview.Columns = nil
			d.preview.TotalRows = 0
			d.preview.IsLoading = false
			d.preview.Error = err.Error()
			d.notifier.Broadcast()
			return
		}
		d.preview.Rows = result.Rows
		d.preview.Columns = result.Columns
		d.preview.TotalRows = result.TotalRows
		d.preview.IsLoading = false
		d.preview.Error = ""
		d.notifier.Broadcast()
	}()
}

// maxPageLocked returns the highest valid page for the last known row total,
// or 0 when no total is known yet.
func (d *Dashboard) maxPageLocked() int {
	if d.preview.TotalRows <= 0 || d.preview.PageSize <= 0 {
		return 0
	}
	pages := d.preview.TotalRows / int64(d.preview.PageSize)
	if d.preview.TotalRows%int64(d.preview.PageSize) != 0 {
		pages++
	}
	return int(pages)
}

// Locate jumps the preview to the first row whose column matches value under
// mode. The search runs under the active filters; the active sort is ignored
// because the match index is defined over the dataset's canonical order. On
// success the preview moves to the page containing the match and the cell is
// highlighted; on failure only the search error is set, existing rows stay
// untouched.
func (d *Dashboard) Locate(ctx context.Context, column string, value any, mode core.MatchMode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selectedPath == "" {
		return
	}

	d.preview.Search = &Search{Column: column, Value: value, MatchMode: mode}
	d.preview.SearchError = ""
	d.locateGen++
	gen := d.locateGen
	path := d.selectedPath
	req := core.LocateRequest{
		Path:      path,
		Column:    column,
		Value:     value,
		MatchMode: mode,
		Filters:   cloneFilters(d.preview.Filters),
	}
	d.notifier.Broadcast()

	go func() {
		result, err := d.gw.LocateRow(ctx, req)

		d.mu.Lock()
		defer d.mu.Unlock()
		if gen != d.locateGen || path != d.selectedPath {
			return
		}
		if err != nil {
			d.preview.SearchError = err.Error()
			d.notifier.Broadcast()
			return
		}
		if !result.Found {
			d.preview.SearchError = fmt.Sprintf("no match for %v in column %s", value, column)
			d.notifier.Broadcast()
			return
		}

		pageSize := int64(d.preview.PageSize)
		targetPage := int(result.RowIndex/pageSize) + 1
		d.highlightToken++
		d.preview.Highlight = &Highlight{
			Page:      targetPage,
			RowInPage: int(result.RowIndex % pageSize),
			Column:    result.Column,
			Value:     result.Value,
			Token:     d.highlightToken,
		}
		if targetPage != d.preview.Page {
			d.preview.Page = targetPage
			d.refreshPreviewLocked(ctx)
		}
		d.notifier.Broadcast()
	}()
}

// ClearSearch drops the search term, error and highlight without refetching
// rows.
func (d *Dashboard) ClearSearch() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.preview.Search = nil
	d.preview.SearchError = ""
	d.preview.Highlight = nil
	d.notifier.Broadcast()
}
