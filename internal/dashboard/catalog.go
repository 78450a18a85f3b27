package dashboard

import "context"

// Init fetches the dataset catalog. It fails soft: a listing failure is
// recorded as a catalog error string and leaves the list empty rather than
// propagating to the caller. On success, if no dataset is selected yet, the
// first one is auto-selected.
func (d *Dashboard) Init(ctx context.Context) {
	d.mu.Lock()
	d.catalogGen++
	gen := d.catalogGen
	d.mu.Unlock()

	datasets, err := d.gw.ListDatasets(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.catalogGen {
		return
	}
	if err != nil {
		d.datasets = nil
		d.catalogError = err.Error()
		d.logger.Warn("dataset listing failed", "error", err)
		d.notifier.Broadcast()
		return
	}

	d.datasets = datasets
	d.catalogError = ""
	if d.selectedPath == "" && len(datasets) > 0 {
		d.selectLocked(ctx, datasets[0].Path)
	}
	d.notifier.Broadcast()
}

// Reload re-fetches the dataset catalog.
func (d *Dashboard) Reload(ctx context.Context) {
	d.Init(ctx)
}
