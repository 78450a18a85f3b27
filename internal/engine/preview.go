package engine

import (
	"context"
	"fmt"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// PreviewQuery selects one page of rows from a dataset.
type PreviewQuery struct {
	Path    string
	Limit   int
	Offset  int
	OrderBy []core.SortSpec
	Filters []core.FilterSpec
}

// Preview returns one page of rows plus the total row count under the same
// filters. The limit is clamped to [1, 500]; zero means the default of 20.
func (e *Engine) Preview(ctx context.Context, q PreviewQuery) (*core.PreviewResult, error) {
	src, err := e.source(q.Path)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	switch {
	case limit <= 0:
		limit = DefaultPreviewLimit
	case limit > MaxPreviewLimit:
		limit = MaxPreviewLimit
	}
	offset := q.Offset
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrInvalid, offset)
	}

	var params []any
	where, err := buildFilterClause(q.Filters, &params)
	if err != nil {
		return nil, err
	}
	order := buildOrderClause(q.OrderBy)
	params = append(params, limit, offset)

	query := fmt.Sprintf("SELECT * FROM %s%s%s LIMIT ? OFFSET ?", src, where, order)
	rows, err := e.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("failed to preview %s: %w", q.Path, err)
	}
	defer func() { _ = rows.Close() }()

	table, err := scanTable(rows)
	if err != nil {
		return nil, err
	}

	total, err := e.CountRows(ctx, q.Path, q.Filters)
	if err != nil {
		return nil, err
	}

	return &core.PreviewResult{
		Rows:      table.Rows,
		Columns:   table.Columns,
		TotalRows: total,
	}, nil
}

// CountRows returns the number of rows matching the filters.
func (e *Engine) CountRows(ctx context.Context, path string, filters []core.FilterSpec) (int64, error) {
	src, err := e.source(path)
	if err != nil {
		return 0, err
	}

	var params []any
	where, err := buildFilterClause(filters, &params)
	if err != nil {
		return 0, err
	}

	var total int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", src, where)
	if err := e.db.QueryRowContext(ctx, query, params...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", path, err)
	}
	return total, nil
}
