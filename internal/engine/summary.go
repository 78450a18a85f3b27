package engine

import (
	"context"
	"fmt"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// SummaryQuery selects the columns and row scope for summary statistics.
type SummaryQuery struct {
	Path string
	// Columns restricts the summary to a subset; empty means all columns.
	Columns []string
	// Filters restricts the rows the statistics are computed over. Empty
	// means the whole dataset.
	Filters []core.FilterSpec
}

// Summarize computes per-column statistics. Counts and distinct counts are
// computed for every column; min/max for columns with non-null values; mean
// and stddev only for numeric dtypes.
func (e *Engine) Summarize(ctx context.Context, q SummaryQuery) ([]core.ColumnSummary, error) {
	schema, err := e.Describe(ctx, q.Path)
	if err != nil {
		return nil, err
	}

	targets := schema
	if len(q.Columns) > 0 {
		wanted := make(map[string]struct{}, len(q.Columns))
		for _, name := range q.Columns {
			wanted[name] = struct{}{}
		}
		filtered := make([]core.ColumnDescriptor, 0, len(wanted))
		for _, col := range schema {
			if _, ok := wanted[col.Name]; ok {
				filtered = append(filtered, col)
			}
		}
		targets = filtered
	}

	src, err := e.source(q.Path)
	if err != nil {
		return nil, err
	}

	var filterParams []any
	where, err := buildFilterClause(q.Filters, &filterParams)
	if err != nil {
		return nil, err
	}

	summaries := make([]core.ColumnSummary, 0, len(targets))
	for _, col := range targets {
		summary, err := e.summarizeColumn(ctx, src, where, filterParams, col)
		if err != nil {
			return nil, fmt.Errorf("failed to summarize column %s of %s: %w", col.Name, q.Path, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (e *Engine) summarizeColumn(ctx context.Context, src, where string, filterParams []any, col core.ColumnDescriptor) (core.ColumnSummary, error) {
	name := quoteIdent(col.Name)
	summary := core.ColumnSummary{Column: col.Name, Dtype: col.Dtype}

	baseQuery := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_rows,
			COUNT(%s) AS non_null_count,
			COUNT(*) - COUNT(%s) AS null_count,
			COUNT(DISTINCT %s) AS distinct_count
		FROM %s%s`, name, name, name, src, where)

	err := e.db.QueryRowContext(ctx, baseQuery, filterParams...).Scan(
		&summary.TotalRows,
		&summary.NonNullCount,
		&summary.NullCount,
		&summary.DistinctCount,
	)
	if err != nil {
		return summary, err
	}
	if summary.NonNullCount == 0 {
		return summary, nil
	}

	notNull := name + " IS NOT NULL"
	scope := where
	if scope == "" {
		scope = " WHERE " + notNull
	} else {
		scope += " AND " + notNull
	}

	if core.IsNumericDtype(col.Dtype) {
		var minValue, maxValue any
		var mean, stddev *float64
		statsQuery := fmt.Sprintf(`
			SELECT MIN(%s), MAX(%s), AVG(%s), STDDEV_SAMP(%s)
			FROM %s%s`, name, name, name, name, src, scope)
		if err := e.db.QueryRowContext(ctx, statsQuery, filterParams...).Scan(&minValue, &maxValue, &mean, &stddev); err != nil {
			return summary, err
		}
		summary.MinValue = normalizeValue(minValue)
		summary.MaxValue = normalizeValue(maxValue)
		summary.MeanValue = mean
		summary.StddevValue = stddev
		return summary, nil
	}

	var minValue, maxValue any
	minmaxQuery := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s%s", name, name, src, scope)
	if err := e.db.QueryRowContext(ctx, minmaxQuery, filterParams...).Scan(&minValue, &maxValue); err != nil {
		return summary, err
	}
	summary.MinValue = normalizeValue(minValue)
	summary.MaxValue = normalizeValue(maxValue)
	return summary, nil
}
