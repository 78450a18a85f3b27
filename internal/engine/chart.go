package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// ChartQuery describes an aggregate or sampled query for chart rendering.
type ChartQuery struct {
	Path          string
	ChartType     core.ChartType
	TimeColumn    string
	ValueColumns  []string
	TimeBucket    string
	Interpolation core.Interpolation
}

// ChartData returns data for chart rendering. Scatter charts sample raw
// value pairs; line and bar charts aggregate value columns with AVG per time
// bucket. When interpolation is requested the series includes synthetic
// buckets for gaps and an is_interpolated marker column.
func (e *Engine) ChartData(ctx context.Context, q ChartQuery) (*core.TableResult, error) {
	if len(q.ValueColumns) == 0 {
		return nil, fmt.Errorf("%w: at least one value column is required", ErrInvalid)
	}

	src, err := e.source(q.Path)
	if err != nil {
		return nil, err
	}

	if q.ChartType == core.ChartScatter {
		return e.scatterData(ctx, src, q)
	}
	if !q.ChartType.IsTimeSeries() {
		return nil, fmt.Errorf("%w: unsupported chart type %q", ErrInvalid, q.ChartType)
	}
	return e.seriesData(ctx, src, q)
}

func (e *Engine) scatterData(ctx context.Context, src string, q ChartQuery) (*core.TableResult, error) {
	if len(q.ValueColumns) < 2 {
		return nil, fmt.Errorf("%w: scatter plots require two value columns", ErrInvalid)
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s USING SAMPLE %d ROWS",
		quoteIdent(q.ValueColumns[0]), quoteIdent(q.ValueColumns[1]), src, scatterSampleRows)
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to sample scatter data from %s: %w", q.Path, err)
	}
	defer func() { _ = rows.Close() }()
	return scanTable(rows)
}

func (e *Engine) seriesData(ctx context.Context, src string, q ChartQuery) (*core.TableResult, error) {
	if q.TimeColumn == "" || q.TimeBucket == "" {
		return nil, fmt.Errorf("%w: time column and bucket are required for %s charts", ErrInvalid, q.ChartType)
	}
	if err := validateBucket(q.TimeBucket); err != nil {
		return nil, err
	}

	interpolation := q.Interpolation
	if interpolation == "" {
		interpolation = core.InterpolationNone
	}

	timeCol := quoteIdent(q.TimeColumn)
	bucketExpr := fmt.Sprintf("time_bucket(INTERVAL '%s', CAST(%s AS TIMESTAMP))", q.TimeBucket, timeCol)

	aggs := make([]string, len(q.ValueColumns))
	for i, col := range q.ValueColumns {
		aggs[i] = fmt.Sprintf("AVG(%s) AS %s", quoteIdent(col), quoteIdent(col))
	}
	aggClause := strings.Join(aggs, ", ")

	if interpolation == core.InterpolationNone {
		query := fmt.Sprintf("SELECT %s AS %s, %s FROM %s GROUP BY 1 ORDER BY 1",
			bucketExpr, timeCol, aggClause, src)
		rows, err := e.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate chart data from %s: %w", q.Path, err)
		}
		defer func() { _ = rows.Close() }()
		return scanTable(rows)
	}

	// Synthetic buckets over the full time range so gaps become explicit
	// rows that interpolation can fill.
	gapChecks := make([]string, len(q.ValueColumns))
	joinedCols := make([]string, len(q.ValueColumns))
	for i, col := range q.ValueColumns {
		ident := quoteIdent(col)
		gapChecks[i] = fmt.Sprintf("aggregated.%s IS NULL", ident)
		joinedCols[i] = fmt.Sprintf("aggregated.%s AS %s", ident, ident)
	}

	joinedCTE := fmt.Sprintf(`
		WITH bounds AS (
			SELECT
				MIN(CAST(%[1]s AS TIMESTAMP)) AS min_time,
				MAX(CAST(%[1]s AS TIMESTAMP)) AS max_time
			FROM %[2]s
		),
		buckets AS (
			SELECT bucket_start FROM (
				SELECT UNNEST(GENERATE_SERIES(
					time_bucket(INTERVAL '%[3]s', min_time),
					time_bucket(INTERVAL '%[3]s', max_time),
					INTERVAL '%[3]s'
				)) AS bucket_start
				FROM bounds
				WHERE min_time IS NOT NULL AND max_time IS NOT NULL
			)
			WHERE bucket_start IS NOT NULL
		),
		aggregated AS (
			SELECT %[4]s AS bucket_start, %[5]s
			FROM %[2]s
			GROUP BY 1
		),
		joined AS (
			SELECT
				buckets.bucket_start,
				%[6]s,
				CASE WHEN aggregated.bucket_start IS NULL OR (%[7]s) THEN TRUE ELSE FALSE END AS is_gap
			FROM buckets
			LEFT JOIN aggregated ON aggregated.bucket_start = buckets.bucket_start
		)`,
		timeCol, src, q.TimeBucket, bucketExpr, aggClause,
		strings.Join(joinedCols, ",\n\t\t\t\t"), strings.Join(gapChecks, " AND "))

	if interpolation == core.InterpolationFfill {
		// Last-observation-carried-forward in SQL via MAX_BY over the
		// running window.
		locf := make([]string, len(q.ValueColumns))
		for i, col := range q.ValueColumns {
			ident := quoteIdent(col)
			locf[i] = fmt.Sprintf(
				"MAX_BY(joined.%[1]s, CASE WHEN joined.%[1]s IS NULL THEN NULL ELSE joined.bucket_start END) "+
					"OVER (ORDER BY joined.bucket_start ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW) AS %[1]s",
				ident)
		}

		query := fmt.Sprintf("%s\nSELECT joined.bucket_start AS %s, %s, joined.is_gap AS is_interpolated FROM joined ORDER BY 1",
			joinedCTE, timeCol, strings.Join(locf, ", "))
		rows, err := e.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate chart data from %s: %w", q.Path, err)
		}
		defer func() { _ = rows.Close() }()
		return scanTable(rows)
	}

	if interpolation != core.InterpolationBfill && interpolation != core.InterpolationLinear {
		return nil, fmt.Errorf("%w: unsupported interpolation %q", ErrInvalid, interpolation)
	}

	selects := make([]string, len(q.ValueColumns))
	for i, col := range q.ValueColumns {
		ident := quoteIdent(col)
		selects[i] = fmt.Sprintf("joined.%s AS %s", ident, ident)
	}
	query := fmt.Sprintf("%s\nSELECT joined.bucket_start AS %s, %s, joined.is_gap AS is_interpolated FROM joined ORDER BY 1",
		joinedCTE, timeCol, strings.Join(selects, ", "))
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate chart data from %s: %w", q.Path, err)
	}
	defer func() { _ = rows.Close() }()

	table, err := scanTable(rows)
	if err != nil {
		return nil, err
	}
	fillSeries(table, q.ValueColumns, interpolation)
	return table, nil
}

func validateBucket(bucket string) error {
	for _, known := range core.TimeBuckets {
		if bucket == known {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported time bucket %q", ErrInvalid, bucket)
}

// fillSeries fills gaps in the fetched series in place. Backward fill
// carries the next known value into preceding gaps; linear interpolates
// between neighboring known values by bucket position and carries the last
// known value forward past the end.
func fillSeries(table *core.TableResult, columns []string, mode core.Interpolation) {
	for _, col := range columns {
		known := make([]int, 0, len(table.Rows))
		for i, row := range table.Rows {
			if _, ok := toFloat(row[col]); ok {
				known = append(known, i)
			}
		}
		if len(known) == 0 {
			continue
		}

		switch mode {
		case core.InterpolationBfill:
			next := -1
			for i := len(table.Rows) - 1; i >= 0; i-- {
				if _, ok := toFloat(table.Rows[i][col]); ok {
					next = i
					continue
				}
				if next >= 0 {
					value, _ := toFloat(table.Rows[next][col])
					table.Rows[i][col] = value
				}
			}
		case core.InterpolationLinear:
			for gap := 0; gap < len(known)-1; gap++ {
				lo, hi := known[gap], known[gap+1]
				loVal, _ := toFloat(table.Rows[lo][col])
				hiVal, _ := toFloat(table.Rows[hi][col])
				for i := lo + 1; i < hi; i++ {
					fraction := float64(i-lo) / float64(hi-lo)
					table.Rows[i][col] = loVal + fraction*(hiVal-loVal)
				}
			}
			last := known[len(known)-1]
			lastVal, _ := toFloat(table.Rows[last][col])
			for i := last + 1; i < len(table.Rows); i++ {
				table.Rows[i][col] = lastVal
			}
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}
