package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximuthking/csv-viewer/internal/testutil"
	"github.com/maximuthking/csv-viewer/pkg/core"
)

const fixtureCSV = `id,name,category,value,ts
1,alpha,a,10.5,2024-01-01 00:30:00
2,beta,b,20.0,2024-01-01 01:30:00
3,gamma,a,,2024-01-02 00:15:00
4,delta,b,40.0,2024-01-04 10:00:00
5,alphabet,a,50.0,2024-01-05 12:00:00
`

// newTestEngine writes the fixture dataset into a temp data dir and returns
// an engine over it.
func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()

	dataDir := t.TempDir()
	path := filepath.Join(dataDir, "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o600))

	eng, err := New(Config{DataDir: dataDir, Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Close() })

	return eng, "events.csv"
}

func TestDescribe(t *testing.T) {
	eng, path := newTestEngine(t)

	schema, err := eng.Describe(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, schema, 5)

	byName := make(map[string]core.ColumnDescriptor)
	for _, col := range schema {
		byName[col.Name] = col
	}
	assert.Equal(t, "BIGINT", byName["id"].Dtype)
	assert.Equal(t, "VARCHAR", byName["name"].Dtype)
	assert.Equal(t, "DOUBLE", byName["value"].Dtype)
	assert.Equal(t, "TIMESTAMP", byName["ts"].Dtype)
}

func TestDescribeNotFound(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.Describe(context.Background(), "missing.csv")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPreviewPagination(t *testing.T) {
	eng, path := newTestEngine(t)

	result, err := eng.Preview(context.Background(), PreviewQuery{
		Path:    path,
		Limit:   2,
		Offset:  1,
		OrderBy: []core.SortSpec{{Column: "id", Direction: core.SortAsc}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), result.TotalRows)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "beta", result.Rows[0]["name"])
	assert.Equal(t, "gamma", result.Rows[1]["name"])
	assert.Contains(t, result.Columns, "category")
}

func TestPreviewFilters(t *testing.T) {
	eng, path := newTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		filters   []core.FilterSpec
		wantTotal int64
	}{
		{
			name:      "equals",
			filters:   []core.FilterSpec{{Column: "category", Operator: core.FilterEq, Value: "a"}},
			wantTotal: 3,
		},
		{
			name:      "greater than",
			filters:   []core.FilterSpec{{Column: "value", Operator: core.FilterGt, Value: 15.0}},
			wantTotal: 3,
		},
		{
			name:      "contains",
			filters:   []core.FilterSpec{{Column: "name", Operator: core.FilterContains, Value: "alpha"}},
			wantTotal: 2,
		},
		{
			name: "combined",
			filters: []core.FilterSpec{
				{Column: "category", Operator: core.FilterEq, Value: "b"},
				{Column: "value", Operator: core.FilterGte, Value: 40.0},
			},
			wantTotal: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := eng.Preview(ctx, PreviewQuery{Path: path, Filters: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, result.TotalRows)
			assert.Len(t, result.Rows, int(tt.wantTotal))
		})
	}
}

func TestPreviewInvalidOperator(t *testing.T) {
	eng, path := newTestEngine(t)

	_, err := eng.Preview(context.Background(), PreviewQuery{
		Path:    path,
		Filters: []core.FilterSpec{{Column: "name", Operator: "like", Value: "x"}},
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLocate(t *testing.T) {
	eng, path := newTestEngine(t)
	ctx := context.Background()

	t.Run("contains finds first match in natural order", func(t *testing.T) {
		result, err := eng.Locate(ctx, LocateQuery{
			Path: path, Column: "name", Value: "alpha", MatchMode: core.MatchContains,
		})
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, int64(0), result.RowIndex)
		assert.Equal(t, "alpha", result.Value)
	})

	t.Run("exact match", func(t *testing.T) {
		result, err := eng.Locate(ctx, LocateQuery{
			Path: path, Column: "name", Value: "beta", MatchMode: core.MatchExact,
		})
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, int64(1), result.RowIndex)
	})

	t.Run("filters shift the global index", func(t *testing.T) {
		result, err := eng.Locate(ctx, LocateQuery{
			Path: path, Column: "name", Value: "alphabet", MatchMode: core.MatchExact,
			Filters: []core.FilterSpec{{Column: "category", Operator: core.FilterEq, Value: "a"}},
		})
		require.NoError(t, err)
		assert.True(t, result.Found)
		// Filtered rows are alpha, gamma, alphabet.
		assert.Equal(t, int64(2), result.RowIndex)
	})

	t.Run("null search under exact mode", func(t *testing.T) {
		result, err := eng.Locate(ctx, LocateQuery{
			Path: path, Column: "value", Value: nil, MatchMode: core.MatchExact,
		})
		require.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, int64(2), result.RowIndex)
	})

	t.Run("not found", func(t *testing.T) {
		result, err := eng.Locate(ctx, LocateQuery{
			Path: path, Column: "name", Value: "zzz", MatchMode: core.MatchContains,
		})
		require.NoError(t, err)
		assert.False(t, result.Found)
	})

	t.Run("null search under contains mode is invalid", func(t *testing.T) {
		_, err := eng.Locate(ctx, LocateQuery{
			Path: path, Column: "value", Value: nil, MatchMode: core.MatchContains,
		})
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestSummarize(t *testing.T) {
	eng, path := newTestEngine(t)

	summaries, err := eng.Summarize(context.Background(), SummaryQuery{Path: path})
	require.NoError(t, err)
	require.Len(t, summaries, 5)

	byColumn := make(map[string]core.ColumnSummary)
	for _, summary := range summaries {
		byColumn[summary.Column] = summary
	}

	value := byColumn["value"]
	assert.Equal(t, int64(5), value.TotalRows)
	assert.Equal(t, int64(1), value.NullCount)
	assert.Equal(t, int64(4), value.NonNullCount)
	assert.Equal(t, int64(4), value.DistinctCount)
	require.NotNil(t, value.MeanValue)
	assert.InDelta(t, 30.125, *value.MeanValue, 1e-9)
	assert.NotNil(t, value.StddevValue)

	name := byColumn["name"]
	assert.Nil(t, name.MeanValue)
	assert.Equal(t, "alpha", name.MinValue)
	assert.Equal(t, "gamma", name.MaxValue)
}

func TestSummarizeColumnSubsetAndFilters(t *testing.T) {
	eng, path := newTestEngine(t)

	summaries, err := eng.Summarize(context.Background(), SummaryQuery{
		Path:    path,
		Columns: []string{"value"},
		Filters: []core.FilterSpec{{Column: "category", Operator: core.FilterEq, Value: "b"}},
	})
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	value := summaries[0]
	assert.Equal(t, int64(2), value.TotalRows)
	require.NotNil(t, value.MeanValue)
	assert.InDelta(t, 30.0, *value.MeanValue, 1e-9)
}

func TestChartDataScatter(t *testing.T) {
	eng, path := newTestEngine(t)

	result, err := eng.ChartData(context.Background(), ChartQuery{
		Path:         path,
		ChartType:    core.ChartScatter,
		ValueColumns: []string{"id", "value"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "value"}, result.Columns)
	assert.Len(t, result.Rows, 5)
}

func TestChartDataScatterNeedsTwoColumns(t *testing.T) {
	eng, path := newTestEngine(t)

	_, err := eng.ChartData(context.Background(), ChartQuery{
		Path:         path,
		ChartType:    core.ChartScatter,
		ValueColumns: []string{"id"},
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestChartDataLineDailyBuckets(t *testing.T) {
	eng, path := newTestEngine(t)

	result, err := eng.ChartData(context.Background(), ChartQuery{
		Path:          path,
		ChartType:     core.ChartLine,
		TimeColumn:    "ts",
		ValueColumns:  []string{"value"},
		TimeBucket:    "1 day",
		Interpolation: core.InterpolationNone,
	})
	require.NoError(t, err)
	// Days 1, 2, 4, 5 carry data (day 3 has no rows at all).
	require.Len(t, result.Rows, 4)

	first, ok := toFloat(result.Rows[0]["value"])
	require.True(t, ok)
	assert.InDelta(t, 15.25, first, 1e-9)
}

func TestChartDataInterpolation(t *testing.T) {
	eng, path := newTestEngine(t)
	ctx := context.Background()

	query := ChartQuery{
		Path:         path,
		ChartType:    core.ChartLine,
		TimeColumn:   "ts",
		ValueColumns: []string{"value"},
		TimeBucket:   "1 day",
	}

	t.Run("ffill carries the last value forward", func(t *testing.T) {
		query.Interpolation = core.InterpolationFfill
		result, err := eng.ChartData(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Rows, 5)

		day3, ok := toFloat(result.Rows[2]["value"])
		require.True(t, ok)
		assert.InDelta(t, 15.25, day3, 1e-9)
		assert.Equal(t, true, result.Rows[2]["is_interpolated"])
		assert.Equal(t, false, result.Rows[0]["is_interpolated"])
	})

	t.Run("bfill carries the next value backward", func(t *testing.T) {
		query.Interpolation = core.InterpolationBfill
		result, err := eng.ChartData(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Rows, 5)

		day2, ok := toFloat(result.Rows[1]["value"])
		require.True(t, ok)
		assert.InDelta(t, 40.0, day2, 1e-9)
	})

	t.Run("linear interpolates between neighbors", func(t *testing.T) {
		query.Interpolation = core.InterpolationLinear
		result, err := eng.ChartData(ctx, query)
		require.NoError(t, err)
		require.Len(t, result.Rows, 5)

		day2, ok := toFloat(result.Rows[1]["value"])
		require.True(t, ok)
		assert.InDelta(t, 15.25+(40.0-15.25)/3, day2, 1e-9)

		day3, ok := toFloat(result.Rows[2]["value"])
		require.True(t, ok)
		assert.InDelta(t, 15.25+2*(40.0-15.25)/3, day3, 1e-9)
	})
}

func TestChartDataValidation(t *testing.T) {
	eng, path := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.ChartData(ctx, ChartQuery{Path: path, ChartType: core.ChartLine})
	assert.ErrorIs(t, err, ErrInvalid, "missing value columns")

	_, err = eng.ChartData(ctx, ChartQuery{
		Path: path, ChartType: core.ChartLine, ValueColumns: []string{"value"},
	})
	assert.ErrorIs(t, err, ErrInvalid, "missing time column")

	_, err = eng.ChartData(ctx, ChartQuery{
		Path: path, ChartType: core.ChartLine, ValueColumns: []string{"value"},
		TimeColumn: "ts", TimeBucket: "3 fortnights",
	})
	assert.ErrorIs(t, err, ErrInvalid, "unknown bucket")
}

func TestUniqueValues(t *testing.T) {
	eng, path := newTestEngine(t)

	values, err := eng.UniqueValues(context.Background(), path, "category", 10)
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestQuery(t *testing.T) {
	eng, path := newTestEngine(t)
	ctx := context.Background()

	result, err := eng.Query(ctx, path, "SELECT COUNT(*) AS n FROM csv_view")
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	n, ok := toFloat(result.Rows[0]["n"])
	require.True(t, ok)
	assert.Equal(t, 5.0, n)

	_, err = eng.Query(ctx, path, "DROP TABLE csv_view")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEnsureParquet(t *testing.T) {
	eng, path := newTestEngine(t)
	ctx := context.Background()

	converted, err := eng.EnsureParquet(ctx, path, "events.parquet")
	require.NoError(t, err)
	assert.True(t, converted)

	schema, err := eng.Describe(ctx, "events.parquet")
	require.NoError(t, err)
	assert.Len(t, schema, 5)

	// Up to date, so the second call is a no-op.
	converted, err = eng.EnsureParquet(ctx, path, "events.parquet")
	require.NoError(t, err)
	assert.False(t, converted)
}
