package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// LocateQuery searches for the first row whose column matches a value.
type LocateQuery struct {
	Path      string
	Column    string
	Value     any
	MatchMode core.MatchMode
	Filters   []core.FilterSpec
	OrderBy   []core.SortSpec
}

// Locate returns the zero-based global row index of the first match under
// the query's filters and ordering, or a not-found result. A nil value is
// only searchable in exact mode, where it matches NULL cells.
func (e *Engine) Locate(ctx context.Context, q LocateQuery) (*core.LocateResult, error) {
	if q.Column == "" {
		return nil, fmt.Errorf("%w: column is required for locate", ErrInvalid)
	}

	mode := q.MatchMode
	if mode == "" {
		mode = core.MatchContains
	}
	if mode != core.MatchContains && mode != core.MatchExact {
		return nil, fmt.Errorf("%w: unsupported match mode %q", ErrInvalid, mode)
	}

	src, err := e.source(q.Path)
	if err != nil {
		return nil, err
	}

	var params []any
	where, err := buildFilterClause(q.Filters, &params)
	if err != nil {
		return nil, err
	}

	over := "()"
	if clause := buildWindowOrderClause(q.OrderBy); clause != "" {
		over = "(" + clause + ")"
	}

	column := quoteIdent(q.Column)
	var condition string
	var searchParams []any
	switch {
	case q.Value == nil:
		if mode == core.MatchContains {
			return nil, fmt.Errorf("%w: contains match does not support null search values", ErrInvalid)
		}
		condition = column + " IS NULL"
	case mode == core.MatchContains:
		condition = fmt.Sprintf("CAST(%s AS TEXT) ILIKE ?", column)
		searchParams = append(searchParams, fmt.Sprintf("%%%v%%", q.Value))
	default:
		condition = fmt.Sprintf("CAST(%s AS TEXT) = ?", column)
		searchParams = append(searchParams, fmt.Sprintf("%v", q.Value))
	}

	query := fmt.Sprintf(`
		WITH ranked AS (
			SELECT *, ROW_NUMBER() OVER %s AS row_number
			FROM %s%s
		)
		SELECT row_number - 1 AS row_index, %s AS match_value
		FROM ranked
		WHERE %s
		ORDER BY row_number
		LIMIT 1`, over, src, where, column, condition)

	var rowIndex int64
	var matchValue any
	err = e.db.QueryRowContext(ctx, query, append(params, searchParams...)...).Scan(&rowIndex, &matchValue)
	if errors.Is(err, sql.ErrNoRows) {
		return &core.LocateResult{Found: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to locate in %s: %w", q.Path, err)
	}

	return &core.LocateResult{
		Found:    true,
		RowIndex: rowIndex,
		Column:   q.Column,
		Value:    normalizeValue(matchValue),
	}, nil
}
