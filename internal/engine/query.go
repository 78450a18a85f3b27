package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

const defaultParquetRowGroupSize = 122880

// UniqueValues returns up to limit distinct non-null values of a column,
// useful for populating filter pickers.
func (e *Engine) UniqueValues(ctx context.Context, path, column string, limit int) ([]any, error) {
	if column == "" {
		return nil, fmt.Errorf("%w: column is required", ErrInvalid)
	}
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}

	src, err := e.source(path)
	if err != nil {
		return nil, err
	}

	ident := quoteIdent(column)
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL LIMIT ?", ident, src, ident)
	rows, err := e.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unique values of %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	var values []any
	for rows.Next() {
		var value any
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan unique value: %w", err)
		}
		values = append(values, normalizeValue(value))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unique values: %w", err)
	}
	return values, nil
}

// Query executes a user-supplied SELECT statement with the dataset exposed
// as the view csv_view. Only SELECT statements are accepted.
func (e *Engine) Query(ctx context.Context, path, query string) (*core.TableResult, error) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty SQL statement", ErrInvalid)
	}
	if !strings.HasPrefix(strings.ToLower(trimmed), "select") {
		return nil, fmt.Errorf("%w: only SELECT statements are allowed", ErrInvalid)
	}

	src, err := e.source(path)
	if err != nil {
		return nil, err
	}

	// Pin one connection so the temp view and the query share a session.
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	viewSQL := fmt.Sprintf("CREATE OR REPLACE TEMP VIEW csv_view AS SELECT * FROM %s", src)
	if _, err := conn.ExecContext(ctx, viewSQL); err != nil {
		return nil, fmt.Errorf("failed to register dataset view: %w", err)
	}

	rows, err := conn.QueryContext(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	defer func() { _ = rows.Close() }()
	return scanTable(rows)
}

// EnsureParquet writes a Parquet copy of a CSV dataset when the copy is
// missing or older than the source. Returns true when a conversion ran.
func (e *Engine) EnsureParquet(ctx context.Context, csvPath, parquetPath string) (bool, error) {
	csvTarget, err := e.resolvePath(csvPath)
	if err != nil {
		return false, err
	}

	parquetTarget := filepath.FromSlash(parquetPath)
	if !filepath.IsAbs(parquetTarget) {
		parquetTarget = filepath.Join(e.cfg.DataDir, parquetTarget)
	}

	csvInfo, err := os.Stat(csvTarget)
	if err != nil {
		return false, fmt.Errorf("%w: %s", ErrNotFound, csvPath)
	}
	if parquetInfo, err := os.Stat(parquetTarget); err == nil && !parquetInfo.ModTime().Before(csvInfo.ModTime()) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(parquetTarget), 0o750); err != nil {
		return false, fmt.Errorf("failed to create parquet directory: %w", err)
	}

	rowGroupSize := e.cfg.ParquetRowGroupSize
	if rowGroupSize <= 0 {
		rowGroupSize = defaultParquetRowGroupSize
	}

	csvLiteral := strings.ReplaceAll(csvTarget, "'", "''")
	parquetLiteral := strings.ReplaceAll(parquetTarget, "'", "''")
	copySQL := fmt.Sprintf(
		"COPY (SELECT * FROM read_csv_auto('%s', SAMPLE_SIZE=%d)) TO '%s' (FORMAT 'parquet', ROW_GROUP_SIZE %d)",
		csvLiteral, e.cfg.SampleSize, parquetLiteral, rowGroupSize)

	if _, err := e.db.ExecContext(ctx, copySQL); err != nil {
		return false, fmt.Errorf("failed to convert %s to parquet: %w", csvPath, err)
	}
	e.logger.Debug("converted dataset to parquet", "csv", csvPath, "parquet", parquetTarget)
	return true, nil
}
