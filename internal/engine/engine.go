// Package engine executes analytic queries over CSV and Parquet datasets
// using DuckDB. Every operation reads the dataset directly through
// read_csv_auto or read_parquet, so the engine keeps no per-dataset state
// between calls.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// Sentinel errors. Callers classify failures with errors.Is.
var (
	// ErrNotFound indicates the requested dataset does not exist.
	ErrNotFound = errors.New("dataset not found")
	// ErrInvalid indicates the request parameters cannot be executed.
	ErrInvalid = errors.New("invalid request")
)

// Default query limits.
const (
	DefaultPreviewLimit = 20
	MaxPreviewLimit     = 500
	defaultSampleSize   = 20480
	scatterSampleRows   = 5000
)

// Config holds engine configuration.
type Config struct {
	// DataDir is the directory containing the CSV/Parquet datasets.
	DataDir string
	// SampleSize is the row count DuckDB samples for CSV schema inference.
	SampleSize int
	// ParquetRowGroupSize is used when converting CSV files to Parquet.
	ParquetRowGroupSize int
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Engine runs analytic queries against datasets in the data directory.
type Engine struct {
	db     *sql.DB
	cfg    Config
	logger *slog.Logger
}

// New creates an engine backed by an in-memory DuckDB database.
func New(cfg Config) (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}
	return NewWithDB(db, cfg), nil
}

// NewWithDB creates an engine over an existing database handle. Used by New
// and by tests that inject a mock.
func NewWithDB(db *sql.DB, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = defaultSampleSize
	}
	return &Engine{db: db, cfg: cfg, logger: logger}
}

// Close releases the underlying database handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// resolvePath maps a catalog path to an absolute file path, verifying the
// file exists.
func (e *Engine) resolvePath(path string) (string, error) {
	target := filepath.FromSlash(path)
	if !filepath.IsAbs(target) {
		target = filepath.Join(e.cfg.DataDir, target)
	}
	if info, err := os.Stat(target); err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return target, nil
}

// source returns the FROM-clause fragment reading the dataset.
func (e *Engine) source(path string) (string, error) {
	target, err := e.resolvePath(path)
	if err != nil {
		return "", err
	}
	literal := strings.ReplaceAll(target, "'", "''")
	if strings.EqualFold(filepath.Ext(target), ".parquet") {
		return fmt.Sprintf("read_parquet('%s')", literal), nil
	}
	return fmt.Sprintf("read_csv_auto('%s', SAMPLE_SIZE=%d)", literal, e.cfg.SampleSize), nil
}

// Describe returns column names, dtypes, and nullability for a dataset.
func (e *Engine) Describe(ctx context.Context, path string) ([]core.ColumnDescriptor, error) {
	src, err := e.source(path)
	if err != nil {
		return nil, err
	}

	rows, err := e.db.QueryContext(ctx, fmt.Sprintf("DESCRIBE SELECT * FROM %s", src))
	if err != nil {
		return nil, fmt.Errorf("failed to describe %s: %w", path, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read describe columns: %w", err)
	}

	var schema []core.ColumnDescriptor
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan describe row: %w", err)
		}

		// DESCRIBE yields column_name, column_type, null in leading positions.
		schema = append(schema, core.ColumnDescriptor{
			Name:     asString(values[0]),
			Dtype:    asString(values[1]),
			Nullable: strings.EqualFold(asString(values[2]), "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating describe rows: %w", err)
	}
	return schema, nil
}

// asString renders a scanned value as a string.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", s)
	}
}

// scanTable drains a result set into a TableResult, converting driver byte
// slices to strings and timestamps to RFC 3339.
func scanTable(rows *sql.Rows) (*core.TableResult, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &core.TableResult{Columns: cols, Rows: []core.Row{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(core.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return result, nil
}

// normalizeValue converts driver-specific scan types into the scalar kinds
// carried on the wire.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}
