// Package commands implements the csvviewer subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/maximuthking/csv-viewer/internal/config"
	"github.com/maximuthking/csv-viewer/internal/engine"
)

// newEngine opens a DuckDB-backed engine over the configured data directory.
func newEngine(cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	if _, err := os.Stat(cfg.DataDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("data directory does not exist: %s", cfg.DataDir)
	}

	return engine.New(engine.Config{
		DataDir:             cfg.DataDir,
		SampleSize:          cfg.SampleSize,
		ParquetRowGroupSize: cfg.ParquetRowGroupSize,
		Logger:              logger,
	})
}
