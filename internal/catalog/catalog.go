// Package catalog lists the CSV and Parquet datasets available under the
// configured data directory and watches it for changes.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/maximuthking/csv-viewer/pkg/core"
)

// datasetExtensions are the file extensions served from the data directory.
var datasetExtensions = map[string]struct{}{
	".csv":     {},
	".parquet": {},
}

// Service lists datasets from a data directory.
type Service struct {
	dataDir string
	logger  *slog.Logger
}

// New creates a catalog service over the given data directory.
func New(dataDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{dataDir: dataDir, logger: logger}
}

// List returns descriptors for all datasets directly under the data
// directory, sorted by path.
func (s *Service) List() ([]core.DatasetDescriptor, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory %s: %w", s.dataDir, err)
	}

	var datasets []core.DatasetDescriptor
	for _, entry := range entries {
		if entry.IsDir() || !isDataset(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File disappeared between listing and stat; skip it.
			continue
		}
		datasets = append(datasets, core.DatasetDescriptor{
			Name:       entry.Name(),
			Path:       filepath.ToSlash(entry.Name()),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime().Format(time.RFC3339),
		})
	}

	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Path < datasets[j].Path })
	return datasets, nil
}

// Watch invokes fn whenever a dataset file under the data directory is
// created, written, renamed, or removed. It blocks until the context is
// cancelled.
func (s *Service) Watch(ctx context.Context, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(s.dataDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dataDir, err)
	}
	s.logger.Debug("watching data directory", "dir", s.dataDir)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isDataset(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				s.logger.Debug("data directory changed", "file", event.Name, "op", event.Op.String())
				fn()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}

func isDataset(name string) bool {
	_, ok := datasetExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
