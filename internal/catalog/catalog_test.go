package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maximuthking/csv-viewer/internal/testutil"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "x\n1\n")
	writeFile(t, dir, "a.parquet", "not really parquet")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o750))

	svc := New(dir, testutil.NewTestLogger(t))
	datasets, err := svc.List()
	require.NoError(t, err)

	require.Len(t, datasets, 2)
	assert.Equal(t, "a.parquet", datasets[0].Path)
	assert.Equal(t, "b.csv", datasets[1].Path)
	assert.Equal(t, int64(4), datasets[1].SizeBytes)
	assert.NotEmpty(t, datasets[0].ModifiedAt)
}

func TestListMissingDir(t *testing.T) {
	svc := New(filepath.Join(t.TempDir(), "missing"), nil)
	_, err := svc.List()
	assert.Error(t, err)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	svc := New(dir, testutil.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pings := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- svc.Watch(ctx, func() {
			select {
			case pings <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, dir, "fresh.csv", "x\n1\n")

	select {
	case <-pings:
	case <-time.After(5 * time.Second):
		t.Fatal("no ping after dataset creation")
	}

	// Non-dataset files are ignored.
	writeFile(t, dir, "ignored.txt", "noise")
	writeFile(t, dir, "fresh.csv", "x\n1\n2\n")
	select {
	case <-pings:
	case <-time.After(5 * time.Second):
		t.Fatal("no ping after dataset update")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
