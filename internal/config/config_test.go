package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultSampleSize, cfg.SampleSize)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultRecentLimit, cfg.RecentLimit)
	assert.Equal(t, DefaultAPIAddr, cfg.API.Addr)
	assert.Equal(t, DefaultUIAddr, cfg.UI.Addr)
	assert.False(t, cfg.SummaryRespectsFilters)
	assert.True(t, filepath.IsAbs(cfg.DataDir))
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	payload := []byte(`
data_dir: datasets
page_size: 25
summary_respects_filters: true
ui:
  addr: 0.0.0.0:9000
  watch: true
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), payload, 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "datasets"), cfg.DataDir)
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.SummaryRespectsFilters)
	assert.Equal(t, "0.0.0.0:9000", cfg.UI.Addr)
	assert.True(t, cfg.UI.Watch)
	// Unset keys keep their defaults.
	assert.Equal(t, DefaultAPIAddr, cfg.API.Addr)
}

func TestEnvOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("page_size: 25\n"), 0o644))

	t.Setenv("CSVVIEWER_PAGE_SIZE", "100")
	t.Setenv("CSVVIEWER_UI__ADDR", "127.0.0.1:7000")

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.PageSize)
	assert.Equal(t, "127.0.0.1:7000", cfg.UI.Addr)
}

func TestFlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CSVVIEWER_PAGE_SIZE", "100")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("page-size", DefaultPageSize, "")
	flags.String("data-dir", DefaultDataDir, "")
	require.NoError(t, flags.Parse([]string{"--page-size=10"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.PageSize)
	// The data-dir flag was not changed, so it must not override anything.
	assert.Equal(t, DefaultSampleSize, cfg.SampleSize)
}

func TestExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	custom := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("recent_limit: 9\n"), 0o644))

	cfg, err := Load(custom, nil)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.RecentLimit)
}

func TestMissingExplicitConfigFileIsError(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("nope.yaml", nil)
	require.Error(t, err)
}
