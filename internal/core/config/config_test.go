package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/folio/internal/core/flow"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), dataDir)
	require.NoError(t, err)

	want := DefaultConfig()
	want.DataDir = dataDir
	assert.Equal(t, &want, cfg)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("", "/data")
	require.NoError(t, err)
	assert.Equal(t, "/data", cfg.DataDir)
	assert.Equal(t, MeasureCells, cfg.Reader.Measure)
}

func TestLoad_OverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
style:
  text_color: "#222222"
  bg_color: "#fdf6e3"
  typeface: mono
  padding: 2
  line_spacing: 1
reader:
  measure: font
  turn_duration: 400ms
  hot_zone_width: 0.3
database:
  busy_timeout: 100
`)

	cfg, err := Load(path, "/data")
	require.NoError(t, err)

	assert.Equal(t, "#222222", cfg.Style.TextColor)
	assert.Equal(t, "mono", cfg.Style.Typeface)
	assert.InDelta(t, 2.0, cfg.Style.Padding, 1e-12)
	assert.Equal(t, MeasureFont, cfg.Reader.Measure)
	assert.Equal(t, 400*time.Millisecond, cfg.Reader.TurnDuration)
	assert.InDelta(t, 0.3, cfg.Reader.HotZoneWidth, 1e-12)
	assert.Equal(t, 100, cfg.Database.BusyTimeout)

	// Unset values fall back to defaults.
	defaults := DefaultConfig()
	assert.InDelta(t, defaults.Style.TextSize, cfg.Style.TextSize, 1e-12)
	assert.Equal(t, defaults.Style.Theme, cfg.Style.Theme)
	assert.Equal(t, defaults.Reader.CacheSize, cfg.Reader.CacheSize)
	assert.Equal(t, defaults.Reader.TickInterval, cfg.Reader.TickInterval)
	assert.Equal(t, defaults.Database.MaxOpenConns, cfg.Database.MaxOpenConns)
	assert.Equal(t, "/data", cfg.DataDir, "data_dir never comes from the file")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad yaml", "style: [", "parse config file"},
		{"bad measure", "reader:\n  measure: inches\n", "reader.measure"},
		{"negative padding", "style:\n  padding: -1\n", "style.padding"},
		{"hot zone too wide", "reader:\n  hot_zone_width: 0.6\n", "reader.hot_zone_width"},
		{"negative cache", "reader:\n  cache_size: -2\n", "reader.cache_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), "/data")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RequiresDataDir(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}

func TestStyleConfig_Flow(t *testing.T) {
	s := StyleConfig{
		TextColor:   "#000000",
		BgColor:     "#ffffff",
		Typeface:    "italic",
		TextSize:    14,
		Padding:     3,
		LineSpacing: 0.5,
		Theme:       "sepia",
	}

	assert.Equal(t, flow.Style{
		TextColor:   "#000000",
		BgColor:     "#ffffff",
		Typeface:    "italic",
		TextSize:    14,
		Padding:     3,
		LineSpacing: 0.5,
	}, s.Flow())
}

func TestPaths(t *testing.T) {
	cfg := Config{DataDir: "/var/folio"}
	assert.Equal(t, "/var/folio/folio.db", cfg.DBPath())
	assert.Equal(t, "/var/folio/folio.log", cfg.LogFile())
}
