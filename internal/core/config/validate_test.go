package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a Config with all required fields set for testing.
func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Style.TextColor = "#222222"
	cfg.Style.BgColor = "#fdf6e3"

	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Reader.Measure = "inches"
	cfg.Style.TextColor = "nope"

	err := cfg.ValidateDeep("")
	require.Error(t, err)

	var fieldErrs criterio.FieldErrors
	assert.False(t, errors.As(err, &fieldErrs), "structural errors are reported before field checks")
}

func TestValidateDeep_StyleFields(t *testing.T) {
	cfg := validConfig(t)
	cfg.Style.TextColor = "black"
	cfg.Style.BgColor = "#12"
	cfg.Style.Typeface = "papyrus"
	cfg.Style.Theme = "neon"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 4)

	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field
	}
	assert.ElementsMatch(t, []string{"style.text_color", "style.bg_color", "style.typeface", "style.theme"}, fields)
}

func TestValidateDeep_ConfigFileIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
	assert.Contains(t, fieldErrs[0].Err.Error(), "is a directory")
}

func TestValidateDeep_MissingConfigFileIsFine(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestValidateDeep_DataDirIsFile(t *testing.T) {
	cfg := validConfig(t)
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	cfg.DataDir = file

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "data_dir", fieldErrs[0].Field)
}

func TestWarnings(t *testing.T) {
	t.Run("none by default", func(t *testing.T) {
		assert.Empty(t, validConfig(t).Warnings())
	})

	t.Run("low contrast", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Style.TextColor = "#333333"
		cfg.Style.BgColor = "#343434"

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "text_color", warnings[0].Item)
	})

	t.Run("typeface without font measure", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Style.Typeface = "mono"

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "typeface", warnings[0].Item)

		cfg.Reader.Measure = MeasureFont
		assert.Empty(t, cfg.Warnings())
	})

	t.Run("single section cache", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Reader.CacheSize = 1

		warnings := cfg.Warnings()
		require.Len(t, warnings, 1)
		assert.Equal(t, "Reader", warnings[0].Category)
	})
}
