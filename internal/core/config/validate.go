package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/colonyops/folio/internal/core/styles"
	"github.com/colonyops/folio/internal/core/validate"
)

// minContrast is the CIE94 distance below which text and background are
// considered hard to tell apart.
const minContrast = 0.25

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// colours, theme names and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateStyle(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Style.TextColor != "" && c.Style.BgColor != "" {
		fg, errFg := colorful.Hex(c.Style.TextColor)
		bg, errBg := colorful.Hex(c.Style.BgColor)
		if errFg == nil && errBg == nil && fg.DistanceCIE94(bg) < minContrast {
			warnings = append(warnings, ValidationWarning{
				Category: "Style",
				Item:     "text_color",
				Message:  fmt.Sprintf("text colour %s is hard to read on %s", c.Style.TextColor, c.Style.BgColor),
			})
		}
	}

	if c.Reader.Measure == MeasureCells && c.Style.Typeface != "" && c.Style.Typeface != "regular" {
		warnings = append(warnings, ValidationWarning{
			Category: "Style",
			Item:     "typeface",
			Message:  "typeface only affects layout with reader.measure: font",
		})
	}

	if c.Reader.CacheSize == 1 {
		warnings = append(warnings, ValidationWarning{
			Category: "Reader",
			Item:     "cache_size",
			Message:  "a cache of one section re-paginates on every section boundary",
		})
	}

	return warnings
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateStyle() error {
	return criterio.ValidateStruct(
		validate.ColorField("style.text_color", c.Style.TextColor),
		validate.ColorField("style.bg_color", c.Style.BgColor),
		validate.TypefaceField("style.typeface", c.Style.Typeface),
		criterio.Run("style.theme", c.Style.Theme, knownTheme),
	)
}

func knownTheme(name string) error {
	names := styles.ThemeNames()
	if slices.Contains(names, name) {
		return nil
	}
	return fmt.Errorf("unknown theme %q (want one of %s)", name, strings.Join(names, ", "))
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}
