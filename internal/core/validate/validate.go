// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/colonyops/folio/internal/core/flow"
)

// Color validates a "#rrggbb" or "#rgb" colour. Empty means "use the theme".
func Color(value string) error {
	if value == "" {
		return nil
	}
	if _, err := colorful.Hex(value); err != nil {
		return fmt.Errorf("invalid colour %q: expected #rrggbb or #rgb", value)
	}
	return nil
}

// ColorField returns a criterio validator for colours.
func ColorField(field, value string) error {
	return criterio.Run(field, value, Color)
}

// Typeface validates a typeface name. Empty means the regular face.
func Typeface(name string) error {
	if name == "" || slices.Contains(flow.Typefaces, name) {
		return nil
	}
	return fmt.Errorf("unknown typeface %q (want one of %s)", name, strings.Join(flow.Typefaces, ", "))
}

// TypefaceField returns a criterio validator for typefaces.
func TypefaceField(field, name string) error {
	return criterio.Run(field, name, Typeface)
}

// BookID validates a book identifier.
func BookID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("book id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid book id %q", id)
	}
	return nil
}
