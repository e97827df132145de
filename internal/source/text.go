package source

import (
	"fmt"
	"strings"
)

// parseText reads plain text. A form feed starts a new section; a section's
// title is its first non-empty line.
func parseText(data []byte, fallback string) (string, []Section, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	parts := strings.Split(text, "\f")

	var sections []Section
	for i, part := range parts {
		title := firstLine(part)
		if title == "" {
			title = fmt.Sprintf("%s %d", fallback, i+1)
		}
		sections = addSection(sections, title, part)
	}

	if len(parts) == 1 && len(sections) == 1 {
		sections[0].Title = fallback
	}
	return "", sections, nil
}

func firstLine(s string) string {
	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
