package tui

import (
	"fmt"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/folio/internal/core/styles"
	"github.com/colonyops/folio/internal/reader"
)

const (
	overviewMaxRows  = 15
	overviewMinWidth = 30
	overviewMargin   = 4
)

// overviewDialog lists the book's sections and seeks to the chosen one.
type overviewDialog struct {
	sections []reader.SectionInfo
	cursor   int
	offset   int
}

func newOverviewDialog(sections []reader.SectionInfo) *overviewDialog {
	d := &overviewDialog{}
	d.refresh(sections)
	for i, s := range sections {
		if s.Current {
			d.cursor = i
		}
	}
	d.scroll()
	return d
}

// refresh replaces the rows, keeping the cursor.
func (d *overviewDialog) refresh(sections []reader.SectionInfo) {
	d.sections = sections
	d.cursor = min(d.cursor, max(len(sections)-1, 0))
	d.scroll()
}

func (d *overviewDialog) move(delta int) {
	if len(d.sections) == 0 {
		return
	}
	d.cursor = min(max(d.cursor+delta, 0), len(d.sections)-1)
	d.scroll()
}

func (d *overviewDialog) selected() int {
	return d.cursor
}

func (d *overviewDialog) scroll() {
	if d.cursor < d.offset {
		d.offset = d.cursor
	}
	if d.cursor >= d.offset+overviewMaxRows {
		d.offset = d.cursor - overviewMaxRows + 1
	}
}

// View renders the dialog box.
func (d *overviewDialog) View(theme styles.Theme, width int) string {
	rowWidth := max(min(width-overviewMargin*2, 60), overviewMinWidth)

	var lines []string
	end := min(d.offset+overviewMaxRows, len(d.sections))
	for i := d.offset; i < end; i++ {
		s := d.sections[i]

		pages := "  …"
		if s.Pages > 0 {
			pages = fmt.Sprintf("%3d pp", s.Pages)
		}
		meta := fmt.Sprintf("%3.0f%%  %s", s.Percent*100, pages)

		title := s.Title
		if title == "" {
			title = fmt.Sprintf("Section %d", s.Index+1)
		}
		marker := "  "
		if s.Current {
			marker = "• "
		}
		room := max(rowWidth-ansi.StringWidth(marker)-ansi.StringWidth(meta)-1, 1)
		title = ansi.Truncate(title, room, "…")
		gap := max(rowWidth-ansi.StringWidth(marker)-ansi.StringWidth(title)-ansi.StringWidth(meta), 1)

		row := marker + title + strings.Repeat(" ", gap) + meta
		if i == d.cursor {
			row = theme.Selected.Render(row)
		}
		lines = append(lines, row)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		theme.DialogTitle.Render("Contents"),
		"",
		strings.Join(lines, "\n"),
		"",
		theme.Help.Render("↑/↓ move • enter go • esc close"),
	)
	return theme.Dialog.Render(content)
}

// Overlay renders the dialog centred over background.
func (d *overviewDialog) Overlay(background string, theme styles.Theme, width, height int) string {
	modal := d.View(theme, width)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	modalLayer.X(max((width-modalW)/2, 0)).Y(max((height-modalH)/2, 0)).Z(1)

	compositor := lipgloss.NewCompositor(bgLayer, modalLayer)
	return compositor.Render()
}
