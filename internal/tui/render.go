package tui

import (
	"fmt"
	"math"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/colonyops/folio/internal/core/window"
)

// edge marks the fold of a turning page.
const edge = "▏"

func (m Model) render() string {
	page := m.renderPage()
	content := lipgloss.JoinVertical(lipgloss.Left, page, m.renderStatus())

	if m.state == stateOverview && m.overview != nil {
		content = m.overview.Overlay(content, m.theme, m.width, m.height)
	}
	return content
}

// renderPage composites the Current slot over the Next slot. Outside a turn
// the reveal is 1 and only Current is drawn.
func (m Model) renderPage() string {
	w, h := m.width, m.pageHeight()
	if w <= 0 || h <= 0 {
		return ""
	}

	win := m.session.Window()
	cur := m.pageRows(win.Slot(window.Current), w, h)
	reveal := m.session.Reveal(m.now())
	cols := int(math.Round(reveal * float64(w)))

	if cols >= w {
		return m.theme.Page.Render(strings.Join(cur, "\n"))
	}

	under := m.pageRows(win.Slot(window.Next), w, h)
	shade := m.theme.Page.Background(m.theme.Shade(1 - reveal))
	rows := make([]string, h)
	for i := range h {
		var b strings.Builder
		if cols > 0 {
			b.WriteString(m.theme.Page.Render(ansi.Truncate(cur[i], cols-1, "")))
			b.WriteString(m.theme.Edge.Render(edge))
		}
		b.WriteString(shade.Render(ansi.Cut(under[i], max(cols, 0), w)))
		rows[i] = b.String()
	}
	return strings.Join(rows, "\n")
}

// pageRows lays a slot's lines into h rows of exactly w cells, offset by the
// style padding. An empty slot is a blank page.
func (m Model) pageRows(p *window.Page, w, h int) []string {
	pad := max(int(m.session.Display().Style().Padding), 0)
	blank := strings.Repeat(" ", w)
	rows := make([]string, h)
	for i := range rows {
		rows[i] = blank
	}
	if p == nil {
		return rows
	}

	inner := max(w-2*pad, 0)
	for i, line := range p.Lines {
		r := pad + i
		if r >= h {
			break
		}
		rows[r] = fitCells(strings.Repeat(" ", pad)+ansi.Truncate(line, inner, ""), w)
	}
	return rows
}

// fitCells pads or truncates s to exactly w cells.
func fitCells(s string, w int) string {
	s = ansi.Truncate(s, w, "")
	if n := ansi.StringWidth(s); n < w {
		s += strings.Repeat(" ", w-n)
	}
	return s
}

func (m Model) renderStatus() string {
	w := m.width
	if w <= 0 {
		return ""
	}
	st := m.session.Status()

	pages := "…"
	if st.Pages > 0 {
		pages = fmt.Sprint(st.Pages)
	}
	right := fmt.Sprintf("%d/%s  %3.0f%%", st.Page, pages, st.Percent*100)

	left := st.SectionTitle
	if left == "" {
		left = st.Title
	}
	if m.notice != "" {
		left = m.notice
	}

	// Status has one cell of padding on each side.
	inner := max(w-2, 0)
	room := max(inner-ansi.StringWidth(right)-1, 0)
	left = ansi.Truncate(left, room, "…")
	gap := max(inner-ansi.StringWidth(left)-ansi.StringWidth(right), 0)

	line := left + strings.Repeat(" ", gap) + right
	return m.theme.Status.Render(fitCells(line, inner))
}
