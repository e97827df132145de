// Package tuitest builds bubbletea input messages and normalizes rendered
// frames for assertions.
package tuitest

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

// StripANSI drops escape sequences, trailing spaces on each line, and
// trailing blank lines, leaving only the visible text of a frame.
func StripANSI(s string) string {
	lines := strings.Split(ansi.Strip(s), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func key(code rune) tea.Msg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

// KeyPress is a press of the printable key r.
func KeyPress(r rune) tea.Msg { return key(r) }

func KeyUp() tea.Msg    { return key(tea.KeyUp) }
func KeyDown() tea.Msg  { return key(tea.KeyDown) }
func KeyLeft() tea.Msg  { return key(tea.KeyLeft) }
func KeyRight() tea.Msg { return key(tea.KeyRight) }
func KeyEnter() tea.Msg { return key(tea.KeyEnter) }
func KeyEsc() tea.Msg   { return key(tea.KeyEscape) }

// WindowSize is the resize message sent when the terminal is w by h cells.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}

// MouseClick, MouseDrag and MouseRelease model one left-button gesture at
// cell x, y.
func MouseClick(x, y int) tea.Msg {
	return tea.MouseClickMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func MouseDrag(x, y int) tea.Msg {
	return tea.MouseMotionMsg{X: x, Y: y, Button: tea.MouseLeft}
}

func MouseRelease(x, y int) tea.Msg {
	return tea.MouseReleaseMsg{X: x, Y: y, Button: tea.MouseLeft}
}
