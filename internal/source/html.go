package source

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockTags start a new line in extracted text.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
	atom.Section:    true,
	atom.Article:    true,
}

// skipTags hide their content.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Head:   true,
}

// parseHTML extracts one section of text from an (X)HTML document. The
// section is titled by <title>, or failing that the first <h1>.
func parseHTML(data []byte, fallback string) (string, []Section, error) {
	title, body, err := extractText(data)
	if err != nil {
		return "", nil, err
	}

	sectionTitle := title
	if sectionTitle == "" {
		sectionTitle = fallback
	}
	return title, addSection(nil, sectionTitle, body), nil
}

func extractText(data []byte) (title, body string, err error) {
	z := html.NewTokenizer(bytes.NewReader(data))

	var (
		buf         strings.Builder
		skipDepth   int
		inTitle     bool
		inH1        bool
		titleText   strings.Builder
		h1Text      strings.Builder
		lastNewline = true
	)

	newline := func() {
		if buf.Len() > 0 && !lastNewline {
			buf.WriteByte('\n')
			lastNewline = true
		}
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return "", "", err
			}
			title = strings.TrimSpace(titleText.String())
			if title == "" {
				title = strings.TrimSpace(h1Text.String())
			}
			return title, strings.TrimSpace(buf.String()), nil

		case html.StartTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Title:
				inTitle = true
			case skipTags[a]:
				skipDepth++
			case skipDepth > 0:
			case blockTags[a]:
				newline()
				inH1 = a == atom.H1 && h1Text.Len() == 0
			}

		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if skipDepth == 0 && blockTags[atom.Lookup(name)] {
				newline()
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			switch {
			case a == atom.Title:
				inTitle = false
			case skipTags[a] && skipDepth > 0:
				skipDepth--
			case a == atom.H1:
				inH1 = false
			}
			if skipDepth == 0 && blockTags[a] {
				newline()
			}

		case html.TextToken:
			raw := string(z.Text())
			if inTitle {
				titleText.WriteString(raw)
				continue
			}
			if skipDepth > 0 {
				continue
			}
			text := collapseWhitespace(raw)
			if text == "" {
				continue
			}
			if lastNewline || strings.HasSuffix(buf.String(), " ") {
				text = strings.TrimLeft(text, " ")
				if text == "" {
					continue
				}
			}
			if inH1 {
				h1Text.WriteString(text)
			}
			buf.WriteString(text)
			lastNewline = false
		}
	}
}

// collapseWhitespace replaces whitespace runs with single spaces, keeping a
// leading or trailing space so inline elements stay separated. All-space
// input becomes " " so that words split across tags keep a gap.
func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}

	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
