package source

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// parseMarkdown flattens markdown into paragraphs. Every level 1 or 2
// heading starts a new section titled by the heading; the document title is
// the first level 1 heading.
func parseMarkdown(data []byte, fallback string) (string, []Section, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(data))

	var (
		title    string
		sections []Section
		current  = Section{Title: fallback}
		body     strings.Builder
	)

	flush := func() {
		sections = addSection(sections, current.Title, body.String())
		body.Reset()
	}
	para := func(s string) {
		if s = strings.TrimSpace(s); s == "" {
			return
		}
		if body.Len() > 0 {
			body.WriteString("\n\n")
		}
		body.WriteString(s)
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch n := n.(type) {
		case *ast.Heading:
			heading := inlineText(n, data)
			if n.Level <= 2 {
				flush()
				current = Section{Title: heading}
				if n.Level == 1 && title == "" {
					title = heading
				}
			}
			para(heading)
		case *ast.ThematicBreak:
			para("* * *")
		default:
			para(blockText(n, data))
		}
	}
	flush()

	return title, sections, nil
}

// inlineText concatenates the text under n, turning soft breaks into spaces.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			switch {
			case t.HardLineBreak():
				b.WriteByte('\n')
			case t.SoftLineBreak():
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// blockText renders a block; blocks nested inside containers such as block
// quotes and list items are separated by blank lines.
func blockText(n ast.Node, src []byte) string {
	switch n := n.(type) {
	case *ast.List:
		return listText(n, src)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return blockLines(n, src)
	case *ast.HTMLBlock:
		return ""
	case *ast.Paragraph, *ast.TextBlock, *ast.Heading:
		return inlineText(n, src)
	}

	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if c.Type() == ast.TypeInline {
			return inlineText(n, src)
		}
		if s := strings.TrimSpace(blockText(c, src)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func listText(l *ast.List, src []byte) string {
	var (
		b     strings.Builder
		index = l.Start
	)
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		if l.IsOrdered() {
			b.WriteString(strconv.Itoa(index))
			b.WriteString(". ")
			index++
		} else {
			b.WriteString("• ")
		}
		b.WriteString(strings.TrimSpace(blockText(item, src)))
	}
	return b.String()
}

// blockLines returns the raw lines of a leaf block such as a code block.
func blockLines(n ast.Node, src []byte) string {
	lines := n.Lines()
	var b strings.Builder
	for i := range lines.Len() {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), "\n")
}
