// Package source turns files on disk into the sectioned plain text the
// paginator consumes.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/colonyops/folio/internal/core/logging"
)

var (
	// ErrNoSections is returned when a path yields no readable text.
	ErrNoSections = errors.New("no readable sections")
	// ErrUnsupported is returned for files with an unknown extension.
	ErrUnsupported = errors.New("unsupported file type")
)

// Source provides a book's sections. Implementations are safe for
// concurrent use.
type Source interface {
	ID() string
	Title() string
	SectionCount() int
	SectionTitle(section int) string
	SectionText(section int) (string, error)
}

// Section is one unit of flowed text, usually a chapter.
type Section struct {
	Title string
	Text  string
}

// Book is an immutable, fully loaded Source.
type Book struct {
	id       string
	title    string
	sections []Section
}

var _ Source = (*Book)(nil)

// New creates a book from already extracted sections.
func New(id, title string, sections []Section) *Book {
	return &Book{id: id, title: title, sections: sections}
}

func (b *Book) ID() string        { return b.id }
func (b *Book) Title() string     { return b.title }
func (b *Book) SectionCount() int { return len(b.sections) }

// SectionTitle returns the title of section s, or "" when out of range.
func (b *Book) SectionTitle(s int) string {
	if s < 0 || s >= len(b.sections) {
		return ""
	}
	return b.sections[s].Title
}

// SectionText returns the text of section s.
func (b *Book) SectionText(s int) (string, error) {
	if s < 0 || s >= len(b.sections) {
		return "", fmt.Errorf("section %d out of range [0, %d)", s, len(b.sections))
	}
	return b.sections[s].Text, nil
}

// parser extracts sections from one file's contents. fallback titles
// untitled sections.
type parser func(data []byte, fallback string) (title string, sections []Section, err error)

var parsers = map[string]parser{
	".txt":      parseText,
	".text":     parseText,
	".md":       parseMarkdown,
	".markdown": parseMarkdown,
	".html":     parseHTML,
	".htm":      parseHTML,
	".xhtml":    parseHTML,
}

// Supported reports whether path has an extension Open can read.
func Supported(path string) bool {
	_, ok := parsers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// bookPattern matches every supported file below a directory.
const bookPattern = "**/*.{txt,text,md,markdown,html,htm,xhtml}"

// Open loads a book from a file, a directory or a glob pattern such as
// "notes/**/*.md". A directory or pattern contributes one or more sections
// per supported file, in path order; hidden files and directories are
// skipped.
func Open(path string) (*Book, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	var (
		title    string
		sections []Section
		size     int64
	)

	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		title = filepath.Base(abs)
		sections, size, err = openDir(abs)
	case err == nil:
		size = info.Size()
		title, sections, err = openFile(abs)
	case errors.Is(err, os.ErrNotExist) && isPattern(abs):
		base, _ := doublestar.SplitPattern(filepath.ToSlash(abs))
		title = filepath.Base(filepath.FromSlash(base))
		sections, size, err = openGlob(abs)
	default:
		return nil, fmt.Errorf("open book: %w", err)
	}
	if err != nil {
		return nil, err
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSections)
	}

	return New(BookID(abs, size), title, sections), nil
}

func isPattern(path string) bool {
	return strings.ContainsAny(path, "*?[{") && doublestar.ValidatePathPattern(path)
}

func openFile(path string) (string, []Section, error) {
	parse, ok := parsers[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return "", nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	title, sections, err := parse(data, name)
	if err != nil {
		return "", nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if title == "" {
		title = name
	}
	return title, sections, nil
}

func openDir(dir string) ([]Section, int64, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), bookPattern,
		doublestar.WithFilesOnly(), doublestar.WithCaseInsensitive())
	if err != nil {
		return nil, 0, fmt.Errorf("read directory: %w", err)
	}

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	return openFiles(dir, paths)
}

func openGlob(pattern string) ([]Section, int64, error) {
	paths, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, 0, fmt.Errorf("expand %s: %w", pattern, err)
	}
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
	return openFiles(filepath.FromSlash(base), paths)
}

// openFiles reads every supported, visible file in paths, sorted by their
// path relative to root.
func openFiles(root string, paths []string) ([]Section, int64, error) {
	sort.Strings(paths)
	log := logging.Component("source")

	var (
		sections []Section
		size     int64
	)
	for _, path := range paths {
		if hidden(root, path) {
			continue
		}
		if !Supported(path) {
			log.Debug().Str("file", path).Msg("skipping unsupported file")
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, 0, fmt.Errorf("stat %s: %w", path, err)
		}
		size += info.Size()

		_, fileSections, err := openFile(path)
		if err != nil {
			return nil, 0, err
		}
		sections = append(sections, fileSections...)
	}
	return sections, size, nil
}

// hidden reports whether any element of path below root starts with a dot.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// BookID derives a stable identifier from a book's absolute path and size,
// so that progress survives restarts but not a rewrite of the file.
func BookID(absPath string, size int64) string {
	name := "file://" + filepath.ToSlash(absPath) + "#" + strconv.FormatInt(size, 10)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// addSection appends text as a section unless it is blank.
func addSection(sections []Section, title, text string) []Section {
	text = strings.TrimSpace(text)
	if text == "" {
		return sections
	}
	return append(sections, Section{Title: title, Text: text})
}
