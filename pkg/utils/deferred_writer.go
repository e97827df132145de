// Package utils holds small helpers for the folio commands.
package utils

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// DeferredWriter collects the notes `folio read` produces while the reader
// owns the terminal (config warnings, the profiler address) and prints them
// once the screen is released. Safe for concurrent use.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends p to the pending notes.
func (d *DeferredWriter) Write(p []byte) (n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Write(p)
}

// Printf formats a line into the buffer, adding a newline when missing.
func (d *DeferredWriter) Printf(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := d.buf.Len()
	_, _ = fmt.Fprintf(&d.buf, format, args...)
	if d.buf.Len() > start && d.buf.Bytes()[d.buf.Len()-1] != '\n' {
		d.buf.WriteByte('\n')
	}
}

// Len returns the number of buffered bytes.
func (d *DeferredWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buf.Len()
}

// Flush prints the pending notes to w, usually stderr, and forgets them.
func (d *DeferredWriter) Flush(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.buf.Len() == 0 {
		return nil
	}

	_, err := d.buf.WriteTo(w)
	return err
}
