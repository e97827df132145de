// Package iojson reads and writes the JSON documents behind the --json and
// --file flags of the command line.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// Error is the body written to the error stream when a value cannot be
// encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

// marshalFailure encodes the failure itself, which always succeeds since
// it only holds strings.
func marshalFailure(msg string, cause error) string {
	bits, _ := json.Marshal(Error{
		Message: msg,
		Data:    map[string]any{"json_error": cause.Error()},
	})
	return string(bits)
}

// WriteWith writes obj to w as indented JSON. When obj cannot be encoded a
// JSON Error goes to ew instead, and only a failed write is returned.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		_, err = fmt.Fprintln(ew, marshalFailure("error marshaling in iojson.Write", err))
		return err
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj as a single line of compact JSON, suitable for
// JSON lines output.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal line: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}
