package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// TextWriter is implemented by CLI payloads that have a human-readable form.
type TextWriter interface {
	WriteText(w io.Writer) error
}

// Write writes output in the requested format.
//
// Supported formats:
// - json (default)
// - text (payloads implementing TextWriter; anything else falls back to JSON)
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", "json":
		return WriteJSON(w, v, pretty)
	case "text":
		if t, ok := v.(TextWriter); ok {
			return t.WriteText(w)
		}
		return WriteJSON(w, v, true)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteJSON writes strict JSON output for CLI commands.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	var b []byte
	var err error
	if pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))
	return err
}
