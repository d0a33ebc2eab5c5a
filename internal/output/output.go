// Package output persists geocoding results as JSON files.
package output

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteJSON writes v to path as UTF-8 JSON with 2-space indentation.
// Non-ASCII characters are written as-is, not escaped, so Japanese text in
// the output file stays readable.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file '%s': %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write JSON to '%s': %w", path, err)
	}
	return nil
}
