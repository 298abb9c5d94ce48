package docker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ParseOtherFiles decodes the other_files argument of run_container_by_compose.
// An empty string or "{}" yields an empty map; any other input must be a JSON
// object, otherwise the returned error wraps ErrInvalidOtherFiles. Numbers
// are kept as json.Number so they are forwarded exactly as written.
func ParseOtherFiles(raw string) (map[string]any, error) {
	if raw == "" || raw == "{}" {
		return map[string]any{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOtherFiles, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidOtherFiles)
	}
	files, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidOtherFiles, jsonKind(decoded, raw))
	}
	return files, nil
}

func jsonKind(v any, raw string) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T (%s)", v, strings.TrimSpace(raw))
	}
}
