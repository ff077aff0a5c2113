package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// ErrFieldType reports a front matter value whose type does not fit the
// accessor used to read it.
var ErrFieldType = errors.New("frontmatter: unexpected field type")

// DateLayouts lists the accepted publishedAt formats, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// FrontMatter is the untyped key/value block at the top of a post file.
type FrontMatter map[string]any

// ParseFrontMatter splits source into its metadata block and body. Source
// without a delimiter yields empty metadata and the whole text as body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	meta := map[string]any{}

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return FrontMatter(normalizeMap(meta)), body, nil
}

// Has reports whether key is present with a non nil value.
func (fm FrontMatter) Has(key string) bool {
	value, ok := fm[key]
	return ok && value != nil
}

// String reads a scalar as a trimmed string. Missing keys return "".
func (fm FrontMatter) String(key string) (string, error) {
	value, ok := fm[key]
	if !ok || value == nil {
		return "", nil
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), nil
	case int, int64, uint64, float64, bool:
		return fmt.Sprint(v), nil
	case time.Time:
		return formatDate(v), nil
	default:
		return "", fieldTypeError(key, "string", value)
	}
}

// StringSlice reads a list of strings. A single string becomes a one element
// list. Blank entries are dropped.
func (fm FrontMatter) StringSlice(key string) ([]string, error) {
	value, ok := fm[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}, nil
		}
		return nil, nil
	case int, int64, uint64, float64, bool:
		return []string{fmt.Sprint(v)}, nil
	case []string:
		return compact(v), nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case int, int64, float64:
				out = append(out, fmt.Sprint(s))
			default:
				return nil, fieldTypeError(key, "list of strings", value)
			}
		}
		return compact(out), nil
	default:
		return nil, fieldTypeError(key, "list of strings", value)
	}
}

// Int reads an integer. Missing keys return nil.
func (fm FrontMatter) Int(key string) (*int, error) {
	value, ok := fm[key]
	if !ok || value == nil {
		return nil, nil
	}
	var n int
	switch v := value.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case uint64:
		n = int(v)
	case float64:
		if v != float64(int(v)) {
			return nil, fieldTypeError(key, "integer", value)
		}
		n = int(v)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fieldTypeError(key, "integer", value)
		}
		n = parsed
	default:
		return nil, fieldTypeError(key, "integer", value)
	}
	return &n, nil
}

// Bool reads a boolean. Missing keys return nil.
func (fm FrontMatter) Bool(key string) (*bool, error) {
	value, ok := fm[key]
	if !ok || value == nil {
		return nil, nil
	}
	var b bool
	switch v := value.(type) {
	case bool:
		b = v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fieldTypeError(key, "boolean", value)
		}
		b = parsed
	default:
		return nil, fieldTypeError(key, "boolean", value)
	}
	return &b, nil
}

// ParseDate parses value with DateLayouts.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", value)
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func fieldTypeError(key, want string, got any) error {
	return fmt.Errorf("%w: %s must be a %s, got %T", ErrFieldType, key, want, got)
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// normalizeMap converts the map[any]any values produced by the YAML decoder
// into map[string]any so the result encodes cleanly as JSON.
func normalizeMap(in map[string]any) map[string]any {
	out := maps.Clone(in)
	for key, value := range out {
		out[key] = normalizeValue(value)
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		m := make(map[string]any, len(v))
		for key, inner := range v {
			m[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return m
	case map[string]any:
		return normalizeMap(v)
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return value
	}
}
