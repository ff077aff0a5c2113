package logging

import (
	"maps"
	"strings"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger and
// returns logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// NormalizeLevel maps user supplied level names onto the canonical set
// trace, debug, info, warn, error and fatal. Unknown names return "".
func NormalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return "trace"
	case "debug":
		return "debug"
	case "info", "":
		return "info"
	case "warn", "warning":
		return "warn"
	case "error":
		return "error"
	case "fatal":
		return "fatal"
	default:
		return ""
	}
}
