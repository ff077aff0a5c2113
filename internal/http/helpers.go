package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-blog/internal/posts"
)

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

// mapError picks the status and public payload for err. Internal details
// never reach the client.
func mapError(err error) (int, errorResponse) {
	if err == nil {
		return fiber.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if errors.Is(err, posts.ErrPostNotFound) || goerrors.IsNotFound(err) {
		return fiber.StatusNotFound, errorResponse{Error: "not_found", Message: "post not found"}
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, errorResponse{Error: errorCode(fiberErr.Code), Message: fiberErr.Message}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusServiceUnavailable, errorResponse{Error: "timeout", Message: "request timed out"}
	}

	return fiber.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal error"}
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusBadRequest:
		return "bad_request"
	default:
		if status >= 500 {
			return "internal_error"
		}
		return "request_error"
	}
}
