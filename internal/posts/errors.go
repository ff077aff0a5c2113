package posts

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeValidationRejected = "VALIDATION_REJECTED"
	TextCodeContentIO          = "CONTENT_IO"
	TextCodePostNotFound       = "POST_NOT_FOUND"
)

// ErrPostNotFound is the source of every not found error built by NotFound.
var ErrPostNotFound = errors.New("posts: post not found")

// NotFound builds the error collaborators return when a lookup yields no post.
func NotFound(slug, language string) *goerrors.Error {
	return goerrors.Wrap(ErrPostNotFound, goerrors.CategoryNotFound, "post not found").
		WithTextCode(TextCodePostNotFound).
		WithMetadata(map[string]any{"slug": slug, "language": language})
}

// IsRejected reports whether err is a validation rejection from Assemble.
func IsRejected(err error) bool {
	return goerrors.IsValidation(err)
}

func contentIOError(err error, op, path string) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("posts: %s %s", op, path)).
		WithTextCode(TextCodeContentIO)
}

func rejection(err error, slug string) *goerrors.Error {
	var rejected *goerrors.Error
	if errors.As(err, &rejected) && rejected.Category == goerrors.CategoryValidation {
		return rejected.WithTextCode(TextCodeValidationRejected).
			WithMetadata(map[string]any{"slug": slug})
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "post rejected").
		WithTextCode(TextCodeValidationRejected).
		WithMetadata(map[string]any{"slug": slug})
}
