package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTransient     = errors.New("transient failure")
	ErrNotFound      = errors.New("not found")
	ErrNoExactMatch  = errors.New("no exact match")
	ErrConfiguration = errors.New("configuration error")
	ErrWriteFailure  = errors.New("write failure")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Outcome reasons recorded for failed records.
const (
	ReasonNotFound      = "not_found"
	ReasonNoExactMatch  = "no_exact_match"
	ReasonTransient     = "transient"
	ReasonWriteFailure  = "write_failure"
	ReasonConfiguration = "configuration"
	ReasonValidation    = "validation"
	ReasonCanceled      = "canceled"
	ReasonUnknown       = "unknown"
)

// FailureReason maps a record error to a short reason label. More specific
// markers win when an error carries several.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, ErrConfiguration):
		return ReasonConfiguration
	case errors.Is(err, ErrNoExactMatch):
		return ReasonNoExactMatch
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrWriteFailure):
		return ReasonWriteFailure
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrTransient):
		return ReasonTransient
	default:
		return ReasonUnknown
	}
}

// IsFatal reports whether err should abort the whole run instead of being
// counted against a single record.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
