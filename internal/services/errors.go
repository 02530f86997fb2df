package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrStore         = errors.New("store error")
	ErrUpstream      = errors.New("upstream error")
	ErrNotFound      = errors.New("not found")
)

// Wrap builds an error that carries component context for logs while tagging
// it with the provided marker for later status classification. The marker
// should be one of the exported sentinel errors above. The message is kept
// separate from the component detail so response envelopes can surface it
// without the internal prefix.
func Wrap(marker error, component, operation, message string, err error) error {
	if marker == nil {
		marker = ErrStore
	}
	return &classifiedError{
		marker:  marker,
		detail:  buildDetail(component, operation, message),
		message: strings.TrimSpace(message),
		err:     err,
	}
}

type classifiedError struct {
	marker  error
	detail  string
	message string
	err     error
}

func (e *classifiedError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.marker.Error(), e.detail, e.err.Error())
	}
	return e.marker.Error() + ": " + e.detail
}

func (e *classifiedError) Unwrap() []error {
	if e.err != nil {
		return []error{e.marker, e.err}
	}
	return []error{e.marker}
}

// HTTPStatus maps a classified error to the status code the request boundary
// should emit. Invalid input is the caller's fault; everything else is ours.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage extracts the operator-facing text for response envelopes: the
// wrap message verbatim when one was provided, never the component prefix or
// the classification marker.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var classified *classifiedError
	if errors.As(err, &classified) {
		if classified.message != "" {
			return classified.message
		}
		if classified.err != nil {
			return UserMessage(classified.err)
		}
		return classified.detail
	}
	msg := err.Error()
	for _, marker := range []error{ErrValidation, ErrConfiguration, ErrStore, ErrUpstream, ErrNotFound} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
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
