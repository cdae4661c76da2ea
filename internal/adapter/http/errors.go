package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/devportal/internal/domain"
)

const internalErrorMessage = "internal server error"

// statusFor maps a domain error to an HTTP status and a message that is
// safe to show to the caller.
func statusFor(err error) (int, string) {
	var de *domain.Error
	if !errors.As(err, &de) {
		return http.StatusInternalServerError, internalErrorMessage
	}

	switch de.Kind {
	case domain.KindBadRequest:
		return http.StatusBadRequest, de.Message
	case domain.KindForbidden:
		return http.StatusForbidden, de.Message
	case domain.KindNotFound:
		return http.StatusNotFound, de.Message
	case domain.KindConflict:
		return http.StatusConflict, de.Message
	default:
		return http.StatusInternalServerError, internalErrorMessage
	}
}

// toHumaError translates domain errors to Huma HTTP errors. Unclassified
// errors are logged and reported without detail.
func toHumaError(ctx context.Context, err error) error {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(ctx, "request failed", "error", err)
	}
	return huma.NewError(status, msg)
}
