// Package controllers contains the HTTP controllers for the campusevents API.
// Controllers decode and validate requests, call the service layer, and map
// domain errors onto the shared JSON response envelope.
package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	h "campusevents/internal/delivery/http/helpers"
	"campusevents/internal/domain"
)

// knownDomainErrors are the sentinels with a dedicated HTTP mapping; anything
// else is logged as an internal failure.
var knownDomainErrors = []error{
	domain.ErrNotFound,
	domain.ErrForbidden,
	domain.ErrInvalidInput,
	domain.ErrUserNotFound,
	domain.ErrInvalidGrant,
	domain.ErrDuplicateEmail,
	domain.ErrEventNotPublished,
	domain.ErrAlreadyRegistered,
	domain.ErrEventFull,
	domain.ErrCommentDeleted,
	domain.ErrNestedReply,
	domain.ErrAlreadyReported,
	domain.ErrBadgeAlreadyHeld,
}

// writeError logs unexpected errors and writes the mapped JSON error response.
func writeError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	known := false
	for _, sentinel := range knownDomainErrors {
		if errors.Is(err, sentinel) {
			known = true
			break
		}
	}
	if !known && logger != nil {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	h.WriteDomainError(w, err)
}
