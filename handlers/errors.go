// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votememaybe/middleware"
	"github.com/danielhkuo/votememaybe/models"
	"github.com/danielhkuo/votememaybe/reconcile"
)

// statusFor maps an operation error to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotConnected):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, models.ErrProposalNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateVote), errors.Is(err, models.ErrProposalNotActive):
		return http.StatusConflict
	case models.IsValidation(err):
		return http.StatusBadRequest
	case reconcile.IsStoreFailure(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs unexpected failures and writes the mapped error response
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("operation failed", "error", err)
	}
	middleware.ErrorResponse(w, status, err.Error())
}

// decodeBody parses the JSON request body into v. It writes the error
// response and returns false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := middleware.ParseJSONBody(r, v)
	switch {
	case err == nil:
		return true
	case errors.Is(err, middleware.ErrBodyTooLarge):
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, err.Error())
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
	}
	return false
}
