// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/pipeline"
	"github.com/danielhkuo/persona-assess/store"
)

// writeError maps domain errors onto HTTP statuses. resource names the
// thing that was looked up; action completes "Failed to ..." for 500s.
// Details of unexpected errors are only logged.
func writeError(w http.ResponseWriter, err error, resource, action string) {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		middleware.ErrorResponse(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, pipeline.ErrMissingField), errors.Is(err, pipeline.ErrEmptyAnswer):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, pipeline.ErrSessionNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, pipeline.ErrInvalidTransition):
		middleware.ErrorResponse(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "action", action, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
