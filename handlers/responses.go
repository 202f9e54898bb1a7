// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/store"
)

type ResponseHandler struct {
	responses *store.ResponseStore
}

func NewResponseHandler(responses *store.ResponseStore) *ResponseHandler {
	return &ResponseHandler{responses: responses}
}

// List handles GET /api/responses?persona_id=&assessment_id=
func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	responses, err := h.responses.List(r.Context(), store.ResponseFilter{
		PersonaID:    q.Get("persona_id"),
		AssessmentID: q.Get("assessment_id"),
	})
	if err != nil {
		writeError(w, err, "Response", "list responses")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, responses)
}

// Get handles GET /api/responses/{id}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.responses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Response", "load response")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Delete handles DELETE /api/responses/{id}
func (h *ResponseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.responses.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Response", "delete response")
		return
	}

	slog.Info("response deleted", "response_id", id)
	w.WriteHeader(http.StatusNoContent)
}
