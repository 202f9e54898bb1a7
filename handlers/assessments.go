// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/store"
)

type AssessmentHandler struct {
	assessments *store.AssessmentStore
	responses   *store.ResponseStore
}

func NewAssessmentHandler(assessments *store.AssessmentStore, responses *store.ResponseStore) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments, responses: responses}
}

// List handles GET /api/assessments
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.assessments.List(r.Context())
	if err != nil {
		writeError(w, err, "Assessment", "list assessments")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, assessments)
}

// Get handles GET /api/assessments/{id}
func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.assessments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Assessment", "load assessment")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, a)
}

// Create handles POST /api/assessments
func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAssessmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	a, err := h.assessments.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, "Assessment", "create assessment")
		return
	}

	slog.Info("assessment created", "assessment_id", a.ID, "share_slug", a.ShareSlug)
	middleware.JSONResponse(w, http.StatusCreated, a)
}

// Delete handles DELETE /api/assessments/{id}
// Responses submitted against the assessment are deleted with it.
func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.assessments.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Assessment", "delete assessment")
		return
	}

	slog.Info("assessment deleted", "assessment_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Responses handles GET /api/assessments/{id}/responses
func (h *AssessmentHandler) Responses(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := h.assessments.Get(r.Context(), id); err != nil {
		writeError(w, err, "Assessment", "load assessment")
		return
	}

	responses, err := h.responses.List(r.Context(), store.ResponseFilter{AssessmentID: id})
	if err != nil {
		writeError(w, err, "Assessment", "list responses")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, responses)
}

// Public handles GET /api/assessments/{slug}/public
// This is what a respondent opening a share link sees before starting.
func (h *AssessmentHandler) Public(w http.ResponseWriter, r *http.Request) {
	a, err := h.assessments.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err, "Assessment", "load assessment")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.PublicAssessment{
		Title:        a.Title,
		PersonaID:    a.PersonaID,
		PersonaTitle: a.PersonaTitle,
	})
}
