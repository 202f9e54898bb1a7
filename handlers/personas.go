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

type PersonaHandler struct {
	personas *store.PersonaStore
}

func NewPersonaHandler(personas *store.PersonaStore) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

// List handles GET /api/personas
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	personas, err := h.personas.List(r.Context())
	if err != nil {
		writeError(w, err, "Persona", "list personas")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, personas)
}

// Get handles GET /api/personas/{id}
func (h *PersonaHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.personas.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Persona", "load persona")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, p)
}

// Create handles POST /api/personas
func (h *PersonaHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.PersonaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.personas.Create(r.Context(), req)
	if err != nil {
		writeError(w, err, "Persona", "create persona")
		return
	}

	slog.Info("persona created", "persona_id", p.ID, "questions", len(p.Questions))
	middleware.JSONResponse(w, http.StatusCreated, p)
}

// Update handles PUT /api/personas/{id}
func (h *PersonaHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.PersonaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.personas.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, err, "Persona", "update persona")
		return
	}

	slog.Info("persona updated", "persona_id", p.ID)
	middleware.JSONResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/personas/{id}
func (h *PersonaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.personas.Delete(r.Context(), id); err != nil {
		writeError(w, err, "Persona", "delete persona")
		return
	}

	slog.Info("persona deleted", "persona_id", id)
	w.WriteHeader(http.StatusNoContent)
}
