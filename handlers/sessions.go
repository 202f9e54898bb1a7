// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/pipeline"
)

// SessionHandler exposes the respondent flow. Every mutating endpoint
// answers with the session view after the transition.
type SessionHandler struct {
	manager *pipeline.Manager
}

func NewSessionHandler(manager *pipeline.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Start handles POST /api/sessions
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if err := middleware.ParseOptionalJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	s, err := h.manager.Start(r.Context(), req.AssessmentSlug)
	if err != nil {
		writeError(w, err, "Assessment", "start session")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, s.View())
}

// Get handles GET /api/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// SubmitInfo handles POST /api/sessions/{id}/info
func (h *SessionHandler) SubmitInfo(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.Respondent
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.SubmitInfo(r.Context(), req); err != nil {
		writeError(w, err, "Session", "submit info")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Personas handles GET /api/sessions/{id}/personas
func (h *SessionHandler) Personas(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	personas, err := s.AvailablePersonas(r.Context())
	if err != nil {
		writeError(w, err, "Session", "load personas")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, personas)
}

// SelectPersona handles POST /api/sessions/{id}/persona
func (h *SessionHandler) SelectPersona(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SelectPersonaRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PersonaID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "persona_id is required")
		return
	}

	if err := s.SelectPersona(r.Context(), req.PersonaID); err != nil {
		writeError(w, err, "Session", "select persona")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Next handles POST /api/sessions/{id}/next
func (h *SessionHandler) Next(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := s.Next(r.Context(), req.Answer); err != nil {
		writeError(w, err, "Session", "submit answer")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Previous handles POST /api/sessions/{id}/previous
func (h *SessionHandler) Previous(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Previous(); err != nil {
		writeError(w, err, "Session", "go back")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

// Restart handles POST /api/sessions/{id}/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := s.Restart(); err != nil {
		writeError(w, err, "Session", "restart session")
		return
	}
	middleware.JSONResponse(w, http.StatusOK, s.View())
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*pipeline.Session, bool) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "session id is required")
		return nil, false
	}

	s, err := h.manager.Get(id)
	if err != nil {
		writeError(w, err, "Session", "load session")
		return nil, false
	}
	return s, true
}
