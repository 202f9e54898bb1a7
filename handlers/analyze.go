// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/danielhkuo/persona-assess/analysis"
	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/models"
)

type AnalyzeHandler struct {
	svc *analysis.Service
}

func NewAnalyzeHandler(svc *analysis.Service) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

// Analyze handles POST /api/analyze
// Provider failures are not errors here: the fallback analysis is returned
// with 200. Only an undecodable body is rejected.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	rec := h.svc.Analyze(r.Context(), req.Persona, req.Questions, req.Answers)
	if !rec.OK() {
		slog.Info("returning fallback analysis", "persona", req.Persona, "reason", rec.Reason)
	}

	middleware.JSONResponse(w, http.StatusOK, models.AnalyzeResponse(rec.Analysis))
}
