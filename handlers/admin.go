// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/persona-assess/backfill"
	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/store"
)

type AdminHandler struct {
	personas  *store.PersonaStore
	responses *store.ResponseStore
	driver    *backfill.Driver
}

func NewAdminHandler(personas *store.PersonaStore, responses *store.ResponseStore, driver *backfill.Driver) *AdminHandler {
	return &AdminHandler{personas: personas, responses: responses, driver: driver}
}

// Dashboard handles GET /api/admin/dashboard
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var personas []models.Persona
	var responses []models.Response

	// Both reads are independent; fetch them concurrently.
	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error {
		var err error
		personas, err = h.personas.List(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		responses, err = h.responses.List(ctx, store.ResponseFilter{})
		return err
	})
	if err := eg.Wait(); err != nil {
		writeError(w, err, "Dashboard", "load dashboard")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, buildDashboard(personas, responses))
}

func buildDashboard(personas []models.Persona, responses []models.Response) models.Dashboard {
	d := models.Dashboard{
		Personas:         personas,
		Responses:        responses,
		ByPersona:        make([]models.PersonaCount, 0, len(personas)),
		ByRecommendation: map[string]int{},
	}

	perPersona := map[string]int{}
	for _, resp := range responses {
		perPersona[resp.PersonaID]++

		switch a := resp.Analysis; {
		case a == nil || a.Analysis.Summary == "":
			d.PendingAnalysis++
		case a.Status == models.AnalysisUnavailable:
			d.UnavailableReview++
			d.ByRecommendation[a.Analysis.Recommendation]++
		default:
			d.ByRecommendation[a.Analysis.Recommendation]++
		}
	}

	for _, p := range personas {
		d.ByPersona = append(d.ByPersona, models.PersonaCount{
			PersonaID: p.ID,
			Title:     p.Title,
			Responses: perPersona[p.ID],
		})
	}
	return d
}

// Backfill handles POST /api/admin/backfill
// The run is synchronous; the response carries the final counts.
func (h *AdminHandler) Backfill(w http.ResponseWriter, r *http.Request) {
	var req models.BackfillRequest
	if err := middleware.ParseOptionalJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	p, err := h.driver.Run(r.Context(), backfill.Options{IncludeUnavailable: req.IncludeUnavailable}, nil)
	if err != nil {
		writeError(w, err, "Backfill", "run backfill")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.BackfillResponse{
		Total:      p.Total,
		Processed:  p.Processed,
		Successful: p.Successful,
		Failed:     p.Failed,
	})
}
