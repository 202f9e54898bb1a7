// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/persona-assess/analysis"
	"github.com/danielhkuo/persona-assess/backfill"
	"github.com/danielhkuo/persona-assess/cliparse"
	"github.com/danielhkuo/persona-assess/handlers"
	"github.com/danielhkuo/persona-assess/middleware"
	"github.com/danielhkuo/persona-assess/pipeline"
	"github.com/danielhkuo/persona-assess/store"
)

// App holds the services behind the HTTP API.
type App struct {
	Stores   *store.Stores
	Analysis *analysis.Service
	Sessions *pipeline.Manager
	Backfill *backfill.Driver
}

// NewApp wires stores, analysis, sessions and backfill on db.
// gen may be nil, in which case every analysis falls back.
func NewApp(db *sql.DB, cfg cliparse.Config, gen analysis.Generator) *App {
	stores := store.New(db, cfg.SlugSalt, cfg.BaseURL)
	svc := analysis.NewService(gen, cfg.AITimeout)

	sessions := pipeline.NewManager(pipeline.Deps{
		Personas:     stores.Personas,
		Responses:    stores.Responses,
		Analyzer:     svc,
		RequirePhone: cfg.RequirePhone,
	}, stores.Assessments, cfg.SessionTTL)

	return &App{
		Stores:   stores,
		Analysis: svc,
		Sessions: sessions,
		Backfill: backfill.New(stores.Responses, stores.Personas, svc, cfg.BackfillDelay),
	}
}

func NewRouter(db *sql.DB, cfg cliparse.Config, gen analysis.Generator) *http.ServeMux {
	return NewAppRouter(NewApp(db, cfg, gen))
}

func NewAppRouter(app *App) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	analyzeHandler := handlers.NewAnalyzeHandler(app.Analysis)
	sessionHandler := handlers.NewSessionHandler(app.Sessions)
	personaHandler := handlers.NewPersonaHandler(app.Stores.Personas)
	assessmentHandler := handlers.NewAssessmentHandler(app.Stores.Assessments, app.Stores.Responses)
	responseHandler := handlers.NewResponseHandler(app.Stores.Responses)
	adminHandler := handlers.NewAdminHandler(app.Stores.Personas, app.Stores.Responses, app.Backfill)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// One-shot analysis
	mux.HandleFunc("POST /api/analyze", middleware.WithLogging(analyzeHandler.Analyze))

	// Respondent sessions (public)
	mux.HandleFunc("POST /api/sessions", middleware.WithLogging(sessionHandler.Start))
	mux.HandleFunc("GET /api/sessions/{id}", middleware.WithLogging(sessionHandler.Get))
	mux.HandleFunc("POST /api/sessions/{id}/info", middleware.WithLogging(sessionHandler.SubmitInfo))
	mux.HandleFunc("GET /api/sessions/{id}/personas", middleware.WithLogging(sessionHandler.Personas))
	mux.HandleFunc("POST /api/sessions/{id}/persona", middleware.WithLogging(sessionHandler.SelectPersona))
	mux.HandleFunc("POST /api/sessions/{id}/next", middleware.WithLogging(sessionHandler.Next))
	mux.HandleFunc("POST /api/sessions/{id}/previous", middleware.WithLogging(sessionHandler.Previous))
	mux.HandleFunc("POST /api/sessions/{id}/restart", middleware.WithLogging(sessionHandler.Restart))
	mux.HandleFunc("GET /api/assessments/{slug}/public", middleware.WithLogging(assessmentHandler.Public))

	// Persona admin
	mux.HandleFunc("GET /api/personas", middleware.WithLogging(personaHandler.List))
	mux.HandleFunc("POST /api/personas", middleware.WithLogging(personaHandler.Create))
	mux.HandleFunc("GET /api/personas/{id}", middleware.WithLogging(personaHandler.Get))
	mux.HandleFunc("PUT /api/personas/{id}", middleware.WithLogging(personaHandler.Update))
	mux.HandleFunc("DELETE /api/personas/{id}", middleware.WithLogging(personaHandler.Delete))

	// Assessment admin
	mux.HandleFunc("GET /api/assessments", middleware.WithLogging(assessmentHandler.List))
	mux.HandleFunc("POST /api/assessments", middleware.WithLogging(assessmentHandler.Create))
	mux.HandleFunc("GET /api/assessments/{id}", middleware.WithLogging(assessmentHandler.Get))
	mux.HandleFunc("DELETE /api/assessments/{id}", middleware.WithLogging(assessmentHandler.Delete))
	mux.HandleFunc("GET /api/assessments/{id}/responses", middleware.WithLogging(assessmentHandler.Responses))

	// Response admin
	mux.HandleFunc("GET /api/responses", middleware.WithLogging(responseHandler.List))
	mux.HandleFunc("GET /api/responses/{id}", middleware.WithLogging(responseHandler.Get))
	mux.HandleFunc("DELETE /api/responses/{id}", middleware.WithLogging(responseHandler.Delete))

	// Dashboard and maintenance
	mux.HandleFunc("GET /api/admin/dashboard", middleware.WithLogging(adminHandler.Dashboard))
	mux.HandleFunc("POST /api/admin/backfill", middleware.WithLogging(adminHandler.Backfill))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("persona-assess API v1"))
	})

	return mux
}
