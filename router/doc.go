// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the persona-assess API.

NewApp wires stores, analysis, sessions and backfill; NewAppRouter mounts
them. NewRouter does both:

	mux := router.NewRouter(db, cfg, generator)

# Endpoints

	GET  /health
	POST /api/analyze

Respondent sessions (public):

	POST /api/sessions                 - Start, optionally from a share slug
	GET  /api/sessions/{id}            - Current view
	POST /api/sessions/{id}/info       - Submit respondent details
	GET  /api/sessions/{id}/personas   - Personas to choose from
	POST /api/sessions/{id}/persona    - Choose a persona
	POST /api/sessions/{id}/next       - Answer and advance
	POST /api/sessions/{id}/previous   - Go back one question
	POST /api/sessions/{id}/restart    - Start over
	GET  /api/assessments/{slug}/public

Administration:

	GET|POST            /api/personas
	GET|PUT|DELETE      /api/personas/{id}
	GET|POST            /api/assessments
	GET|DELETE          /api/assessments/{id}
	GET                 /api/assessments/{id}/responses
	GET                 /api/responses
	GET|DELETE          /api/responses/{id}
	GET                 /api/admin/dashboard
	POST                /api/admin/backfill
*/
package router
