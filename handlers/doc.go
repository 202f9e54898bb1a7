// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the persona-assess API.

Each handler is a struct built by a constructor over the stores or
services it needs:

	personaHandler := handlers.NewPersonaHandler(stores.Personas)

# Handler Types

  - AnalyzeHandler: one-shot analysis, always answers 200 with an analysis
  - SessionHandler: respondent sessions driving the submission pipeline
  - PersonaHandler: persona CRUD
  - AssessmentHandler: assessment CRUD, share link lookups
  - ResponseHandler: stored response listing and deletion
  - AdminHandler: dashboard counts and analysis backfill

# Errors

Store and pipeline errors map to statuses in one place (writeError):
validation failures are 400, missing records and sessions 404, actions
not valid in the current session state 409, and anything else 500 with
the detail logged rather than returned.
*/
package handlers
