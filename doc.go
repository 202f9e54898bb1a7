// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the persona-assess API server.

persona-assess collects written answers from job candidates against
role-specific question sets ("personas"), asks an AI model for a short
hiring assessment of each submission and keeps everything for review.

# Starting the Server

The server reads CLI flags first, then environment variables (and a .env
file if one is present):

	DATABASE_URL=./assess.db ASSESSMENT_SLUG_SALT=dev go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." --slug-salt dev

Run the analysis backfill once and exit:

	go run . --backfill

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ASSESSMENT_SLUG_SALT (--slug-salt): Secret for share slug generation

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - BASE_URL: Prefix for assessment share links
  - AI_PROVIDER, AI_MODEL, GEMINI_API_KEY, OPENAI_API_KEY, OPENAI_BASE_URL
  - AI_TIMEOUT, BACKFILL_DELAY, SESSION_TTL
  - REQUIRE_PHONE, SEED_DEMO, SEED_FILE
  - LOG_LEVEL, LOG_FORMAT (text or json)

Without an AI key the server still runs; every analysis is the
manual-review fallback.

# Architecture

  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - pipeline: Per-respondent submission sessions
  - analysis: Prompt building, model clients, reply parsing
  - backfill: Re-analysis of stored responses
  - store: Persona, response and assessment persistence
  - seed: Default personas
  - sharelink: Assessment share slugs
  - models: Request/response and domain types
  - db: Connection and schema creation
  - cliparse: Configuration parsing
*/
package main
