// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

Open accepts "sqlite" (modernc.org/sqlite, no cgo) or "postgres"
(lib/pq). SQLite connections get foreign keys and a busy timeout.

	conn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)

CreateSchema is safe to call on every start.

# Tables

	personas 1──* persona_questions
	assessments
	responses 1──* response_answers
	responses 1──1 response_analyses

Deleting a persona removes its questions. Deleting a response removes its
answers and analysis. responses.persona_id is not a foreign key, so
responses outlive their persona.
*/
package db
