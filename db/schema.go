// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open connects to the database named by dbType ("sqlite" or "postgres")
// and verifies the connection.
func Open(ctx context.Context, dbType, url string) (*sql.DB, error) {
	driver := "sqlite"
	if dbType == "postgres" {
		driver = "postgres"
	}

	if driver == "sqlite" && !strings.Contains(url, "_pragma") {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Personas
CREATE TABLE IF NOT EXISTS personas (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT '',
    color TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personas_created_at ON personas(created_at);

-- Persona questions (one row per question, stable ids)
CREATE TABLE IF NOT EXISTS persona_questions (
    id TEXT PRIMARY KEY,
    persona_id TEXT NOT NULL REFERENCES personas(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    text TEXT NOT NULL,
    UNIQUE (persona_id, position)
);

CREATE INDEX IF NOT EXISTS idx_persona_questions_persona_id ON persona_questions(persona_id);

-- Assessments (shareable links)
CREATE TABLE IF NOT EXISTS assessments (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    persona_id TEXT,
    share_slug TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_share_slug ON assessments(share_slug);

-- Responses
CREATE TABLE IF NOT EXISTS responses (
    id TEXT PRIMARY KEY,
    persona_id TEXT NOT NULL,
    assessment_id TEXT REFERENCES assessments(id) ON DELETE CASCADE,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_responses_persona_id ON responses(persona_id);
CREATE INDEX IF NOT EXISTS idx_responses_assessment_id ON responses(assessment_id);
CREATE INDEX IF NOT EXISTS idx_responses_created_at ON responses(created_at);

-- Answers (one row per answered question)
CREATE TABLE IF NOT EXISTS response_answers (
    response_id TEXT NOT NULL REFERENCES responses(id) ON DELETE CASCADE,
    question_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    question_text TEXT NOT NULL,
    answer_text TEXT NOT NULL,
    PRIMARY KEY (response_id, question_id)
);

-- Analyses (at most one per response)
CREATE TABLE IF NOT EXISTS response_analyses (
    response_id TEXT PRIMARY KEY REFERENCES responses(id) ON DELETE CASCADE,
    status TEXT NOT NULL CHECK (status IN ('ok', 'unavailable')),
    reason TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL,
    strengths TEXT NOT NULL,
    concerns TEXT NOT NULL,
    recommendation TEXT NOT NULL,
    analyzed_at TIMESTAMP NOT NULL
);
`
