// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSQLite(t *testing.T) {
	conn, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	var fk int
	if err := conn.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("Failed to read pragma: %v", err)
	}
	if fk != 1 {
		t.Errorf("Expected foreign_keys enabled, got %d", fk)
	}
}

func TestCreateSchema(t *testing.T) {
	conn, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()

	// Run twice to verify idempotency
	for i := 0; i < 2; i++ {
		if err := CreateSchema(conn); err != nil {
			t.Fatalf("CreateSchema run %d failed: %v", i+1, err)
		}
	}

	tables := []string{
		"personas",
		"persona_questions",
		"assessments",
		"responses",
		"response_answers",
		"response_analyses",
	}
	for _, table := range tables {
		var name string
		err := conn.QueryRow(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("Table %s missing: %v", table, err)
		}
	}
}

func TestQuestionsCascadeWithPersona(t *testing.T) {
	conn, err := Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "schema.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()
	if err := CreateSchema(conn); err != nil {
		t.Fatalf("CreateSchema failed: %v", err)
	}

	if _, err := conn.Exec(
		`INSERT INTO personas (id, title, description, icon, color, created_at, updated_at)
		 VALUES ('p1', 'Server', '', '', '', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
	); err != nil {
		t.Fatalf("Failed to insert persona: %v", err)
	}
	if _, err := conn.Exec(
		`INSERT INTO persona_questions (id, persona_id, position, text) VALUES ('q1', 'p1', 0, 'Why?')`,
	); err != nil {
		t.Fatalf("Failed to insert question: %v", err)
	}
	if _, err := conn.Exec(`DELETE FROM personas WHERE id = 'p1'`); err != nil {
		t.Fatalf("Failed to delete persona: %v", err)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM persona_questions`).Scan(&count); err != nil {
		t.Fatalf("Failed to count questions: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected questions to cascade, %d left", count)
	}
}
