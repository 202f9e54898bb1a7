// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/sharelink"
)

type AssessmentStore struct {
	db      *sql.DB
	salt    string
	baseURL string
	clock
}

func NewAssessmentStore(db *sql.DB, salt, baseURL string) *AssessmentStore {
	return &AssessmentStore{db: db, salt: salt, baseURL: baseURL, clock: defaultClock()}
}

const assessmentSelect = `
	SELECT a.id, a.title, a.persona_id, COALESCE(p.title, ''), a.share_slug, a.created_at, COUNT(r.id)
	FROM assessments a
	LEFT JOIN personas p ON p.id = a.persona_id
	LEFT JOIN responses r ON r.assessment_id = a.id
`

const assessmentGroup = `
	GROUP BY a.id, a.title, a.persona_id, p.title, a.share_slug, a.created_at
`

// Create inserts a new assessment with a generated share slug. A fixed
// persona, when given, must exist.
func (s *AssessmentStore) Create(ctx context.Context, req models.CreateAssessmentRequest) (*models.Assessment, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, &ValidationError{Field: "title", Message: "title is required"}
	}

	personaID := nullableString(req.PersonaID)
	a := &models.Assessment{
		ID:        s.newID(),
		Title:     title,
		PersonaID: stringPtr(personaID),
		CreatedAt: s.now(),
	}
	a.ShareSlug = sharelink.GenerateShareSlug(a.ID, s.salt)
	a.ShareURL = sharelink.URL(s.baseURL, a.ShareSlug)

	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		if personaID.Valid {
			err := tx.QueryRowContext(ctx, `SELECT title FROM personas WHERE id = $1`, personaID.String).Scan(&a.PersonaTitle)
			if errors.Is(err, sql.ErrNoRows) {
				return &ValidationError{Field: "persona_id", Message: "persona does not exist"}
			}
			if err != nil {
				return fmt.Errorf("failed to query persona: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO assessments (id, title, persona_id, share_slug, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, a.ID, a.Title, personaID, a.ShareSlug, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert assessment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// List returns all assessments, newest first, with response counts.
func (s *AssessmentStore) List(ctx context.Context) ([]models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, assessmentSelect+assessmentGroup+`ORDER BY a.created_at DESC, a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := []models.Assessment{}
	for rows.Next() {
		a, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		assessments = append(assessments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assessments: %w", err)
	}
	return assessments, nil
}

// Get returns the assessment with the given id, or ErrNotFound.
func (s *AssessmentStore) Get(ctx context.Context, id string) (*models.Assessment, error) {
	return s.getOne(ctx, `WHERE a.id = $1`, id)
}

// GetBySlug resolves a share slug, or returns ErrNotFound.
func (s *AssessmentStore) GetBySlug(ctx context.Context, slug string) (*models.Assessment, error) {
	return s.getOne(ctx, `WHERE a.share_slug = $1`, slug)
}

// Delete removes the assessment together with every response submitted
// against it, in a single transaction.
func (s *AssessmentStore) Delete(ctx context.Context, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		stmts := []struct {
			query string
			what  string
		}{
			{`DELETE FROM response_analyses WHERE response_id IN (SELECT id FROM responses WHERE assessment_id = $1)`, "analyses"},
			{`DELETE FROM response_answers WHERE response_id IN (SELECT id FROM responses WHERE assessment_id = $1)`, "answers"},
			{`DELETE FROM responses WHERE assessment_id = $1`, "responses"},
		}
		for _, st := range stmts {
			if _, err := tx.ExecContext(ctx, st.query, id); err != nil {
				return fmt.Errorf("failed to delete assessment %s: %w", st.what, err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete assessment: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *AssessmentStore) getOne(ctx context.Context, where string, arg string) (*models.Assessment, error) {
	rows, err := s.db.QueryContext(ctx, assessmentSelect+where+assessmentGroup, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query assessment: %w", err)
		}
		return nil, ErrNotFound
	}
	return s.scan(rows)
}

func (s *AssessmentStore) scan(rows *sql.Rows) (*models.Assessment, error) {
	var a models.Assessment
	var personaID sql.NullString
	if err := rows.Scan(&a.ID, &a.Title, &personaID, &a.PersonaTitle, &a.ShareSlug, &a.CreatedAt, &a.ResponseCount); err != nil {
		return nil, fmt.Errorf("failed to scan assessment: %w", err)
	}
	a.PersonaID = stringPtr(personaID)
	a.ShareURL = sharelink.URL(s.baseURL, a.ShareSlug)
	return &a, nil
}
