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
)

type PersonaStore struct {
	db *sql.DB
	clock
}

func NewPersonaStore(db *sql.DB) *PersonaStore {
	return &PersonaStore{db: db, clock: defaultClock()}
}

// NormalizePersona trims all fields and drops blank questions. It returns a
// ValidationError if title, description or the question list ends up empty.
func NormalizePersona(req models.PersonaRequest) (models.PersonaRequest, error) {
	out := models.PersonaRequest{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		Color:       strings.TrimSpace(req.Color),
		Questions:   make([]string, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		if q = strings.TrimSpace(q); q != "" {
			out.Questions = append(out.Questions, q)
		}
	}

	switch {
	case out.Title == "":
		return out, &ValidationError{Field: "title", Message: "title is required"}
	case out.Description == "":
		return out, &ValidationError{Field: "description", Message: "description is required"}
	case len(out.Questions) == 0:
		return out, &ValidationError{Field: "questions", Message: "at least one question is required"}
	}
	return out, nil
}

// List returns all personas ordered by creation time, oldest first.
func (s *PersonaStore) List(ctx context.Context) ([]models.Persona, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, icon, color, created_at, updated_at
		FROM personas
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query personas: %w", err)
	}
	defer rows.Close()

	personas := []models.Persona{}
	index := map[string]int{}
	for rows.Next() {
		var p models.Persona
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Icon, &p.Color, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan persona: %w", err)
		}
		p.Questions = []models.Question{}
		index[p.ID] = len(personas)
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personas: %w", err)
	}

	qrows, err := s.db.QueryContext(ctx, `
		SELECT id, persona_id, position, text
		FROM persona_questions
		ORDER BY persona_id, position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query persona questions: %w", err)
	}
	defer qrows.Close()

	for qrows.Next() {
		var q models.Question
		if err := qrows.Scan(&q.ID, &q.PersonaID, &q.Position, &q.Text); err != nil {
			return nil, fmt.Errorf("failed to scan persona question: %w", err)
		}
		if i, ok := index[q.PersonaID]; ok {
			personas[i].Questions = append(personas[i].Questions, q)
		}
	}
	if err := qrows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persona questions: %w", err)
	}

	return personas, nil
}

// Get returns the persona with its questions, or ErrNotFound.
func (s *PersonaStore) Get(ctx context.Context, id string) (*models.Persona, error) {
	var p models.Persona
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, icon, color, created_at, updated_at
		FROM personas
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.Icon, &p.Color, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query persona: %w", err)
	}

	p.Questions, err = loadQuestions(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Count returns the number of stored personas.
func (s *PersonaStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM personas`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count personas: %w", err)
	}
	return n, nil
}

// Create validates req and inserts the persona and its questions atomically.
func (s *PersonaStore) Create(ctx context.Context, req models.PersonaRequest) (*models.Persona, error) {
	req, err := NormalizePersona(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.Persona{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, text := range req.Questions {
		p.Questions = append(p.Questions, models.Question{ID: s.newID(), PersonaID: p.ID, Position: i, Text: text})
	}

	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO personas (id, title, description, icon, color, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, p.ID, p.Title, p.Description, p.Icon, p.Color, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert persona: %w", err)
		}
		return insertQuestions(ctx, tx, p.Questions)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the persona's fields and question list in one transaction.
// A question whose text is unchanged keeps its id so stored answers stay linked.
func (s *PersonaStore) Update(ctx context.Context, id string, req models.PersonaRequest) (*models.Persona, error) {
	req, err := NormalizePersona(req)
	if err != nil {
		return nil, err
	}

	var p *models.Persona
	err = withTx(ctx, s.db, func(tx *sql.Tx) error {
		var createdAt sql.NullTime
		err := tx.QueryRowContext(ctx, `SELECT created_at FROM personas WHERE id = $1`, id).Scan(&createdAt)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query persona: %w", err)
		}

		existing, err := loadQuestions(ctx, tx, id)
		if err != nil {
			return err
		}
		idsByText := map[string][]string{}
		for _, q := range existing {
			idsByText[q.Text] = append(idsByText[q.Text], q.ID)
		}

		p = &models.Persona{
			ID:          id,
			Title:       req.Title,
			Description: req.Description,
			Icon:        req.Icon,
			Color:       req.Color,
			CreatedAt:   createdAt.Time,
			UpdatedAt:   s.now(),
		}
		for i, text := range req.Questions {
			qid := s.newID()
			if ids := idsByText[text]; len(ids) > 0 {
				qid, idsByText[text] = ids[0], ids[1:]
			}
			p.Questions = append(p.Questions, models.Question{ID: qid, PersonaID: id, Position: i, Text: text})
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE personas
			SET title = $1, description = $2, icon = $3, color = $4, updated_at = $5
			WHERE id = $6
		`, p.Title, p.Description, p.Icon, p.Color, p.UpdatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to update persona: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM persona_questions WHERE persona_id = $1`, id); err != nil {
			return fmt.Errorf("failed to clear persona questions: %w", err)
		}
		return insertQuestions(ctx, tx, p.Questions)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the persona and its question rows in one transaction.
// Responses and assessments that reference it are left in place.
func (s *PersonaStore) Delete(ctx context.Context, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM persona_questions WHERE persona_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete persona questions: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM personas WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete persona: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadQuestions(ctx context.Context, q queryer, personaID string) ([]models.Question, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, persona_id, position, text
		FROM persona_questions
		WHERE persona_id = $1
		ORDER BY position
	`, personaID)
	if err != nil {
		return nil, fmt.Errorf("failed to query persona questions: %w", err)
	}
	defer rows.Close()

	questions := []models.Question{}
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.PersonaID, &q.Position, &q.Text); err != nil {
			return nil, fmt.Errorf("failed to scan persona question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate persona questions: %w", err)
	}
	return questions, nil
}

func insertQuestions(ctx context.Context, tx *sql.Tx, questions []models.Question) error {
	for _, q := range questions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO persona_questions (id, persona_id, position, text)
			VALUES ($1, $2, $3, $4)
		`, q.ID, q.PersonaID, q.Position, q.Text)
		if err != nil {
			return fmt.Errorf("failed to insert persona question: %w", err)
		}
	}
	return nil
}
