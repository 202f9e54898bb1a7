// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/danielhkuo/persona-assess/models"
)

type ResponseStore struct {
	db *sql.DB
	clock
}

func NewResponseStore(db *sql.DB) *ResponseStore {
	return &ResponseStore{db: db, clock: defaultClock()}
}

// ResponseFilter narrows List. Empty fields match everything.
type ResponseFilter struct {
	PersonaID    string
	AssessmentID string
}

const responseColumns = `
	r.id, r.persona_id, COALESCE(p.title, ''), r.assessment_id,
	r.first_name, r.last_name, r.email, r.phone, r.created_at,
	a.status, a.reason, a.summary, a.strengths, a.concerns, a.recommendation, a.analyzed_at
`

const responseJoins = `
	FROM responses r
	LEFT JOIN personas p ON p.id = r.persona_id
	LEFT JOIN response_analyses a ON a.response_id = r.id
`

// Create stores the response, its answers and (if set) its analysis in one
// transaction. ID and CreatedAt are filled in when empty.
func (s *ResponseStore) Create(ctx context.Context, r *models.Response) error {
	if r.ID == "" {
		r.ID = s.newID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO responses (id, persona_id, assessment_id, first_name, last_name, email, phone, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, r.ID, r.PersonaID, nullableString(r.AssessmentID),
			r.Respondent.FirstName, r.Respondent.LastName, r.Respondent.Email, r.Respondent.Phone, r.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert response: %w", err)
		}

		for _, a := range r.Answers {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO response_answers (response_id, question_id, position, question_text, answer_text)
				VALUES ($1, $2, $3, $4, $5)
			`, r.ID, a.QuestionID, a.Position, a.Question, a.Text)
			if err != nil {
				return fmt.Errorf("failed to insert answer: %w", err)
			}
		}

		if r.Analysis != nil {
			if r.Analysis.AnalyzedAt.IsZero() {
				r.Analysis.AnalyzedAt = r.CreatedAt
			}
			return upsertAnalysis(ctx, tx, r.ID, *r.Analysis)
		}
		return nil
	})
}

// SetAnalysis writes or overwrites the analysis attached to a response.
func (s *ResponseStore) SetAnalysis(ctx context.Context, responseID string, rec models.AnalysisRecord) error {
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = s.now()
	}
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM responses WHERE id = $1`, responseID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to query response: %w", err)
		}
		return upsertAnalysis(ctx, tx, responseID, rec)
	})
}

// Get returns a single response with answers and analysis, or ErrNotFound.
func (s *ResponseStore) Get(ctx context.Context, id string) (*models.Response, error) {
	responses, err := s.query(ctx, `WHERE r.id = $1`, "", id)
	if err != nil {
		return nil, err
	}
	if len(responses) == 0 {
		return nil, ErrNotFound
	}
	return &responses[0], nil
}

// List returns responses matching f, newest first.
func (s *ResponseStore) List(ctx context.Context, f ResponseFilter) ([]models.Response, error) {
	var conds []string
	var args []any
	if f.PersonaID != "" {
		args = append(args, f.PersonaID)
		conds = append(conds, fmt.Sprintf("r.persona_id = $%d", len(args)))
	}
	if f.AssessmentID != "" {
		args = append(args, f.AssessmentID)
		conds = append(conds, fmt.Sprintf("r.assessment_id = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	return s.query(ctx, where, "ORDER BY r.created_at DESC, r.id", args...)
}

// ListUnanalyzed returns responses without a usable analysis, oldest first.
// A response whose stored analysis has a non-empty summary is never
// selected, unless includeUnavailable is set and the stored analysis is a
// fallback.
func (s *ResponseStore) ListUnanalyzed(ctx context.Context, includeUnavailable bool) ([]models.Response, error) {
	where := `WHERE a.response_id IS NULL OR a.summary = ''`
	if includeUnavailable {
		where += ` OR a.status = 'unavailable'`
	}
	return s.query(ctx, where, "ORDER BY r.created_at, r.id")
}

// Delete removes a response with its answers and analysis.
func (s *ResponseStore) Delete(ctx context.Context, id string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM response_analyses WHERE response_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete analysis: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM response_answers WHERE response_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete answers: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM responses WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete response: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *ResponseStore) query(ctx context.Context, where, order string, args ...any) ([]models.Response, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+responseColumns+responseJoins+where+" "+order, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	responses := []models.Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate responses: %w", err)
	}

	if err := s.attachAnswers(ctx, responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (s *ResponseStore) attachAnswers(ctx context.Context, responses []models.Response) error {
	if len(responses) == 0 {
		return nil
	}

	ids := make([]any, len(responses))
	index := make(map[string]int, len(responses))
	for i, r := range responses {
		ids[i] = r.ID
		index[r.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT response_id, question_id, position, question_text, answer_text
		FROM response_answers
		WHERE response_id IN (`+placeholders(1, len(ids))+`)
		ORDER BY response_id, position
	`, ids...)
	if err != nil {
		return fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var responseID string
		var a models.Answer
		if err := rows.Scan(&responseID, &a.QuestionID, &a.Position, &a.Question, &a.Text); err != nil {
			return fmt.Errorf("failed to scan answer: %w", err)
		}
		i := index[responseID]
		responses[i].Answers = append(responses[i].Answers, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate answers: %w", err)
	}
	return nil
}

func scanResponse(rows *sql.Rows) (models.Response, error) {
	var r models.Response
	var assessmentID sql.NullString
	var status, reason, summary, strengths, concerns, recommendation sql.NullString
	var analyzedAt sql.NullTime

	err := rows.Scan(
		&r.ID, &r.PersonaID, &r.PersonaTitle, &assessmentID,
		&r.Respondent.FirstName, &r.Respondent.LastName, &r.Respondent.Email, &r.Respondent.Phone, &r.CreatedAt,
		&status, &reason, &summary, &strengths, &concerns, &recommendation, &analyzedAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan response: %w", err)
	}

	r.AssessmentID = stringPtr(assessmentID)
	r.Answers = []models.Answer{}

	if status.Valid {
		rec := &models.AnalysisRecord{
			Status:     status.String,
			Reason:     reason.String,
			AnalyzedAt: analyzedAt.Time,
			Analysis: models.Analysis{
				Summary:        summary.String,
				Recommendation: recommendation.String,
			},
		}
		if rec.Analysis.Strengths, err = decodeList(strengths); err != nil {
			return r, fmt.Errorf("failed to decode strengths for response %s: %w", r.ID, err)
		}
		if rec.Analysis.Concerns, err = decodeList(concerns); err != nil {
			return r, fmt.Errorf("failed to decode concerns for response %s: %w", r.ID, err)
		}
		r.Analysis = rec
	}
	return r, nil
}

func upsertAnalysis(ctx context.Context, tx *sql.Tx, responseID string, rec models.AnalysisRecord) error {
	strengths, err := encodeList(rec.Analysis.Strengths)
	if err != nil {
		return err
	}
	concerns, err := encodeList(rec.Analysis.Concerns)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO response_analyses (response_id, status, reason, summary, strengths, concerns, recommendation, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (response_id) DO UPDATE SET
			status = excluded.status,
			reason = excluded.reason,
			summary = excluded.summary,
			strengths = excluded.strengths,
			concerns = excluded.concerns,
			recommendation = excluded.recommendation,
			analyzed_at = excluded.analyzed_at
	`, responseID, rec.Status, rec.Reason, rec.Analysis.Summary, strengths, concerns, rec.Analysis.Recommendation, rec.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(ns sql.NullString) ([]string, error) {
	out := []string{}
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, err
	}
	return out, nil
}
