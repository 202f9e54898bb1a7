// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/persona-assess/db"
	"github.com/danielhkuo/persona-assess/models"
)

func setupStores(t *testing.T) *Stores {
	t.Helper()

	conn, err := db.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.CreateSchema(conn))

	s := New(conn, "test-salt", "http://localhost:3318")

	// A shared, strictly increasing clock keeps orderings deterministic.
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick, n := 0, 0
	c := clock{
		now:   func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) },
		newID: func() string { n++; return fmt.Sprintf("id-%03d", n) },
	}
	s.Personas.clock = c
	s.Responses.clock = c
	s.Assessments.clock = c
	return s
}

func createPersona(t *testing.T, s *Stores, title string, questions ...string) *models.Persona {
	t.Helper()
	p, err := s.Personas.Create(context.Background(), models.PersonaRequest{
		Title:       title,
		Description: title + " description",
		Questions:   questions,
	})
	require.NoError(t, err)
	return p
}

func createResponse(t *testing.T, s *Stores, p *models.Persona, assessmentID *string, rec *models.AnalysisRecord) *models.Response {
	t.Helper()
	r := &models.Response{
		PersonaID:    p.ID,
		AssessmentID: assessmentID,
		Respondent:   models.Respondent{FirstName: "Jane", LastName: "Doe", Email: "jane@example.com"},
		Analysis:     rec,
	}
	for i, q := range p.Questions {
		r.Answers = append(r.Answers, models.Answer{QuestionID: q.ID, Position: i, Question: q.Text, Text: fmt.Sprintf("answer %d", i+1)})
	}
	require.NoError(t, s.Responses.Create(context.Background(), r))
	return r
}

func okRecord(summary string) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		Status: models.AnalysisOK,
		Analysis: models.Analysis{
			Summary:        summary,
			Strengths:      []string{"Punctual"},
			Concerns:       []string{},
			Recommendation: models.RecommendationRecommended,
		},
	}
}

func TestSchemaIsIdempotent(t *testing.T) {
	s := setupStores(t)
	require.NoError(t, db.CreateSchema(s.Personas.db))
}

func TestQueryHelpers(t *testing.T) {
	var v error = &ValidationError{Field: "title", Message: "title is required"}
	assert.Equal(t, "title: title is required", v.Error())
	assert.Equal(t, "$1, $2, $3", placeholders(1, 3))
	assert.Equal(t, "$4", placeholders(4, 1))
	assert.Nil(t, stringPtr(sql.NullString{}))
	blank := "  "
	assert.False(t, nullableString(&blank).Valid)
}
