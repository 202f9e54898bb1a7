// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/persona-assess/cliparse"
	"github.com/danielhkuo/persona-assess/db"
	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/store"
)

// SetupTestDB opens a fresh SQLite database in a temp directory with the
// full schema. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := db.Open(context.Background(), "sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseType:  "sqlite",
		SlugSalt:      "test-slug-salt",
		BaseURL:       "http://localhost:3318",
		AIProvider:    cliparse.ProviderGemini,
		AITimeout:     time.Second,
		BackfillDelay: 0,
		SessionTTL:    time.Hour,
	}
}

// NewStores builds the stores on db using the test config.
func NewStores(db *sql.DB) *store.Stores {
	cfg := GetTestConfig()
	return store.New(db, cfg.SlugSalt, cfg.BaseURL)
}

// CreateTestPersona creates a persona with the given questions and returns it
func CreateTestPersona(t *testing.T, stores *store.Stores, title string, questions ...string) *models.Persona {
	t.Helper()

	p, err := stores.Personas.Create(context.Background(), models.PersonaRequest{
		Title:       title,
		Description: title + " role",
		Icon:        "🍽️",
		Color:       "#3366ff",
		Questions:   questions,
	})
	if err != nil {
		t.Fatalf("Failed to create test persona: %v", err)
	}
	return p
}

// CreateTestAssessment creates an assessment, optionally fixed to a persona
func CreateTestAssessment(t *testing.T, stores *store.Stores, title string, personaID *string) *models.Assessment {
	t.Helper()

	a, err := stores.Assessments.Create(context.Background(), models.CreateAssessmentRequest{
		Title:     title,
		PersonaID: personaID,
	})
	if err != nil {
		t.Fatalf("Failed to create test assessment: %v", err)
	}
	return a
}

// CreateTestResponse stores a response answering every question of p.
// rec may be nil for a response that has not been analyzed yet.
func CreateTestResponse(t *testing.T, stores *store.Stores, p *models.Persona, assessmentID *string, rec *models.AnalysisRecord) *models.Response {
	t.Helper()

	r := &models.Response{
		PersonaID:    p.ID,
		AssessmentID: assessmentID,
		Respondent: models.Respondent{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
		},
		Analysis: rec,
	}
	for i, q := range p.Questions {
		r.Answers = append(r.Answers, models.Answer{
			QuestionID: q.ID,
			Position:   i,
			Question:   q.Text,
			Text:       "Answer to " + q.Text,
		})
	}

	if err := stores.Responses.Create(context.Background(), r); err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}
	return r
}

// StubGenerator returns a fixed reply or error and counts calls.
// Safe for concurrent use; set Reply and Err before sharing it.
type StubGenerator struct {
	Reply string
	Err   error
	Calls int

	mu sync.Mutex
}

func (g *StubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Calls++
	return g.Reply, g.Err
}

// WellFormedReply is a model reply containing every section
const WellFormedReply = `SUMMARY: Experienced and calm under pressure.
STRENGTHS:
- Handles busy shifts
- Clear communicator
CONCERNS:
- Limited fine dining experience
RECOMMENDATION: Recommended`

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
