// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/persona-assess/models"
)

// captureLogs routes the default logger into a buffer for one test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestWithLogging(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		wantLog    string
	}{
		{"implicit OK", 0, "status=200"},
		{"not found", http.StatusNotFound, "status=404"},
		{"conflict", http.StatusConflict, "status=409"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logs := captureLogs(t)

			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				if tc.statusCode != 0 {
					w.WriteHeader(tc.statusCode)
				}
				w.Write([]byte("body"))
			})

			req := httptest.NewRequest("POST", "/api/sessions/abc/next", nil)
			req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Body.String() != "body" {
				t.Errorf("Expected body 'body', got '%s'", w.Body.String())
			}
			out := logs.String()
			if !strings.Contains(out, tc.wantLog) {
				t.Errorf("Expected %q in logs, got:\n%s", tc.wantLog, out)
			}
			if !strings.Contains(out, "remote=203.0.113.7") {
				t.Errorf("Expected client IP in logs, got:\n%s", out)
			}
		})
	}
}

func TestJSONResponse(t *testing.T) {
	w := httptest.NewRecorder()

	JSONResponse(w, http.StatusCreated, models.PublicAssessment{Title: "Spring hiring", PersonaTitle: "Server"})

	if w.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
	}
	expected := `{"title":"Spring hiring","persona_title":"Server"}`
	if body := strings.TrimSpace(w.Body.String()); body != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, body)
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode    int
		message       string
		expectedError string
	}{
		{http.StatusBadRequest, "title is required", "Bad Request"},
		{http.StatusNotFound, "Persona not found", "Not Found"},
		{http.StatusConflict, "action not allowed in current state", "Conflict"},
	}

	for _, tc := range testCases {
		t.Run(tc.expectedError, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expectedError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectedError, resp.Error)
			}
			if resp.Message != tc.message {
				t.Errorf("Expected message '%s', got '%s'", tc.message, resp.Message)
			}
		})
	}
}

func TestParseJSONBody(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"title":"Server","questions":["Why?",""]}`, false},
		{"invalid", `{invalid json}`, true},
		{"empty", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/personas", strings.NewReader(tc.body))

			var parsed models.PersonaRequest
			err := ParseJSONBody(req, &parsed)

			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error=%v, got %v", tc.wantErr, err)
			}
			if !tc.wantErr && (parsed.Title != "Server" || len(parsed.Questions) != 2) {
				t.Errorf("Unexpected parse result: %+v", parsed)
			}
		})
	}
}

func TestParseOptionalJSONBody(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		wantErr  bool
		wantSlug string
	}{
		{"empty body", "", false, "default"},
		{"valid body", `{"assessment_slug":"abc123"}`, false, "abc123"},
		{"invalid body", `{bad`, true, "default"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(tc.body))
			parsed := models.StartSessionRequest{AssessmentSlug: "default"}

			err := ParseOptionalJSONBody(req, &parsed)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error=%v, got %v", tc.wantErr, err)
			}
			if !tc.wantErr && parsed.AssessmentSlug != tc.wantSlug {
				t.Errorf("Expected slug '%s', got '%s'", tc.wantSlug, parsed.AssessmentSlug)
			}
		})
	}

	t.Run("nil body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions", nil)
		var parsed models.StartSessionRequest
		if err := ParseOptionalJSONBody(req, &parsed); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})
}

func TestCORS(t *testing.T) {
	corsHandler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("handled"))
	}))

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest("OPTIONS", "/api/personas", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || w.Body.String() != "" {
			t.Errorf("Expected empty 200 preflight, got %d '%s'", w.Code, w.Body.String())
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
			t.Error("Expected Access-Control-Allow-Origin to match request origin")
		}
		methods := w.Header().Get("Access-Control-Allow-Methods")
		for _, m := range []string{"GET", "POST", "PUT", "DELETE"} {
			if !strings.Contains(methods, m) {
				t.Errorf("Expected %s in allowed methods", m)
			}
		}
	})

	t.Run("no origin", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/personas", nil)
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if w.Body.String() != "handled" {
			t.Error("Expected next handler to be called")
		}
		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"}, "127.0.0.1:1", "203.0.113.7"},
		{"real IP", map[string]string{"X-Real-IP": "203.0.113.50"}, "10.0.0.1:12345", "203.0.113.50"},
		{"remote addr", nil, "192.168.1.50:54321", "192.168.1.50"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}
