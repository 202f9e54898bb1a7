// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/persona-assess/analysis"
	"github.com/danielhkuo/persona-assess/models"
	"github.com/danielhkuo/persona-assess/testutil"
)

func TestAnalyze(t *testing.T) {
	env := newTestEnv(t)

	body := models.AnalyzeRequest{
		Persona:   "Server",
		Questions: []string{"Describe a busy shift"},
		Answers:   []string{"Friday nights"},
	}
	w := httptest.NewRecorder()
	env.analyze.Analyze(w, testutil.MakeRequest("POST", "/api/analyze", body, nil))

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AnalyzeResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Summary != "Experienced and calm under pressure." {
		t.Errorf("Unexpected summary: %q", resp.Summary)
	}
	if len(resp.Strengths) != 2 {
		t.Errorf("Expected 2 strengths, got %d", len(resp.Strengths))
	}
	if resp.Recommendation != models.RecommendationRecommended {
		t.Errorf("Expected recommendation %q, got %q", models.RecommendationRecommended, resp.Recommendation)
	}
	if env.gen.Calls != 1 {
		t.Errorf("Expected exactly one provider call, got %d", env.gen.Calls)
	}
}

func TestAnalyzeFallbackIsOK(t *testing.T) {
	env := newTestEnv(t)
	env.gen.Err = errors.New("provider down")

	body := models.AnalyzeRequest{Persona: "Server", Questions: []string{"Q"}, Answers: []string{"A"}}
	w := httptest.NewRecorder()
	env.analyze.Analyze(w, testutil.MakeRequest("POST", "/api/analyze", body, nil))

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.AnalyzeResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Summary != analysis.FallbackSummary {
		t.Errorf("Expected fallback summary, got %q", resp.Summary)
	}
	if resp.Recommendation != models.RecommendationManualReview {
		t.Errorf("Expected %q, got %q", models.RecommendationManualReview, resp.Recommendation)
	}
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	env.analyze.Analyze(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if env.gen.Calls != 0 {
		t.Errorf("Provider should not be called for invalid JSON")
	}
}
